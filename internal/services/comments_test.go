package services

import (
	"testing"
	"time"

	"horizon/internal/models"
)

func ptr(v uint) *uint { return &v }

func mkComment(id uint, parentID *uint, userID uint, at time.Time) models.Comment {
	return models.Comment{
		ID:        id,
		PostID:    1,
		UserID:    userID,
		ParentID:  parentID,
		Body:      "body",
		User:      models.User{ID: userID, Email: "u@example.com"},
		CreatedAt: at,
	}
}

// A reply to a reply must surface in the root's flattened reply list,
// while reply_count still counts direct children only.
func TestAssembleTreeFlattensGrandchildren(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		mkComment(1, nil, 10, t0),
		mkComment(2, ptr(1), 11, t0.Add(time.Minute)),
		mkComment(3, ptr(2), 12, t0.Add(2*time.Minute)),
		mkComment(4, ptr(3), 10, t0.Add(3*time.Minute)),
	}

	roots := assembleTree(comments, nil, nil, 0, false)
	if len(roots) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(roots))
	}

	root := roots[0]
	if len(root.Replies) != 3 {
		t.Errorf("Expected all 3 descendants flattened under root, got %d", len(root.Replies))
	}
	if root.ReplyCount != 1 {
		t.Errorf("Expected reply_count of 1 (direct children only), got %d", root.ReplyCount)
	}

	// Flattened replies ascend chronologically
	for i := 1; i < len(root.Replies); i++ {
		if root.Replies[i].CreatedAt.Before(root.Replies[i-1].CreatedAt) {
			t.Errorf("Replies out of order at index %d", i)
		}
	}
	if root.Replies[0].ID != 2 || root.Replies[2].ID != 4 {
		t.Errorf("Unexpected reply order: %d, %d, %d", root.Replies[0].ID, root.Replies[1].ID, root.Replies[2].ID)
	}
}

func TestAssembleTreeRootsNewestFirst(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		mkComment(1, nil, 10, t0),
		mkComment(2, nil, 11, t0.Add(time.Hour)),
		mkComment(3, nil, 12, t0.Add(2*time.Hour)),
	}

	roots := assembleTree(comments, nil, nil, 0, false)
	if len(roots) != 3 {
		t.Fatalf("Expected 3 roots, got %d", len(roots))
	}
	if roots[0].ID != 3 || roots[1].ID != 2 || roots[2].ID != 1 {
		t.Errorf("Roots not newest-first: %d, %d, %d", roots[0].ID, roots[1].ID, roots[2].ID)
	}
}

func TestAssembleTreePermissions(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		mkComment(1, nil, 10, t0),
		mkComment(2, nil, 11, t0.Add(time.Minute)),
	}
	likeCounts := map[uint]int{1: 3}
	liked := map[uint]bool{1: true}

	// Viewer 10: author of comment 1, not admin
	roots := assembleTree(comments, likeCounts, liked, 10, false)
	for _, r := range roots {
		switch r.ID {
		case 1:
			if !r.CanDelete {
				t.Error("Author should be able to delete own comment")
			}
			if r.LikeCount != 3 || !r.UserLiked {
				t.Errorf("Like state wrong: count=%d liked=%v", r.LikeCount, r.UserLiked)
			}
		case 2:
			if r.CanDelete {
				t.Error("Non-author non-admin should not delete others' comments")
			}
		}
	}

	// Admin viewer deletes anything
	roots = assembleTree(comments, nil, nil, 99, true)
	for _, r := range roots {
		if !r.CanDelete {
			t.Errorf("Admin should be able to delete comment %d", r.ID)
		}
	}

	// Anonymous viewer deletes nothing
	roots = assembleTree(comments, nil, nil, 0, false)
	for _, r := range roots {
		if r.CanDelete {
			t.Errorf("Anonymous viewer should not delete comment %d", r.ID)
		}
	}
}
