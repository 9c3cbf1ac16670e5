package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"horizon/internal/db"
	"horizon/internal/models"

	"gorm.io/gorm"
)

const MaxCommentLength = 2000

// CommentNode is the serialized form of one comment. Replies is only
// populated on top-level nodes and holds the root's ENTIRE descendant
// subtree flattened in chronological ascending order — the UI renders
// two tiers, never arbitrary depth. ReplyCount counts direct children
// only, so it and len(Replies) diverge as soon as a grandchild exists.
type CommentNode struct {
	ID          uint           `json:"id"`
	PostID      uint           `json:"post_id"`
	ParentID    *uint          `json:"parent_id"`
	Body        string         `json:"body"`
	CreatedAt   time.Time      `json:"created_at"`
	AuthorLabel string         `json:"author_label"`
	LikeCount   int            `json:"like_count"`
	ReplyCount  int            `json:"reply_count"`
	UserLiked   bool           `json:"user_liked"`
	CanDelete   bool           `json:"can_delete"`
	Replies     []*CommentNode `json:"replies,omitempty"`
}

// CreateComment validates and inserts one comment. A reply's parent
// must exist and belong to the same post; anything else is rejected
// before any row is written.
func CreateComment(postID, userID uint, body string, parentID *uint) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrCommentEmpty
	}
	if len(body) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}
	if err := postExists(postID); err != nil {
		return nil, err
	}

	if parentID != nil {
		var parent models.Comment
		if err := db.DB.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrInvalidParent
		}
	}

	comment := models.Comment{
		PostID:   postID,
		UserID:   userID,
		ParentID: parentID,
		Body:     body,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment, its entire descendant subtree, and
// every like on any of them, in one transaction. Only the author or an
// admin may delete; an orphaned partial subtree is never a valid end
// state.
func DeleteComment(commentID uint, actor *models.User, adminEmails []string) error {
	var comment models.Comment
	if err := db.DB.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if comment.UserID != actor.ID && !actor.IsAdmin(adminEmails) {
		return ErrPermissionDenied
	}

	return db.DB.Transaction(func(tx *gorm.DB) error {
		ids, err := collectSubtreeIDs(tx, commentID)
		if err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
}

// collectSubtreeIDs walks the parent edges breadth-first. Parent/child
// is a directed edge looked up by id; no in-memory back-pointers.
func collectSubtreeIDs(tx *gorm.DB, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	frontier := []uint{rootID}
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

// CommentTree loads and serializes the post's comments for the given
// viewer (nil for none). Roots are newest-first; each root's flattened
// reply list ascends chronologically.
func CommentTree(postID uint, viewer *models.User, adminEmails []string) ([]*CommentNode, error) {
	if err := postExists(postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := db.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []*CommentNode{}, nil
	}

	commentIDs := make([]uint, len(comments))
	for i, cm := range comments {
		commentIDs[i] = cm.ID
	}

	// Like counts in one grouped query instead of per-node counts.
	type likeCountRow struct {
		CommentID uint
		N         int
	}
	var likeRows []likeCountRow
	if err := db.DB.Model(&models.CommentLike{}).
		Select("comment_id, COUNT(*) AS n").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&likeRows).Error; err != nil {
		return nil, err
	}
	likeCounts := make(map[uint]int, len(likeRows))
	for _, r := range likeRows {
		likeCounts[r.CommentID] = r.N
	}

	liked := make(map[uint]bool)
	viewerID := uint(0)
	viewerAdmin := false
	if viewer != nil {
		viewerID = viewer.ID
		viewerAdmin = viewer.IsAdmin(adminEmails)
		var likedIDs []uint
		if err := db.DB.Model(&models.CommentLike{}).
			Where("comment_id IN ? AND user_id = ?", commentIDs, viewerID).
			Pluck("comment_id", &likedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	return assembleTree(comments, likeCounts, liked, viewerID, viewerAdmin), nil
}

// assembleTree builds the two-tier serialization from comments already
// sorted by created_at ascending. Pure function over its inputs.
func assembleTree(comments []models.Comment, likeCounts map[uint]int, liked map[uint]bool, viewerID uint, viewerAdmin bool) []*CommentNode {
	children := make(map[uint][]*models.Comment)
	for i := range comments {
		cm := &comments[i]
		if cm.ParentID != nil {
			children[*cm.ParentID] = append(children[*cm.ParentID], cm)
		}
	}

	makeNode := func(cm *models.Comment) *CommentNode {
		return &CommentNode{
			ID:          cm.ID,
			PostID:      cm.PostID,
			ParentID:    cm.ParentID,
			Body:        cm.Body,
			CreatedAt:   cm.CreatedAt,
			AuthorLabel: cm.User.DisplayName(),
			LikeCount:   likeCounts[cm.ID],
			ReplyCount:  len(children[cm.ID]),
			UserLiked:   liked[cm.ID],
			CanDelete:   viewerID != 0 && (cm.UserID == viewerID || viewerAdmin),
		}
	}

	var roots []*CommentNode
	for i := range comments {
		cm := &comments[i]
		if cm.ParentID != nil {
			continue
		}
		root := makeNode(cm)

		// Flatten the whole descendant subtree under the root,
		// chronological ascending.
		var descendants []*models.Comment
		queue := append([]*models.Comment{}, children[cm.ID]...)
		for len(queue) > 0 {
			child := queue[0]
			queue = queue[1:]
			descendants = append(descendants, child)
			queue = append(queue, children[child.ID]...)
		}
		sort.SliceStable(descendants, func(a, b int) bool {
			return descendants[a].CreatedAt.Before(descendants[b].CreatedAt)
		})
		for _, d := range descendants {
			root.Replies = append(root.Replies, makeNode(d))
		}

		roots = append(roots, root)
	}

	// Top-level comments read newest-first.
	sort.SliceStable(roots, func(a, b int) bool {
		return roots[a].CreatedAt.After(roots[b].CreatedAt)
	})
	return roots
}
