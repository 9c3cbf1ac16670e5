package services

import (
	"errors"

	"horizon/internal/db"
	"horizon/internal/identity"
	"horizon/internal/models"

	"gorm.io/gorm"
)

// ClampPercent bounds client-reported scroll depth to 0-100. Raw client
// values are never trusted past this clamp.
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ClampSeconds bounds client-reported reading time to >= 0.
func ClampSeconds(s int) int {
	if s < 0 {
		return 0
	}
	return s
}

// ReadEventInput carries the client checkpoint plus request metadata.
type ReadEventInput struct {
	Percent   int
	Seconds   int
	IPAddress string
	UserAgent string
}

// RecordReadEvent appends one immutable checkpoint row. No merging with
// prior events for the same reader+post: the full history is what the
// aggregation engine scans later.
func RecordReadEvent(postID uint, who identity.ReaderIdentity, in ReadEventInput) (*models.ReadEvent, error) {
	if err := postExists(postID); err != nil {
		return nil, err
	}

	ev := models.ReadEvent{
		PostID:    postID,
		Percent:   ClampPercent(in.Percent),
		Seconds:   ClampSeconds(in.Seconds),
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	if who.LoggedIn() {
		uid := who.UserID
		ev.UserID = &uid
	} else {
		ev.AnonID = who.AnonID
	}

	if err := db.DB.Create(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// TogglePostLike inserts or removes the caller's like. The existence
// check is a fast path only; under a race the composite unique index
// rejects the second insert and we absorb that as "already liked".
func TogglePostLike(postID, userID uint) (liked bool, count int64, err error) {
	if err := postExists(postID); err != nil {
		return false, 0, err
	}

	var existing models.Like
	lookupErr := db.DB.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
	switch {
	case lookupErr == nil:
		if err := db.DB.Delete(&existing).Error; err != nil {
			return false, 0, err
		}
		liked = false
	case errors.Is(lookupErr, gorm.ErrRecordNotFound):
		like := models.Like{PostID: postID, UserID: userID}
		if err := db.DB.Create(&like).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return false, 0, err
			}
			// concurrent double-tap: exactly one row exists, no-op
		}
		liked = true
	default:
		return false, 0, lookupErr
	}

	if err := db.DB.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return liked, 0, err
	}
	return liked, count, nil
}

// ToggleCommentLike has the same semantics as TogglePostLike, keyed on
// (comment_id, user_id).
func ToggleCommentLike(commentID, userID uint) (liked bool, count int64, err error) {
	if err := commentExists(commentID); err != nil {
		return false, 0, err
	}

	var existing models.CommentLike
	lookupErr := db.DB.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
	switch {
	case lookupErr == nil:
		if err := db.DB.Delete(&existing).Error; err != nil {
			return false, 0, err
		}
		liked = false
	case errors.Is(lookupErr, gorm.ErrRecordNotFound):
		like := models.CommentLike{CommentID: commentID, UserID: userID}
		if err := db.DB.Create(&like).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return false, 0, err
			}
		}
		liked = true
	default:
		return false, 0, lookupErr
	}

	if err := db.DB.Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error; err != nil {
		return liked, 0, err
	}
	return liked, count, nil
}

func postExists(postID uint) error {
	var n int64
	if err := db.DB.Model(&models.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func commentExists(commentID uint) error {
	var n int64
	if err := db.DB.Model(&models.Comment{}).Where("id = ?", commentID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
