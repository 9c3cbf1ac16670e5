package services

import (
	"errors"
)

// Mutations validate all preconditions before touching the store;
// handlers map these to HTTP statuses. Anything else that escapes a
// service is an internal error: logged, reported generically.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidParent    = errors.New("parent comment missing or on a different post")
	ErrPermissionDenied = errors.New("permission denied")
	ErrCommentEmpty     = errors.New("comment body is required")
	ErrCommentTooLong   = errors.New("comment too long (max 2000 characters)")
)
