package util

import "errors"

var (
	ErrActivityTypeRequired = errors.New("activity type is required")
	ErrUserIDRequired       = errors.New("user id is required")
	ErrBadgeNotFound        = errors.New("badge not found")
)
