package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidButtonID = errors.New("invalid button id")
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrStorePosts      = errors.New("store posts")
)

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
