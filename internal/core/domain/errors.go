package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotAllowed   = errors.New("user not allowed")
	ErrInvalidAssertion = errors.New("invalid identity assertion")
	ErrBootstrapAdmin   = errors.New("bootstrap admin is protected")
	ErrVideoNotFound    = errors.New("video not found")
	ErrVideoExists      = errors.New("video already exists")
)
