package store

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrValidation    = errors.New("invalid input")
	ErrTokenExpired  = errors.New("login token expired")
	ErrTokenConsumed = errors.New("login token already used")
)
