package apperrors

import (
	"errors"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Deliberately generic: callers must not be able to tell an unknown
	// email from a wrong password, or an expired token from a revoked one
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
