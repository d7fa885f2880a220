package repository

import (
	"context"

	"github.com/akosarev/authd/internal/models"
)

type CreateUserParams struct {
	Email        string
	PasswordHash string
}

// User repository interface
type UserRepo interface {
	// Create user
	// Must return apperrors.ErrUserAlreadyExists if the email is taken
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// Must return apperrors.ErrUserNotFound if the user does not exist
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}
