package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/akosarev/authd/internal/apperrors"
	"github.com/akosarev/authd/internal/models"
	"github.com/akosarev/authd/internal/repository"
	"github.com/akosarev/authd/internal/service/auth/tokencodec"
	"github.com/akosarev/authd/internal/sessionstore"
)

// Interface to create or compare password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher used during registration, login and refresh token storage
	// Defaults to BcryptHasher
	Hasher PasswordHasher
}

// AuthService orchestrates sign-up, login, token rotation, logout and
// identity resolution.
//
// At most one refresh session exists per user: issuing a new pair
// overwrites the stored hash under the user's key, so every login or
// refresh revokes the previously issued refresh token.
type AuthService struct {
	codec    *tokencodec.Codec
	hasher   PasswordHasher
	users    repository.UserRepo
	sessions sessionstore.Store

	// Hash compared against on unknown email so login timing does not
	// reveal whether the email exists
	dummyHash string
}

func NewService(cfg Config, codec *tokencodec.Codec, users repository.UserRepo, sessions sessionstore.Store) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	if codec == nil || users == nil || sessions == nil {
		return nil, errors.New("codec, user repo and session store must not be nil")
	}

	dummyHash, err := hasher.Hash("authd-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("error while preparing dummy hash. Err: %w", err)
	}

	return &AuthService{
		codec:     codec,
		hasher:    hasher,
		users:     users,
		sessions:  sessions,
		dummyHash: dummyHash,
	}, nil
}

// SignUp creates a user with a hashed password
// The returned user carries the hash; callers must expose public fields only
func (s *AuthService) SignUp(ctx context.Context, email string, password string, confirmedPassword string) (models.User, error) {
	if email == "" || password == "" || confirmedPassword == "" {
		return models.User{}, fmt.Errorf("all fields are required: %w", apperrors.ErrValidation)
	}

	if password != confirmedPassword {
		return models.User{}, fmt.Errorf("passwords do not match: %w", apperrors.ErrValidation)
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("user lookup failed (%v): %w", err, apperrors.ErrUserAlreadyExists)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.users.CreateUser(ctx, repository.CreateUserParams{Email: email, PasswordHash: hash})
	if err != nil {
		// Covers the concurrent sign-up race: the unique constraint wins
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("user create failed (%v): %w", err, apperrors.ErrUserAlreadyExists)
	}

	return user, nil
}

// Login verifies credentials and issues a fresh token pair
// Unknown email and wrong password are indistinguishable to the caller
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	if email == "" || password == "" {
		return models.TokenPair{}, fmt.Errorf("email and password are required: %w", apperrors.ErrValidation)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Burn a compare anyway to keep timing flat
		_ = s.hasher.Compare(s.dummyHash, password)
		return models.TokenPair{}, fmt.Errorf("login failed: %w", apperrors.ErrInvalidCredentials)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.TokenPair{}, fmt.Errorf("login failed: %w", apperrors.ErrInvalidCredentials)
	}

	return s.issuePair(ctx, user)
}

// Refresh rotates the token pair: the consumed refresh token is
// invalidated before new tokens are issued, so it is single use
// Every failure surfaces as ErrInvalidToken
func (s *AuthService) Refresh(ctx context.Context, userID int64, refreshToken string) (models.TokenPair, error) {
	if _, err := s.codec.ParseRefresh(refreshToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh token verification failed (%v): %w", err, apperrors.ErrInvalidToken)
	}

	key := sessionstore.RefreshKey(userID)

	stored, err := s.sessions.Get(ctx, key)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("no active session (%v): %w", err, apperrors.ErrInvalidToken)
	}

	if err := s.hasher.Compare(stored, refreshToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh token mismatch: %w", apperrors.ErrInvalidToken)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("user lookup failed (%v): %w", err, apperrors.ErrInvalidToken)
	}

	if err := s.sessions.Del(ctx, key); err != nil {
		return models.TokenPair{}, fmt.Errorf("session delete failed (%v): %w", err, apperrors.ErrInvalidToken)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token issuance failed (%v): %w", err, apperrors.ErrInvalidToken)
	}

	return pair, nil
}

// Logout revokes the session of the token's subject
// Deleting an already absent session is not an error
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	userID, err := s.codec.ParseRefresh(refreshToken)
	if err != nil {
		return fmt.Errorf("refresh token verification failed (%v): %w", err, apperrors.ErrInvalidToken)
	}

	if err := s.sessions.Del(ctx, sessionstore.RefreshKey(userID)); err != nil {
		return fmt.Errorf("session delete failed (%v): %w", err, apperrors.ErrInvalidToken)
	}

	return nil
}

// GetUser resolves an access token to the user it was issued for
// No store lookup is needed to verify the token itself
func (s *AuthService) GetUser(ctx context.Context, accessToken string) (models.User, error) {
	userID, err := s.codec.ParseAccess(accessToken)
	if err != nil {
		return models.User{}, fmt.Errorf("access token verification failed (%v): %w", err, apperrors.ErrInvalidToken)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("user lookup failed (%v): %w", err, apperrors.ErrInvalidToken)
	}

	return user, nil
}

// Sign both tokens and persist the hashed refresh token, overwriting
// any previous session record of the user
func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	access, err := s.codec.SignAccess(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.codec.SignRefresh(user.ID)
	if err != nil {
		return models.TokenPair{}, err
	}

	hash, err := s.hasher.Hash(refresh.Value)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	err = s.sessions.Set(ctx, sessionstore.RefreshKey(user.ID), hash, s.codec.RefreshTTL())
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while saving session record. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
