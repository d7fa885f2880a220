package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/akosarev/authd/internal/apperrors"
	"github.com/akosarev/authd/internal/handlers/render"
	"github.com/akosarev/authd/internal/models"
)

// Auth service the handlers delegate to
type AuthService interface {
	// Create user
	// Has to return apperrors.ErrValidation on bad input and
	// apperrors.ErrUserAlreadyExists if the email is taken
	SignUp(ctx context.Context, email string, password string, confirmedPassword string) (models.User, error)

	// Login user with email and password
	// Has to return apperrors.ErrInvalidCredentials on any credential failure
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Rotate the token pair using the refresh token
	// Has to return apperrors.ErrInvalidToken on any failure
	Refresh(ctx context.Context, userID int64, refreshToken string) (models.TokenPair, error)

	// Revoke the session of the token's subject
	Logout(ctx context.Context, refreshToken string) error

	// Resolve access token to the user it was issued for
	GetUser(ctx context.Context, accessToken string) (models.User, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuth(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Handler returns the auth route mux
// The "GET /me" route requires the auth middleware wrapped around it
func (h *AuthHandler) Handler(authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sign-up", h.signUp)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh", h.refresh)
	mux.HandleFunc("POST /logout", h.logout)
	mux.Handle("GET /me", authMiddleware(http.HandlerFunc(h.me)))

	return mux
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	type SignUpRequest struct {
		Email             string `json:"email" validate:"required,email"`
		Password          string `json:"password" validate:"required,min=8"`
		ConfirmedPassword string `json:"confirmed_password" validate:"required,min=8"`
	}
	type SignUpResponse struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}

	data, err := render.BindAndValidate[SignUpRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.auth.SignUp(r.Context(), data.Email, data.Password, data.ConfirmedPassword)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			render.ServiceError(w, "Invalid sign-up data", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, SignUpResponse{ID: user.ID, Email: user.Email})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			render.ServiceError(w, "Invalid login data", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokenPairResponse{AccessToken: pair.Access.Value, RefreshToken: pair.Refresh.Value})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		UserID       int64  `json:"user_id" validate:"required"`
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Refresh(r.Context(), data.UserID, data.RefreshToken)
	if err != nil {
		render.ServiceError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	render.JSON(w, tokenPairResponse{AccessToken: pair.Access.Value, RefreshToken: pair.Refresh.Value})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type LogoutRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	type LogoutResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[LogoutRequest](w, r)
	if err != nil {
		return
	}

	if err := h.auth.Logout(r.Context(), data.RefreshToken); err != nil {
		render.ServiceError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	render.JSON(w, LogoutResponse{Message: "Logged out"})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	type MeResponse struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	render.JSON(w, MeResponse{ID: user.ID, Email: user.Email})
}
