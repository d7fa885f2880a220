package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akosarev/authd/internal/handlers"
	"github.com/akosarev/authd/internal/models"
)

// Allow to use a function as auth service
type authFunc func(ctx context.Context, accessToken string) (models.User, error)

func (f authFunc) GetUser(ctx context.Context, accessToken string) (models.User, error) {
	return f(ctx, accessToken)
}

func TestAuthMiddleware(t *testing.T) {
	// Simple handler that reads the user from context and echoes the email
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must always be true cause middleware has to set user or write error to response
		user, ok := handlers.UserFromContext(r.Context())
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(user.Email))
		require.NoError(t, err, "should write email to response")
	})

	get := func(t *testing.T, url string, bearer string) (*http.Response, string) {
		t.Helper()

		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err, "should create request")
		if bearer != "" {
			req.Header.Set("Authorization", bearer)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		return resp, string(body)
	}

	t.Run("auth ok", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, accessToken string) (models.User, error) {
			if accessToken != "good-token" {
				return models.User{}, fmt.Errorf("unexpected token: %q", accessToken)
			}
			return models.User{ID: 1, Email: "user@example.com"}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL+"/test", "Bearer good-token")

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", body)
		require.Equal(t, "user@example.com", body, "should return email in response")
	})

	t.Run("auth fail", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, accessToken string) (models.User, error) {
			return models.User{}, errors.New("no way")
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL+"/test", "Bearer whatever")

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "should return status Unauthorized. Resp: %s", body)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Invalid token"
			}`,
			body,
		)
	})

	t.Run("header required", func(t *testing.T) {
		serviceCalled := false
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, accessToken string) (models.User, error) {
			serviceCalled = true
			return models.User{ID: 1}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		tests := []struct {
			name   string
			header string
		}{
			{"no header", ""},
			{"wrong scheme", "Basic dXNlcjpwYXNz"},
			{"empty token", "Bearer "},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, body := get(t, srv.URL+"/test", tt.header)

				require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "should return status Unauthorized. Resp: %s", body)
				require.False(t, serviceCalled, "auth service should not be called without a bearer token")
			})
		}
	})
}
