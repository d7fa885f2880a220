package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/akosarev/authd/internal/handlers"
	"github.com/akosarev/authd/internal/handlers/middleware"
	"github.com/akosarev/authd/internal/repository/postgres"
	"github.com/akosarev/authd/internal/service/auth"
	"github.com/akosarev/authd/internal/service/auth/tokencodec"
	"github.com/akosarev/authd/internal/sessionstore"
	"github.com/akosarev/authd/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
}

// Create db transaction and run the server with that connection
// Users live in the rolled back transaction, sessions in the passed redis:
// session keys are per user id and ids are never reused, so tests don't clash
func ServeWithTx(dbpool *pgxpool.Pool, rdb *goredis.Client, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories and stores
		userRepo := &postgres.UserRepo{DB: tx}
		sessions := sessionstore.NewRedisStore(rdb)

		// Initialize services
		codec, err := tokencodec.New(tokencodec.Config{
			AccessSecretKey:  "test-access-secret",
			RefreshSecretKey: "test-refresh-secret",
		})
		require.NoError(t, err, "token codec should be created without errors")

		as, err := auth.NewService(auth.Config{}, codec, userRepo, sessions)
		require.NoError(t, err, "auth service starting error")

		// Complete all together as router
		registry := prometheus.NewRegistry()
		router := handlers.NewRouter(
			handlers.NewAuth(as),
			middleware.AuthMiddleware(as),
			registry,
			middleware.MetricsMiddleware(registry),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{AuthService: as})
	})
}
