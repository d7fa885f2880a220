package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/akosarev/authd/internal/db"
	"github.com/akosarev/authd/internal/handlers"
	"github.com/akosarev/authd/internal/handlers/middleware"
	"github.com/akosarev/authd/internal/logger"
	"github.com/akosarev/authd/internal/repository/postgres"
	"github.com/akosarev/authd/internal/service/auth"
	"github.com/akosarev/authd/internal/service/auth/tokencodec"
	"github.com/akosarev/authd/internal/sessionstore"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	close  func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Connect to redis where refresh sessions live
	redisClient := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
	}

	// Initialize repositories and stores
	userRepo := &postgres.UserRepo{DB: pool}
	sessions := sessionstore.NewRedisStore(redisClient)

	// Initialize services
	codec, err := tokencodec.New(tokencodec.Config{
		AccessSecretKey:  c.AccessSecretKey,
		RefreshSecretKey: c.RefreshSecretKey,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, codec, userRepo, sessions)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuth(authService)
	authMiddleware := middleware.AuthMiddleware(authService)

	registry := prometheus.NewRegistry()

	mux := handlers.NewRouter(
		authHandler,
		authMiddleware,
		registry,
		middleware.LoggerMiddleware(log),
		middleware.MetricsMiddleware(registry),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     log,
		close: func() {
			pool.Close()
			_ = redisClient.Close()
		},
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.close()

	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
