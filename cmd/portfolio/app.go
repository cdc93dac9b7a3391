package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nkiryanov/portfolio/internal/db"
	"github.com/nkiryanov/portfolio/internal/handlers"
	"github.com/nkiryanov/portfolio/internal/logger"
	"github.com/nkiryanov/portfolio/internal/repository"
	"github.com/nkiryanov/portfolio/internal/repository/postgres"
	"github.com/nkiryanov/portfolio/internal/repository/sqlite"
	"github.com/nkiryanov/portfolio/internal/service/auth"
	"github.com/nkiryanov/portfolio/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/portfolio/internal/service/project"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	close  func() error
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	storage, closeStorage, err := openStorage(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey, TTL: c.TokenTTL})
	if err != nil {
		_ = closeStorage()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
	if err != nil {
		_ = closeStorage()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	projectService := project.NewService(storage)

	mux := handlers.NewRouter(authService, projectService, logger, handlers.RouterOptions{
		Version:    version,
		CORSOrigin: c.CORSOrigin,
		BodyLimit:  c.BodyLimit,
	})

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     logger,
		close:      closeStorage,
	}, nil
}

// Pick storage by DSN scheme
func openStorage(ctx context.Context, dsn string) (repository.Storage, func() error, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pool, err := db.ConnectAndMigrate(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStorage(pool), func() error { pool.Close(); return nil }, nil

	case strings.HasPrefix(dsn, "sqlite://"):
		storage, err := sqlite.Open(ctx, strings.TrimPrefix(dsn, "sqlite://"))
		if err != nil {
			return nil, nil, err
		}
		return storage, storage.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database %q, use postgres:// or sqlite://", dsn)
	}
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr, "version", version)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close releases database connections. Call after Run returned
func (s *ServerApp) Close() error {
	return s.close()
}
