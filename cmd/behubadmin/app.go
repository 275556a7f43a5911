package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/behubadmin/internal/apiclient"
	"github.com/nkiryanov/behubadmin/internal/credstore"
	"github.com/nkiryanov/behubadmin/internal/handlers"
	"github.com/nkiryanov/behubadmin/internal/logger"
	"github.com/nkiryanov/behubadmin/internal/metrics"
	"github.com/nkiryanov/behubadmin/internal/service/auth"
	"github.com/nkiryanov/behubadmin/internal/service/category"
)

const appName = "BeHub Admin"

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger     logger.Logger
	closeStore func() error
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Open credential store, postgres one is migrated here
	store, closeStore, err := openStore(ctx, c.CredentialStore)
	if err != nil {
		return nil, fmt.Errorf("error while opening credential store. Err: %w", err)
	}
	creds := credstore.NewCredentials(store)

	m := metrics.New()

	api, err := apiclient.New(apiclient.Config{
		BaseURL:    c.APIBaseURL,
		AuthScheme: c.AuthScheme,
		Timeout:    c.RequestTimeout,
		Observer:   m,
		Logger:     l.WithGroup("api"),
	}, creds)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("error while creating api client. Err: %w", err)
	}

	// Initialize services
	authService, err := auth.NewService(auth.Config{Logger: l}, api, creds)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	categoryService, err := category.NewService(category.Config{Logger: l}, api)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("error while creating category service. Err: %w", err)
	}

	mux := handlers.NewRouter(appName, authService, categoryService, m.Handler(), l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     l,
		closeStore: closeStore,
	}, nil
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

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		if err := s.closeStore(); err != nil {
			s.logger.Warn("Credential store close failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
