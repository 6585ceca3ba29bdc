package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/internal/logging"
	"github.com/goliatone/go-formwizard/pkg/cache"
	"github.com/goliatone/go-formwizard/pkg/catalog"
	"github.com/goliatone/go-formwizard/pkg/client"
	"github.com/goliatone/go-formwizard/pkg/metrics"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
)

// app holds the process-wide collaborators shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	client  *client.Client
	catalog *catalog.Service
	driver  tui.PromptDriver

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format),
		metrics: metrics.New(),
		driver:  tui.NewSurveyDriver(os.Stdout),
	}
	slog.SetDefault(a.logger)

	a.client = client.New(cfg.API.BaseURL,
		client.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		client.WithSession(client.NewSession()),
		client.WithLogger(a.logger),
		client.WithRecorder(a.metrics),
	)

	store, err := a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.catalog = catalog.New(a.client,
		catalog.WithCache(cache.New(store, cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(a.logger))),
		catalog.WithRecorder(a.metrics),
		catalog.WithLogger(a.logger),
	)

	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}
	return a, nil
}

// openCache layers an in-memory front over the persisted catalog database.
func (a *app) openCache(ctx context.Context) (cache.Store, error) {
	path := a.cfg.Cache.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
	}
	back, err := cache.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, back.Close)

	front, err := cache.NewMemoryStore(cache.DefaultMemoryConfig())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, front.Close)
	return cache.NewLayered(front, back), nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", addr)
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

func (a *app) authenticate(ctx context.Context, email, token string) error {
	if token != "" {
		return a.client.Session().Init(token)
	}
	email, password, err := tui.PromptCredentials(ctx, a.driver, email)
	if err != nil {
		return err
	}
	if err := a.client.Login(ctx, email, password); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("credenciales inválidas")
		}
		return err
	}
	s := a.client.Session()
	a.logger.Info("signed in", "user_id", s.UserID(), "roles", s.Roles())
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close", "error", err)
		}
	}
	a.closers = nil
}
