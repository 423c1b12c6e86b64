package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/api"
	"github.com/CaioAP/scuderia/internal/auth"
	"github.com/CaioAP/scuderia/internal/config"
	"github.com/CaioAP/scuderia/internal/logger"
	"github.com/CaioAP/scuderia/internal/metrics"
	"github.com/CaioAP/scuderia/internal/middleware"
	"github.com/CaioAP/scuderia/internal/storage"
	"github.com/CaioAP/scuderia/internal/storage/memory"
	"github.com/CaioAP/scuderia/internal/storage/postgres"
	"github.com/CaioAP/scuderia/internal/storage/seed"
	"github.com/CaioAP/scuderia/internal/storage/valkey"
	"github.com/CaioAP/scuderia/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(logger.Config{Development: cfg.App.Development(), Level: cfg.App.LogLevel})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logg.Sync()

	if err := run(cfg, logg); err != nil {
		logg.Fatalw("server stopped", "error", err)
	}
}

func run(cfg *config.Config, logg *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	hub := ws.NewHub(logg, m.WSClients)
	go hub.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.App.RateLimit, logg)
	go limiter.Cleanup(ctx)

	srv := &http.Server{
		Addr: cfg.App.Addr(),
		Handler: api.NewRouter(api.Deps{
			Messages:      store,
			Notifications: memory.NewNotificationStore(logg, seed.Notifications()),
			Hub:           hub,
			Metrics:       m,
			Verifier:      auth.NewVerifier(cfg.JWT.HSSecret),
			Limiter:       limiter,
			CORSOrigin:    cfg.App.CORSOrigin,
			Log:           logg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Infow("Server started", "addr", srv.Addr, "backend", cfg.Store.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore builds the configured message store backend.
func openStore(ctx context.Context, cfg *config.Config, logg *zap.SugaredLogger) (storage.MessageStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN, logg)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		if cfg.Store.Seed {
			if err := postgres.Seed(ctx, db, seed.Feed(time.Now())); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return postgres.NewMessageStore(db, logg), func() { db.Close() }, nil

	case config.BackendValkey:
		s, err := valkey.New(ctx, valkey.Options{
			Addr:     cfg.Valkey.Addr,
			Password: cfg.Valkey.Password,
			Prefix:   cfg.Valkey.Prefix,
		}, logg)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Store.Seed {
			if err := s.Seed(ctx, seed.Feed(time.Now())); err != nil {
				s.Close()
				return nil, nil, err
			}
		}
		return s, s.Close, nil

	case config.BackendMemory:
		opts := []memory.Option{memory.WithLatency(cfg.Store.Latency)}
		if cfg.Store.Seed {
			return memory.NewSeededMessageStore(logg, opts...), func() {}, nil
		}
		return memory.NewMessageStore(logg, opts...), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
