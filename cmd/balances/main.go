package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/config"
	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/handler"
	"github.com/boddenberg/daily-balances-go/internal/infra/cache"
	"github.com/boddenberg/daily-balances-go/internal/infra/observability"
	"github.com/boddenberg/daily-balances-go/internal/infra/resilience"
	"github.com/boddenberg/daily-balances-go/internal/infra/slot"
	"github.com/boddenberg/daily-balances-go/internal/ledger"
	"github.com/boddenberg/daily-balances-go/internal/port"
	"github.com/boddenberg/daily-balances-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel, "daily-balances")
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("slot_backend", cfg.SlotBackend),
		zap.String("slot_key", cfg.SlotKey),
		zap.Duration("slot_timeout", cfg.SlotTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("resync_interval", cfg.ResyncInterval),
		zap.Bool("seed_defaults", cfg.SeedDefaults),
	)

	// --- Tracing ---
	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "daily-balances")
		if err != nil {
			logger.Fatal("failed to init tracer", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage slot ---
	inner, closeSlot, err := openSlot(cfg)
	if err != nil {
		logger.Fatal("failed to open storage slot", zap.String("backend", cfg.SlotBackend), zap.Error(err))
	}
	defer closeSlot()

	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("slot-" + cfg.SlotBackend)
	store := slot.NewResilient(inner, cfg.SlotBackend, cb, resilienceCfg, cfg.SlotTimeout, logger)

	// --- Idempotency cache ---
	idem := cache.New[domain.EmployeeTransaction](cfg.IdempotencyTTL)
	defer idem.Close()

	// --- Service ---
	svc := service.NewBalancesService(ledger.New(), store, metrics, logger,
		service.WithIdempotencyCache(idem),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Load(ctx, cfg.SeedDefaults); err != nil {
		logger.Warn("starting from an empty ledger", zap.Error(err))
	}

	// --- Router ---
	router := handler.NewRouter(svc, metrics, logger, handler.Options{
		MaxImportBytes:     cfg.MaxImportBytes,
		MaxConcurrentFiles: cfg.MaxConcurrency,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return svc.Run(gctx, cfg.ResyncInterval)
	})

	// --- Graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Flush(flushCtx); err != nil {
		logger.Error("final save failed, unsaved changes lost", zap.Error(err))
	}

	logger.Info("server stopped")
}

// openSlot builds the configured backend and a func that releases it.
func openSlot(cfg *config.Config) (port.Slot, func(), error) {
	switch cfg.SlotBackend {
	case config.BackendRedis:
		r, err := slot.NewRedis(slot.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.SlotKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, func() { _ = r.Close() }, nil
	case config.BackendFile:
		return slot.NewFile(cfg.SlotFile), func() {}, nil
	case config.BackendMemory:
		return slot.NewMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown slot backend %q", cfg.SlotBackend)
	}
}
