package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/statekeeper/internal/cache/bolt"
	"github.com/iudanet/statekeeper/internal/config"
	"github.com/iudanet/statekeeper/internal/seal"
	"github.com/iudanet/statekeeper/internal/server/handlers"
	"github.com/iudanet/statekeeper/internal/server/jwt"
	"github.com/iudanet/statekeeper/internal/server/middleware"
	"github.com/iudanet/statekeeper/internal/storage/sqlite"
	"github.com/iudanet/statekeeper/internal/syncsvc"
	"github.com/iudanet/statekeeper/internal/worker"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("statekeeper starting", "version", Version, "addr", cfg.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("failed to close storage", "error", closeErr)
		}
	}()

	stateCache, err := bolt.New(ctx, cfg.CachePath, bolt.Config{
		StateTTL:  cfg.CacheStateTTL,
		ClientTTL: cfg.CacheClientTTL,
	})
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() {
		if closeErr := stateCache.Close(); closeErr != nil {
			logger.Error("failed to close cache", "error", closeErr)
		}
	}()

	sealer, err := seal.New([]byte(cfg.SealSecret))
	if err != nil {
		return fmt.Errorf("init sealer: %w", err)
	}

	svcCfg := syncsvc.DefaultConfig()
	svcCfg.MaxPayloadBytes = cfg.MaxPayloadBytes
	svcCfg.Throttle.MinInterval = cfg.SaveMinInterval
	svc := syncsvc.New(svcCfg, store, store, stateCache, sealer, logger)
	defer svc.Close()

	workerCfg := worker.DefaultConfig()
	workerCfg.PollInterval = cfg.WorkerPollInterval
	workerCfg.CleanupInterval = cfg.WorkerCleanupInterval
	workerCfg.HistoryKeep = cfg.HistoryKeep
	reconciler := worker.New(workerCfg, store, store, stateCache, sealer, svcCfg.Limits, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		reconciler.Run(workerCtx)
	}()

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.TokenTTL)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           buildRouter(cfg, logger, jwtService, svc, store),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Addr)
		if listenErr := server.ListenAndServe(); !errors.Is(listenErr, http.ErrServerClosed) {
			serverErr <- listenErr
		}
	}()

	select {
	case err = <-serverErr:
		stopWorker()
		<-workerDone
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	stopWorker()
	<-workerDone

	logger.Info("statekeeper stopped")
	return nil
}

// buildRouter собирает маршруты и цепочку middleware.
func buildRouter(
	cfg *config.Config,
	logger *slog.Logger,
	jwtService *jwt.Service,
	svc *syncsvc.Service,
	store *sqlite.Storage,
) http.Handler {
	stateHandler := handlers.NewStateHandler(logger, svc)
	healthHandler := handlers.NewHealthHandler(logger, store.DB(), Version)

	auth := middleware.AuthMiddleware(logger, jwtService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)
	mux.Handle("GET /api/v1/state", auth(http.HandlerFunc(stateHandler.HandleLoad)))
	mux.Handle("POST /api/v1/state/save", auth(http.HandlerFunc(stateHandler.HandleSave)))
	mux.Handle("POST /api/v1/admin/verify", auth(http.HandlerFunc(stateHandler.HandleVerify)))

	// Сохранения лимитируются жестче остальных путей
	rateLimit := middleware.RateLimitByPathMiddleware(
		[]middleware.PathRateLimit{
			{Path: "/api/v1/state/save", Rate: cfg.SaveRateLimitPerWindow, Window: cfg.RateLimitWindow},
		},
		cfg.RateLimitPerWindow, cfg.RateLimitWindow, logger,
	)

	var handler http.Handler = mux
	handler = rateLimit(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)
	return handler
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printVersion() {
	fmt.Printf("Statekeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
