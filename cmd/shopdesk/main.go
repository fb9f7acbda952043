package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vedaro/shopdesk/internal/app"
	"github.com/vedaro/shopdesk/internal/auth"
	"github.com/vedaro/shopdesk/internal/backend"
	"github.com/vedaro/shopdesk/internal/cart"
	"github.com/vedaro/shopdesk/internal/checkout"
	"github.com/vedaro/shopdesk/internal/history"
	"github.com/vedaro/shopdesk/internal/platform/cache"
	"github.com/vedaro/shopdesk/internal/scan"
	"github.com/vedaro/shopdesk/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "shopdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger)

	authService := auth.NewService(backendClient)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	cartService := cart.NewService(backendClient, logger)
	cartHandler := cart.NewHandler(logger, cartService)

	scanService := scan.NewService(backendClient, cartService, logger, scan.Config{
		Debounce:  cfg.ScanDebounce,
		NoticeTTL: cfg.ScanNoticeTTL,
		IdleTTL:   cfg.ScanSessionIdleTTL,
	})
	scanHandler := scan.NewHandler(logger, scanService)

	checkoutService := checkout.NewService(backendClient, backendClient, backendClient, logger)
	checkoutHandler := checkout.NewHandler(logger, checkoutService)

	historyService := history.NewService(backendClient, redisClient, cfg.HistoryCacheTTL, logger)
	historyHandler := history.NewHandler(logger, historyService)

	// Idle scan sessions live in-process, so the sweep runs here rather
	// than in the worker.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scanService.Sweep()
			}
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		AuthHandler:     authHandler,
		ScanHandler:     scanHandler,
		CartHandler:     cartHandler,
		CheckoutHandler: checkoutHandler,
		HistoryHandler:  historyHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
