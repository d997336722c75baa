// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iyunix/go-aichat/internal/app"
	"github.com/iyunix/go-aichat/internal/config"
	"github.com/iyunix/go-aichat/internal/handlers"
	"github.com/iyunix/go-aichat/internal/ratelimit"
	"github.com/iyunix/go-aichat/internal/services"
)

func main() {
	cfg := config.Load()
	logger := services.NewLogger("go_aichat")

	store, err := app.ProvideStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to open %s storage: %v", cfg.StorageDriver, err)
	}

	application, err := app.New(cfg, store, prometheus.DefaultRegisterer, logger)
	if err != nil {
		_ = store.Close()
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}
	defer application.Close()

	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()

	// --- Handlers ---
	router := handlers.NewRouter(handlers.Routes{
		Auth:           handlers.NewAuthHandler(application.UserService, cfg.IsProduction(), logger),
		Chat:           handlers.NewChatHandler(application.ChatService, logger),
		Health:         handlers.NewHealthHandler(application.Store, application.AIClient),
		Log:            handlers.NewLogHandler(logger),
		Tokens:         application.UserService,
		AuthLimiter:    authLimiter,
		Metrics:        application.Metrics,
		MetricsHandler: promhttp.Handler(),
		Logger:         logger,
	})

	// --- Server Configuration ---
	port := ":8080"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		"port", port,
		"storage", cfg.StorageDriver,
		"model", cfg.AIModel,
		"environment", cfg.Environment)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped")
}
