package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quicktrack-app/server/internal/api"
	"github.com/quicktrack-app/server/internal/config"
	"github.com/quicktrack-app/server/internal/service"
	"github.com/quicktrack-app/server/pkg/logging"
)

func main() {
	logging.Setup()

	// Load configuration
	cfg := config.LoadConfig()
	if cfg.Auth.BotToken == "" {
		slog.Warn("BOT_TOKEN not set, all requests will be rejected")
	}

	// Set up the key-value store
	st, err := config.SetupStore(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to set up store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Create service and API handler
	svc := service.NewDefaultService(st)
	handler := api.NewHandler(svc, st)

	// Set up Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestID())
	router.Use(api.RequestLogger())
	router.Use(api.CORS())
	router.Use(api.Metrics())

	// Set up routes
	handler.SetupRoutes(router, cfg.Auth.BotToken)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}

	case sig := <-quit:
		slog.Info("Shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}
