package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/getpassword/getpassword-go/internal/clipboard"
	"github.com/getpassword/getpassword-go/internal/config"
	"github.com/getpassword/getpassword-go/internal/crypto"
	"github.com/getpassword/getpassword-go/internal/handler"
	"github.com/getpassword/getpassword-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	clip, err := clipboard.New(cfg.Clipboard)
	if err != nil {
		slog.Error("invalid clipboard setting", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := service.NewSessionService(service.SessionConfig{
		Secret:    cfg.SessionSecret,
		IdleTTL:   cfg.SessionTTL,
		Defaults:  cfg.Defaults,
		Clipboard: clip,
	})
	go sessions.Run(ctx, time.Minute)

	router := handler.NewRouter(ctx, handler.RouterConfig{
		Generator:      service.NewGeneratorService(crypto.NewGenerator(nil), cfg.Defaults),
		Sessions:       sessions,
		SessionSecret:  cfg.SessionSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "env", cfg.Env, "clipboard", cfg.Clipboard)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
