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

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/app"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/config"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
)

func main() {
	cfg := config.Load()

	provider, err := logging.NewProvider(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	logger := logging.Module(provider, logging.RootModule)

	application, err := app.New(cfg, provider)
	if err != nil {
		logger.Fatal("failed to start", "error", err)
	}
	defer application.Close()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      application.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "port", cfg.Port, "driver", cfg.CMSDriver, "auth", cfg.EditorAuth)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
