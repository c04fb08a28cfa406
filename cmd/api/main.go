// Package main provides the entry point for the bookduck server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/config"
	"github.com/seohyun-lee/bookduck-backend/internal/di"
	"github.com/seohyun-lee/bookduck-backend/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(2)
	}

	injector := di.NewContainer(cfg)
	log := do.MustInvoke[*logger.Logger](injector)

	if err := di.Bootstrap(injector); err != nil {
		_ = injector.Shutdown()
		log.WithError(err).Fatal("Failed to bootstrap server")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Handles are shut down in reverse dependency order: the HTTP server
	// drains first, the store and index close last.
	if err := injector.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown error")
	}

	log.Info("Server stopped")
}
