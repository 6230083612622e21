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

	"go.temporal.io/sdk/client"

	"n8n-optimizer/src/api"
	"n8n-optimizer/src/config"
	"n8n-optimizer/src/core"
	"n8n-optimizer/src/workflows"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := core.NewLogger(cfg.SlogLevel())
	slog.SetDefault(logger)

	deps, err := core.NewDeps(cfg)
	if err != nil {
		logger.Error("Unable to build dependencies", "error", err)
		os.Exit(1)
	}

	// The HTTP tools work without Temporal; only /optimizations needs it
	var pipeline api.OptimizationStarter
	temporalClient, err := client.Dial(config.TemporalClientOptions(cfg.Temporal, core.NewTemporalLogger(logger, true)))
	if err != nil {
		logger.Warn("Temporal is unavailable, optimization pipeline disabled", "host_port", cfg.Temporal.HostPort, "error", err)
	} else {
		defer temporalClient.Close()
		pipeline = workflows.NewLauncher(temporalClient, cfg.Temporal.TaskQueue, cfg.ProgressDelay)
	}

	e := api.NewRouter(deps, pipeline, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		port := fmt.Sprintf(":%s", cfg.ServerPort)
		logger.Info("Server starting", "port", port, "pipeline", pipeline != nil)
		if err := e.Start(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
}
