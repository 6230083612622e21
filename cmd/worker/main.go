package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"n8n-optimizer/src/config"
	"n8n-optimizer/src/core"
	"n8n-optimizer/src/nodes/activities"
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

	// Workflows upsert these; the first run fails without them
	if cfg.Temporal.APIKey == "" {
		if err := core.RegisterSearchAttributesIfNeeded(context.Background(), cfg.Temporal.HostPort); err != nil {
			logger.Warn("Failed to register search attributes, register them manually",
				"error", err,
				"attributes", core.SearchAttributeTypes(),
			)
		}
	}

	clientOptions := config.TemporalClientOptions(cfg.Temporal, core.NewTemporalLogger(logger, false))
	clientOptions.Identity = fmt.Sprintf("worker-%s", uuid.New().String())

	c, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("Unable to create client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflowWithOptions(workflows.OptimizationWorkflow, workflow.RegisterOptions{
		Name: workflows.OptimizationWorkflowName,
	})

	// Each pipeline step is its own activity type, named after its node
	for _, name := range activities.GetAllActivityNames() {
		info, _ := activities.GetActivityInfo(name)
		w.RegisterActivityWithOptions(info.Function, activity.RegisterOptions{Name: name})
		logger.Debug("Registered activity", "name", name)
	}

	logger.Info("Worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Unable to start worker", "error", err)
		os.Exit(1)
	}
}
