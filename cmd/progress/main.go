package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"n8n-optimizer/src/config"
	"n8n-optimizer/src/core"
	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/workflows"
)

func main() {
	workflowID := flag.String("workflow-id", "", "Optimization workflow ID to inspect (required)")
	watch := flag.Duration("watch", 0, "poll the progress at this interval until the run finishes")
	flag.Parse()

	if *workflowID == "" {
		flag.Usage()
		os.Exit(1)
	}

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := core.NewLogger(cfg.SlogLevel())

	clientOptions := config.TemporalClientOptions(cfg.Temporal, core.NewTemporalLogger(logger, true))
	clientOptions.Identity = fmt.Sprintf("progress-%s", uuid.New().String())
	c, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("Unable to create client", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	launcher := workflows.NewLauncher(c, cfg.Temporal.TaskQueue, cfg.ProgressDelay)
	ctx := context.Background()

	for {
		progress, err := launcher.Progress(ctx, *workflowID)
		if err != nil {
			logger.Error("Unable to query progress", "workflow_id", *workflowID, "error", err)
			os.Exit(1)
		}
		logger.Info("Progress",
			"workflow_id", *workflowID,
			"status", progress.Status,
			"current_step", progress.CurrentStep,
			"completed", fmt.Sprintf("%d/%d", len(progress.Completed), progress.Total),
		)

		if *watch <= 0 || progress.Status != domain.StepStatusRunning.String() {
			return
		}
		time.Sleep(*watch)
	}
}
