package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"

	"n8n-optimizer/src/analyzer"
	"n8n-optimizer/src/config"
	"n8n-optimizer/src/core"
	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/layout"
	"n8n-optimizer/src/validation"
	"n8n-optimizer/src/workflows"
)

type report struct {
	Layout    *layout.Layout   `json:"layout,omitempty"`
	Analysis  *domain.Analysis `json:"analysis,omitempty"`
	Optimized *domain.Workflow `json:"optimized,omitempty"`
}

func main() {
	file := flag.String("file", "", "n8n workflow JSON to optimize (defaults to the built-in sample)")
	out := flag.String("out", analyzer.ExportFileName, "where to write the optimized workflow")
	local := flag.Bool("local", false, "run in process instead of on the Temporal pipeline")
	timeout := flag.Duration("timeout", 5*time.Minute, "how long to wait for the pipeline")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := core.NewLogger(cfg.SlogLevel())
	slog.SetDefault(logger)

	document, err := readDocument(*file)
	if err != nil {
		logger.Error("Unable to read workflow", "file", *file, "error", err)
		os.Exit(1)
	}

	var result report
	if *local {
		result, err = runLocal(document)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		result, err = runPipeline(ctx, cfg, logger, document)
	}
	if err != nil {
		logger.Error("Optimization failed", "error", err)
		os.Exit(1)
	}

	if result.Analysis != nil {
		logger.Info("Analysis",
			"nodes", result.Analysis.NodeCount,
			"score", result.Analysis.OverallScore,
			"complexity", result.Analysis.ComplexityScore,
			"issues", len(result.Analysis.Issues),
		)
		for _, issue := range result.Analysis.Issues {
			logger.Info("Issue", "severity", issue.Severity, "title", issue.Title, "node", issue.NodeID)
		}
	}

	if result.Optimized == nil {
		logger.Warn("Pipeline produced no optimized workflow")
		return
	}
	encoded, err := json.MarshalIndent(result.Optimized, "", "  ")
	if err != nil {
		logger.Error("Unable to encode optimized workflow", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		logger.Error("Unable to write optimized workflow", "out", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("Optimized workflow written", "out", *out)
}

func readDocument(path string) ([]byte, error) {
	if path == "" {
		return json.Marshal(domain.SampleWorkflow())
	}
	return os.ReadFile(path)
}

func runLocal(document []byte) (report, error) {
	wf, err := validation.ParseWorkflow(document)
	if err != nil {
		return report{}, err
	}

	arranged := layout.Compute(wf)
	analysis := analyzer.Analyze(wf)
	optimized, err := analyzer.GenerateOptimized(wf, analysis, time.Now())
	if err != nil {
		return report{}, err
	}
	return report{Layout: &arranged, Analysis: &analysis, Optimized: &optimized}, nil
}

func runPipeline(ctx context.Context, cfg config.Config, logger *slog.Logger, document []byte) (report, error) {
	c, err := client.Dial(config.TemporalClientOptions(cfg.Temporal, core.NewTemporalLogger(logger, true)))
	if err != nil {
		return report{}, fmt.Errorf("unable to create client: %w", err)
	}
	defer c.Close()

	launcher := workflows.NewLauncher(c, cfg.Temporal.TaskQueue, cfg.ProgressDelay)
	workflowID, err := launcher.Start(ctx, workflows.OptimizationRequest{Document: document})
	if err != nil {
		return report{}, err
	}
	logger.Info("Started optimization", "workflow_id", workflowID)

	result, err := launcher.Result(ctx, workflowID)
	if err != nil {
		return report{}, err
	}
	logger.Info("Optimization completed", "steps", result.Steps)
	return report{Layout: result.Layout, Analysis: result.Analysis, Optimized: result.Optimized}, nil
}
