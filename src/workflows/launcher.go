package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"

	"n8n-optimizer/src/core/domain"
)

// ErrInvalidPipeline is returned by Start when the requested pipeline is rejected
var ErrInvalidPipeline = errors.New("invalid pipeline")

// Launcher starts optimization runs and reads their progress and results
type Launcher struct {
	client        client.Client
	taskQueue     string
	progressDelay time.Duration
}

// NewLauncher wraps a Temporal client. progressDelay is used for requests
// that do not set their own.
func NewLauncher(c client.Client, taskQueue string, progressDelay time.Duration) *Launcher {
	return &Launcher{client: c, taskQueue: taskQueue, progressDelay: progressDelay}
}

// Start validates the request pipeline and starts a run, returning its workflow id
func (l *Launcher) Start(ctx context.Context, req OptimizationRequest) (string, error) {
	if req.Pipeline != nil {
		if err := ValidatePipelineConfig(*req.Pipeline); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPipeline, err)
		}
	}
	if req.ProgressDelay == 0 {
		req.ProgressDelay = l.progressDelay
	}

	we, err := l.client.ExecuteWorkflow(ctx,
		BuildStartOptions(GenerateOptimizationID(), l.taskQueue),
		OptimizationWorkflowName,
		req,
	)
	if err != nil {
		return "", fmt.Errorf("unable to execute workflow: %w", err)
	}
	return we.GetID(), nil
}

// Progress queries the live progress of a run
func (l *Launcher) Progress(ctx context.Context, workflowID string) (domain.Progress, error) {
	value, err := l.client.QueryWorkflow(ctx, workflowID, "", domain.ProgressQuery)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("query progress of %s: %w", workflowID, err)
	}

	var progress domain.Progress
	if err := value.Get(&progress); err != nil {
		return domain.Progress{}, fmt.Errorf("decode progress of %s: %w", workflowID, err)
	}
	return progress, nil
}

// Result blocks until the run finishes and returns its result
func (l *Launcher) Result(ctx context.Context, workflowID string) (OptimizationResult, error) {
	var result OptimizationResult
	if err := l.client.GetWorkflow(ctx, workflowID, "").Get(ctx, &result); err != nil {
		return OptimizationResult{}, fmt.Errorf("optimization %s: %w", workflowID, err)
	}
	return result, nil
}
