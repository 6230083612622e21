package activities

import (
	"context"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"n8n-optimizer/src/analyzer"
)

const OptimizeWorkflowActivityName = "optimize_workflow"

func init() {
	RegisterActivity(
		OptimizeWorkflowActivityName,
		OptimizeWorkflowActivity,
		WithDescription("Builds the optimized export document"),
	)
}

// OptimizeWorkflowActivity builds the optimized document. It analyzes the
// workflow itself when no earlier step did.
func OptimizeWorkflowActivity(ctx context.Context, activityCtx ActivityContext) (ActivityResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("OptimizeWorkflowActivity executing", "workflow_id", activityCtx.WorkflowID)

	state := activityCtx.State
	if state.Workflow == nil {
		return ActivityResult{}, temporal.NewNonRetryableApplicationError(
			"optimize_workflow needs a parsed workflow; run parse_workflow first",
			ErrTypeInvalidState,
			nil,
		)
	}

	if state.Analysis == nil {
		analysis := analyzer.Analyze(*state.Workflow)
		state.Analysis = &analysis
	}

	optimized, err := analyzer.GenerateOptimized(*state.Workflow, *state.Analysis, time.Now())
	if err != nil {
		return ActivityResult{}, err
	}
	state.Optimized = &optimized

	return ActivityResult{
		State: state,
		Metadata: map[string]interface{}{
			"added_nodes": len(optimized.Nodes) - len(state.Workflow.Nodes),
		},
	}, nil
}
