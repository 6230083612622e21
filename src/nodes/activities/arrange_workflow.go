package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"n8n-optimizer/src/layout"
)

const ArrangeWorkflowActivityName = "arrange_workflow"

func init() {
	RegisterActivity(
		ArrangeWorkflowActivityName,
		ArrangeWorkflowActivity,
		WithDescription("Places every node on the canvas and derives the edges"),
	)
}

// ArrangeWorkflowActivity computes the canvas layout of the parsed workflow
func ArrangeWorkflowActivity(ctx context.Context, activityCtx ActivityContext) (ActivityResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("ArrangeWorkflowActivity executing", "workflow_id", activityCtx.WorkflowID)

	state := activityCtx.State
	if state.Workflow == nil {
		return ActivityResult{}, temporal.NewNonRetryableApplicationError(
			"arrange_workflow needs a parsed workflow; run parse_workflow first",
			ErrTypeInvalidState,
			nil,
		)
	}

	computed := layout.Compute(*state.Workflow)
	state.Layout = &computed

	return ActivityResult{
		State: state,
		Metadata: map[string]interface{}{
			"edges":  len(computed.Edges),
			"width":  computed.Canvas.Width,
			"height": computed.Canvas.Height,
		},
	}, nil
}
