package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"n8n-optimizer/src/analyzer"
)

const AnalyzeWorkflowActivityName = "analyze_workflow"

func init() {
	RegisterActivity(
		AnalyzeWorkflowActivityName,
		AnalyzeWorkflowActivity,
		WithDescription("Scores the workflow and lists issues and recommendations"),
	)
}

func AnalyzeWorkflowActivity(ctx context.Context, activityCtx ActivityContext) (ActivityResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("AnalyzeWorkflowActivity executing", "workflow_id", activityCtx.WorkflowID)

	state := activityCtx.State
	if state.Workflow == nil {
		return ActivityResult{}, temporal.NewNonRetryableApplicationError(
			"analyze_workflow needs a parsed workflow; run parse_workflow first",
			ErrTypeInvalidState,
			nil,
		)
	}

	analysis := analyzer.Analyze(*state.Workflow)
	state.Analysis = &analysis

	logger.Info("AnalyzeWorkflowActivity completed", "score", analysis.OverallScore, "issues", len(analysis.Issues))
	return ActivityResult{
		State: state,
		Metadata: map[string]interface{}{
			"overall_score":      analysis.OverallScore,
			"complexity_score":   analysis.ComplexityScore,
			"has_error_handling": analysis.HasErrorHandling,
			"issues":             len(analysis.Issues),
		},
	}, nil
}
