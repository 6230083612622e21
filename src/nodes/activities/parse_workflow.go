package activities

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"n8n-optimizer/src/helpers"
	"n8n-optimizer/src/validation"
)

const ParseWorkflowActivityName = "parse_workflow"

// ParseWorkflowSchema defines the input schema for parse_workflow activity
type ParseWorkflowSchema struct {
	MaxNodes int `json:"max_nodes,omitempty" jsonschema:"description=Reject documents with more nodes than this (0 means no limit),minimum=0"`
}

func init() {
	RegisterActivity(
		ParseWorkflowActivityName,
		ParseWorkflowActivity,
		WithSchema(ParseWorkflowSchema{}),
		WithDescription("Validates the uploaded document and decodes it into a workflow"),
	)
}

// ParseWorkflowActivity validates the raw document and stores the decoded workflow in the state
func ParseWorkflowActivity(ctx context.Context, activityCtx ActivityContext) (ActivityResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("ParseWorkflowActivity executing", "workflow_id", activityCtx.WorkflowID, "bytes", len(activityCtx.State.Document))

	schema, err := helpers.UnmarshalSchema[ParseWorkflowSchema](activityCtx.Schema)
	if err != nil {
		logger.Error("Failed to unmarshal schema", "error", err)
		return ActivityResult{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("invalid schema: %v", err),
			ErrTypeInvalidSchema,
			err,
		)
	}

	wf, err := validation.ParseWorkflow(activityCtx.State.Document)
	if err != nil {
		if errors.Is(err, validation.ErrInvalidDocument) {
			logger.Warn("Rejected workflow document", "error", err)
			return ActivityResult{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidDocument, err)
		}
		return ActivityResult{}, err
	}

	if schema.MaxNodes > 0 && len(wf.Nodes) > schema.MaxNodes {
		msg := fmt.Sprintf("workflow has %d nodes, the limit is %d", len(wf.Nodes), schema.MaxNodes)
		return ActivityResult{}, temporal.NewNonRetryableApplicationError(msg, ErrTypeInvalidDocument, nil)
	}

	state := activityCtx.State
	state.Workflow = &wf

	logger.Info("ParseWorkflowActivity completed", "nodes", len(wf.Nodes), "connections", wf.Connections.Count())
	return ActivityResult{
		State: state,
		Metadata: map[string]interface{}{
			"node_count":       len(wf.Nodes),
			"connection_count": wf.Connections.Count(),
		},
	}, nil
}
