package workflows

import (
	"encoding/json"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/layout"
	"n8n-optimizer/src/nodes/activities"
)

const ErrTypeInvalidPipeline = "InvalidPipeline"

// OptimizationRequest is the input of OptimizationWorkflow.
// A nil Pipeline runs BuildDefaultPipeline.
type OptimizationRequest struct {
	Document      json.RawMessage `json:"document"`
	Pipeline      *PipelineConfig `json:"pipeline,omitempty"`
	ProgressDelay time.Duration   `json:"progress_delay,omitempty"`
}

// OptimizationResult is everything the pipeline produced.
// Parts whose step was not in the pipeline are nil.
type OptimizationResult struct {
	Steps     []string         `json:"steps"`
	Workflow  *domain.Workflow `json:"workflow,omitempty"`
	Layout    *layout.Layout   `json:"layout,omitempty"`
	Analysis  *domain.Analysis `json:"analysis,omitempty"`
	Optimized *domain.Workflow `json:"optimized,omitempty"`
}

// OptimizationWorkflow walks the pipeline from its start step following go_to,
// running each step as an activity and recording its status in the memo
func OptimizationWorkflow(ctx workflow.Context, req OptimizationRequest) (OptimizationResult, error) {
	logger := workflow.GetLogger(ctx)

	pipeline := BuildDefaultPipeline()
	if req.Pipeline != nil {
		pipeline = *req.Pipeline
	}

	pe := newPipelineExecutor(ctx, pipeline)
	if err := pe.registerProgressQuery(); err != nil {
		return OptimizationResult{}, err
	}
	logger.Info("OptimizationWorkflow started", "start_step", pipeline.StartStep, "steps", pe.progress.Total)

	if err := pe.validatePipeline(); err != nil {
		pe.setFinalWorkflowStatus(domain.StepStatusFailed, err)
		return OptimizationResult{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidPipeline, err)
	}

	state := activities.PipelineState{Document: req.Document}
	visitedSteps := make(map[string]bool)

	for stepName := pipeline.StartStep; stepName != ""; {
		if err := pe.checkCircularReference(stepName, visitedSteps); err != nil {
			pe.setFinalWorkflowStatus(domain.StepStatusFailed, err)
			return OptimizationResult{}, err
		}

		stepDef, err := pe.getStepDefinition(stepName)
		if err != nil {
			pe.setFinalWorkflowStatus(domain.StepStatusFailed, err)
			return OptimizationResult{}, err
		}

		if len(visitedSteps) > 1 {
			if err := pe.pause(req.ProgressDelay, stepName); err != nil {
				return OptimizationResult{}, err
			}
		}

		startedAt := pe.setStepRunningStatus(stepName, stepDef.Node)
		result, err := pe.executeStep(stepName, stepDef, state)
		pe.persistStepResult(stepName, stepDef.Node, result, startedAt, err)
		if err != nil {
			logger.Error("Step failed", "step", stepName, "node", stepDef.Node, "error", err)
			pe.setFinalWorkflowStatus(domain.StepStatusFailed, err)
			return OptimizationResult{}, err
		}

		state = result.State
		if state.Analysis != nil {
			pe.upsertSearchAttributes(*state.Analysis)
		}

		stepName = stepDef.GoTo
	}

	pe.setFinalWorkflowStatus(domain.StepStatusCompleted, nil)
	logger.Info("OptimizationWorkflow completed", "steps", len(pe.progress.Completed))

	return OptimizationResult{
		Steps:     append([]string{}, pe.progress.Completed...),
		Workflow:  state.Workflow,
		Layout:    state.Layout,
		Analysis:  state.Analysis,
		Optimized: state.Optimized,
	}, nil
}
