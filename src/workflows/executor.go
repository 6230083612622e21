package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"

	"n8n-optimizer/src/core"
	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/nodes/activities"
)

// pipelineExecutor holds the execution context for an optimization run
type pipelineExecutor struct {
	ctx        workflow.Context
	workflowID string
	config     PipelineConfig
	progress   domain.Progress

	attributesUpserted bool
}

func newPipelineExecutor(ctx workflow.Context, config PipelineConfig) *pipelineExecutor {
	return &pipelineExecutor{
		ctx:        ctx,
		workflowID: workflow.GetInfo(ctx).WorkflowExecution.ID,
		config:     config,
		progress: domain.Progress{
			Status:    domain.StepStatusRunning.String(),
			Completed: []string{},
			Total:     len(StepOrder(config)),
		},
	}
}

// registerProgressQuery answers the progress query with the live state
func (pe *pipelineExecutor) registerProgressQuery() error {
	return workflow.SetQueryHandler(pe.ctx, domain.ProgressQuery, func() (domain.Progress, error) {
		snapshot := pe.progress
		snapshot.Completed = append([]string{}, pe.progress.Completed...)
		return snapshot, nil
	})
}

func (pe *pipelineExecutor) validatePipeline() error {
	if err := ValidatePipelineConfig(pe.config); err != nil {
		workflow.GetLogger(pe.ctx).Error("OptimizationWorkflow: pipeline validation failed", "error", err)
		return err
	}
	return nil
}

// pause waits between steps so clients polling progress can follow along
func (pe *pipelineExecutor) pause(delay time.Duration, nextStep string) error {
	if delay <= 0 {
		return nil
	}
	pe.progress.CurrentStep = nextStep
	timer := workflow.NewTimerWithOptions(pe.ctx, delay, workflow.TimerOptions{
		Summary: fmt.Sprintf("progress delay before %s", nextStep),
	})
	return timer.Get(pe.ctx, nil)
}

// setFinalWorkflowStatus sets the final workflow status in the memo
func (pe *pipelineExecutor) setFinalWorkflowStatus(status domain.StepStatus, err error) {
	pe.progress.Status = status.String()
	pe.progress.CurrentStep = ""

	finalMemo := map[string]interface{}{
		"workflow_status":       status.String(),
		"workflow_completed_at": workflow.Now(pe.ctx).UTC(),
	}
	if err != nil {
		finalMemo["workflow_error"] = err.Error()
	}
	if upsertErr := workflow.UpsertMemo(pe.ctx, finalMemo); upsertErr != nil {
		workflow.GetLogger(pe.ctx).Error("Failed to persist final workflow status memo", "error", upsertErr)
	}
}

// setStepRunningStatus sets the running status memo for a step and returns the started_at time
func (pe *pipelineExecutor) setStepRunningStatus(stepName string, nodeName string) time.Time {
	pe.progress.CurrentStep = stepName

	startedAt := workflow.Now(pe.ctx).UTC()
	memoRunning := map[string]interface{}{
		stepResultKey(stepName): map[string]interface{}{
			"step":       stepName,
			"node":       nodeName,
			"status":     domain.StepStatusRunning.String(),
			"started_at": startedAt,
		},
	}
	if err := workflow.UpsertMemo(pe.ctx, memoRunning); err != nil {
		workflow.GetLogger(pe.ctx).Error("Failed to persist running status memo", "step", stepName, "error", err)
	}
	return startedAt
}

// executeStep runs the step's activity with the options it was registered with
func (pe *pipelineExecutor) executeStep(stepName string, stepDef StepConfig, state activities.PipelineState) (activities.ActivityResult, error) {
	workflow.GetLogger(pe.ctx).Info("Executing step", "step", stepName, "node", stepDef.Node)

	info, _ := activities.GetActivityInfo(stepDef.Node)
	ctx := workflow.WithActivityOptions(pe.ctx, workflow.ActivityOptions{
		StartToCloseTimeout: info.Options.StartToCloseTimeout,
		RetryPolicy:         info.Options.RetryPolicy,
	})

	activityCtx := activities.ActivityContext{
		WorkflowID: pe.workflowID,
		StepName:   stepName,
		Schema:     stepDef.Schema,
		State:      state,
	}

	var result activities.ActivityResult
	err := workflow.ExecuteActivity(ctx, stepDef.Node, activityCtx).Get(ctx, &result)
	return result, err
}

// persistStepResult persists the step execution result in the memo
func (pe *pipelineExecutor) persistStepResult(stepName string, nodeName string, result activities.ActivityResult, startedAt time.Time, stepErr error) {
	stepMemo := map[string]interface{}{
		"step":         stepName,
		"node":         nodeName,
		"status":       domain.StepStatusCompleted.String(),
		"started_at":   startedAt,
		"completed_at": workflow.Now(pe.ctx).UTC(),
	}
	if stepErr != nil {
		stepMemo["error"] = stepErr.Error()
		stepMemo["status"] = domain.StepStatusFailed.String()
	} else {
		pe.progress.Completed = append(pe.progress.Completed, stepName)
	}
	if result.Metadata != nil {
		stepMemo["metadata"] = result.Metadata
	}

	memo := map[string]interface{}{
		stepResultKey(stepName): stepMemo,
		"last_activity_result":  stepMemo,
	}
	if err := workflow.UpsertMemo(pe.ctx, memo); err != nil {
		workflow.GetLogger(pe.ctx).Error("Failed to persist result memo", "step", stepName, "error", err)
	}
}

// upsertSearchAttributes indexes the analysis once it is known. Failure is
// logged and otherwise ignored.
func (pe *pipelineExecutor) upsertSearchAttributes(analysis domain.Analysis) {
	if pe.attributesUpserted {
		return
	}
	pe.attributesUpserted = true

	err := workflow.UpsertTypedSearchAttributes(pe.ctx,
		core.OptimizerScoreField.ValueSet(int64(analysis.OverallScore)),
		core.OptimizerHasErrorHandlingField.ValueSet(analysis.HasErrorHandling),
	)
	if err != nil {
		workflow.GetLogger(pe.ctx).Warn("Failed to upsert search attributes", "error", err)
	}
}

// checkCircularReference checks if a step has been visited before (circular reference)
func (pe *pipelineExecutor) checkCircularReference(stepName string, visitedSteps map[string]bool) error {
	if visitedSteps[stepName] {
		return fmt.Errorf("circular pipeline definition detected at step: %s", stepName)
	}
	visitedSteps[stepName] = true
	return nil
}

// getStepDefinition retrieves the step definition from the config
func (pe *pipelineExecutor) getStepDefinition(stepName string) (StepConfig, error) {
	stepDef, exists := pe.config.Steps[stepName]
	if !exists {
		return StepConfig{}, fmt.Errorf("step definition not found: %s", stepName)
	}
	return stepDef, nil
}

func stepResultKey(stepName string) string {
	return fmt.Sprintf("activity_result_%s", stepName)
}
