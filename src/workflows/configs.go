package workflows

import (
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"n8n-optimizer/src/nodes/activities"
	"n8n-optimizer/src/validation"
)

const (
	OptimizationWorkflowName = "OptimizationWorkflow"
	optimizationIDPrefix     = "optimization"
)

// StepConfig is one step of the pipeline: the activity it runs, the step
// that follows it and the step input validated against the activity schema
type StepConfig struct {
	Node   string                 `json:"node"`
	GoTo   string                 `json:"go_to,omitempty"`
	Schema map[string]interface{} `json:"schema,omitempty"`
}

// PipelineConfig is the step graph the optimization workflow walks
type PipelineConfig struct {
	StartStep string                `json:"start_step"`
	Steps     map[string]StepConfig `json:"steps"`
}

// BuildDefaultPipeline builds parse -> arrange -> analyze -> optimize
func BuildDefaultPipeline() PipelineConfig {
	return PipelineConfig{
		StartStep: "parse",
		Steps: map[string]StepConfig{
			"parse": {
				Node: activities.ParseWorkflowActivityName,
				GoTo: "arrange",
				Schema: map[string]interface{}{
					"max_nodes": 500,
				},
			},
			"arrange": {
				Node: activities.ArrangeWorkflowActivityName,
				GoTo: "analyze",
			},
			"analyze": {
				Node: activities.AnalyzeWorkflowActivityName,
				GoTo: "optimize",
			},
			"optimize": {
				Node: activities.OptimizeWorkflowActivityName,
			},
		},
	}
}

func convertToDefinition(config PipelineConfig) validation.Definition {
	definition := make(validation.Definition, len(config.Steps))
	for name, step := range config.Steps {
		definition[name] = validation.StepDefinition{Node: step.Node, GoTo: step.GoTo}
	}
	return definition
}

// ValidatePipelineConfig checks the step graph and every step input against
// the schema of its activity
func ValidatePipelineConfig(config PipelineConfig) error {
	if err := validation.ValidatePipeline(convertToDefinition(config), config.StartStep, activities.HasActivity); err != nil {
		return err
	}

	for stepName, step := range config.Steps {
		info, _ := activities.GetActivityInfo(step.Node)
		if err := validation.ValidateStepSchema(step.Node, info.Options.Schema, step.Schema); err != nil {
			return fmt.Errorf("step '%s': %w", stepName, err)
		}
	}
	return nil
}

// StepOrder lists the steps reachable from the start step in execution order
func StepOrder(config PipelineConfig) []string {
	var order []string
	seen := make(map[string]bool)
	for step := config.StartStep; step != "" && !seen[step]; {
		stepDef, ok := config.Steps[step]
		if !ok {
			break
		}
		seen[step] = true
		order = append(order, step)
		step = stepDef.GoTo
	}
	return order
}

// GenerateOptimizationID returns a new workflow id for an optimization run
func GenerateOptimizationID() string {
	return fmt.Sprintf("%s-%s", optimizationIDPrefix, uuid.New().String())
}

// BuildStartOptions builds the options an optimization run is started with
func BuildStartOptions(workflowID, taskQueue string) client.StartWorkflowOptions {
	return client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: taskQueue,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1, // No retries
		},
	}
}
