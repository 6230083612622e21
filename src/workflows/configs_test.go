package workflows

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"n8n-optimizer/src/nodes/activities"
)

func TestDefaultPipelineIsValid(t *testing.T) {
	pipeline := BuildDefaultPipeline()

	require.NoError(t, ValidatePipelineConfig(pipeline))
	assert.Equal(t, []string{"parse", "arrange", "analyze", "optimize"}, StepOrder(pipeline))
}

func TestValidatePipelineConfig(t *testing.T) {
	t.Run("unknown activity", func(t *testing.T) {
		err := ValidatePipelineConfig(PipelineConfig{
			StartStep: "a",
			Steps:     map[string]StepConfig{"a": {Node: "bought_any_offer"}},
		})
		assert.ErrorContains(t, err, "unknown activity")
	})

	t.Run("step input violates schema", func(t *testing.T) {
		err := ValidatePipelineConfig(PipelineConfig{
			StartStep: "a",
			Steps: map[string]StepConfig{
				"a": {Node: activities.ParseWorkflowActivityName, Schema: map[string]interface{}{"max_nodes": -1}},
			},
		})
		assert.ErrorContains(t, err, "step 'a'")
	})
}

func TestStepOrderStopsAtLoops(t *testing.T) {
	order := StepOrder(PipelineConfig{
		StartStep: "a",
		Steps: map[string]StepConfig{
			"a": {Node: "x", GoTo: "b"},
			"b": {Node: "x", GoTo: "a"},
		},
	})
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Empty(t, StepOrder(PipelineConfig{StartStep: "missing"}))
}

func TestBuildStartOptions(t *testing.T) {
	id := GenerateOptimizationID()
	assert.True(t, strings.HasPrefix(id, "optimization-"))

	options := BuildStartOptions(id, "queue")
	assert.Equal(t, id, options.ID)
	assert.Equal(t, "queue", options.TaskQueue)
	assert.Equal(t, int32(1), options.RetryPolicy.MaximumAttempts)
}
