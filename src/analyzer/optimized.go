package analyzer

import (
	"fmt"
	"time"

	"n8n-optimizer/src/core/domain"
	"n8n-optimizer/src/helpers"
)

// ExportFileName is the download name of the optimized document
const ExportFileName = "optimized-n8n-workflow.json"

const (
	ErrorHandlerID   = "error-handler"
	ErrorHandlerName = "Error Handler"
)

var errorHandlerPosition = []float64{1000, 300}

// GenerateOptimized returns a copy of the workflow with an Error node added
// when the analysis found no error handling, stamped as optimized at now.
// The input workflow is left untouched.
func GenerateOptimized(wf domain.Workflow, analysis domain.Analysis, now time.Time) (domain.Workflow, error) {
	optimized, err := helpers.DeepCopy(wf)
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("copy workflow: %w", err)
	}

	if !analysis.HasErrorHandling {
		optimized.Nodes = append(optimized.Nodes, domain.WorkflowNode{
			ID:       uniqueID(optimized, ErrorHandlerID),
			Name:     ErrorHandlerName,
			Type:     "Error",
			Position: append([]float64(nil), errorHandlerPosition...),
			Parameters: map[string]interface{}{
				"errorMessage": "Workflow execution failed",
			},
		})
	}

	if optimized.Connections == nil {
		optimized.Connections = domain.Connections{}
	}
	if optimized.Meta == nil {
		optimized.Meta = map[string]interface{}{}
	}
	optimized.Meta["optimized"] = true
	optimized.Meta["optimizedTime"] = now.UTC().Format(time.RFC3339)

	return optimized, nil
}

func uniqueID(wf domain.Workflow, base string) string {
	if !wf.HasNode(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !wf.HasNode(candidate) {
			return candidate
		}
	}
}
