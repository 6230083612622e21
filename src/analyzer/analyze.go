package analyzer

import (
	"fmt"
	"math"

	"n8n-optimizer/src/core/domain"
)

const (
	baseScore           = 70
	errorHandlingBonus  = 15
	largeWorkflowNodes  = 30
	mediumWorkflowNodes = 20
	highComplexity      = 50
	mediumComplexity    = 30
)

// Analyze computes the metrics, issues and advice for a workflow.
// It never fails: absent nodes or connections count as empty.
func Analyze(wf domain.Workflow) domain.Analysis {
	nodeTypes := make(map[string]int, len(wf.Nodes))
	for _, node := range wf.Nodes {
		nodeTypes[node.Type]++
	}

	hasErrorHandling := HasErrorHandling(wf)
	complexity := ComplexityScore(wf)

	return domain.Analysis{
		NodeCount:        len(wf.Nodes),
		NodeTypes:        nodeTypes,
		HasErrorHandling: hasErrorHandling,
		ComplexityScore:  complexity,
		OverallScore:     OverallScore(len(wf.Nodes), hasErrorHandling, complexity),
		Issues:           Issues(wf, hasErrorHandling),
		Recommendations:  recommendations(),
		Optimizations:    optimizations(),
	}
}

// HasErrorHandling reports whether any node is an Error node or has a
// truthy errorHandling parameter
func HasErrorHandling(wf domain.Workflow) bool {
	for _, node := range wf.Nodes {
		if node.Type == "Error" || truthy(node.Parameters["errorHandling"]) {
			return true
		}
	}
	return false
}

// ComplexityScore is nodes + half the connections + 3 per branching node, rounded
func ComplexityScore(wf domain.Workflow) int {
	branching := 0
	for _, node := range wf.Nodes {
		if branchingTypes[node.Type] {
			branching++
		}
	}
	score := float64(len(wf.Nodes)) + 0.5*float64(wf.Connections.Count()) + 3*float64(branching)
	return int(math.Round(score))
}

// OverallScore starts at 70 and is clamped to [0, 100]
func OverallScore(nodeCount int, hasErrorHandling bool, complexity int) int {
	score := baseScore

	switch {
	case nodeCount > largeWorkflowNodes:
		score -= 10
	case nodeCount > mediumWorkflowNodes:
		score -= 5
	}

	if hasErrorHandling {
		score += errorHandlingBonus
	}

	switch {
	case complexity > highComplexity:
		score -= 20
	case complexity > mediumComplexity:
		score -= 10
	}

	return min(100, max(0, score))
}

// Issues lists the findings in a fixed order: missing error handling, unused
// nodes, slow nodes, then the HTTP error branch finding that is always present
func Issues(wf domain.Workflow, hasErrorHandling bool) []domain.Issue {
	var issues []domain.Issue

	if !hasErrorHandling {
		issues = append(issues, missingErrorHandlingIssue)
	}

	for _, node := range wf.Nodes {
		if node.Type == "Set" || terminalTypes[node.Type] {
			continue
		}
		if len(wf.Connections.TargetsOf(node.ID)) > 0 {
			continue
		}
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueUnusedNode,
			Severity:    domain.SeverityWarning,
			Title:       "Unused node",
			Description: fmt.Sprintf("Node %q (%s) has no outgoing connections.", displayName(node), node.Type),
			NodeID:      node.ID,
		})
	}

	for _, node := range wf.Nodes {
		if !slowTypes[node.Type] {
			continue
		}
		issues = append(issues, domain.Issue{
			Kind:        domain.IssueSlowNode,
			Severity:    domain.SeverityWarning,
			Title:       "Potentially slow node",
			Description: fmt.Sprintf("Node %q (%s) may slow down the workflow.", displayName(node), node.Type),
			NodeID:      node.ID,
		})
	}

	return append(issues, httpWithoutErrorBranchIssue)
}

func displayName(node domain.WorkflowNode) string {
	if node.Name != "" {
		return node.Name
	}
	return node.ID
}

// truthy follows JavaScript truthiness for decoded JSON values
func truthy(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0 && !math.IsNaN(value)
	case float32:
		return value != 0 && !math.IsNaN(float64(value))
	case int:
		return value != 0
	case int64:
		return value != 0
	default:
		return true
	}
}
