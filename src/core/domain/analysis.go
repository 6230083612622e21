package domain

// Severity of an advisory finding
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// IssueKind identifies which heuristic produced an issue
type IssueKind string

const (
	IssueMissingErrorHandling   IssueKind = "missing_error_handling"
	IssueUnusedNode             IssueKind = "unused_node"
	IssueSlowNode               IssueKind = "slow_node"
	IssueHTTPWithoutErrorBranch IssueKind = "http_without_error_branch"
)

// Importance of a recommendation
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
)

// Issue is a single advisory finding. NodeID is empty for workflow-wide findings.
type Issue struct {
	Kind        IssueKind `json:"kind"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	NodeID      string    `json:"node_id,omitempty"`
}

type Recommendation struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Importance  Importance `json:"importance"`
}

type Optimization struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Benefit        string `json:"benefit"`
	Implementation string `json:"implementation"`
}

// Analysis is a computed snapshot of a workflow; it is never mutated in place
type Analysis struct {
	NodeCount        int              `json:"node_count"`
	NodeTypes        map[string]int   `json:"node_types"`
	HasErrorHandling bool             `json:"has_error_handling"`
	ComplexityScore  int              `json:"complexity_score"`
	OverallScore     int              `json:"overall_score"`
	Issues           []Issue          `json:"issues"`
	Recommendations  []Recommendation `json:"recommendations"`
	Optimizations    []Optimization   `json:"optimizations"`
}

// IssuesFor returns the issues that reference the given node
func (a Analysis) IssuesFor(nodeID string) []Issue {
	var out []Issue
	for _, issue := range a.Issues {
		if issue.NodeID == nodeID {
			out = append(out, issue)
		}
	}
	return out
}
