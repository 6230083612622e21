package domain

const (
	// ProgressQuery is answered by the optimization workflow with its current Progress
	ProgressQuery = "progress"

	PrimaryWorkflowTaskQueue = "optimizer-task-queue"
)

// Progress is the UI-facing view of a running optimization
type Progress struct {
	Status      string   `json:"status"`
	CurrentStep string   `json:"current_step,omitempty"`
	Completed   []string `json:"completed"`
	Total       int      `json:"total"`
}
