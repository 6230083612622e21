package domain

// StepStatus is the lifecycle state of one pipeline step, as stored in the workflow memo
type StepStatus string

func (s StepStatus) String() string {
	return string(s)
}

const (
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)
