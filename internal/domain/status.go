package domain

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunSkipped   RunStatus = "skipped"
	RunFailed    RunStatus = "failed"
)

// RunReport summarizes one engine run for logging and failure alerts.
type RunReport struct {
	RunID          string    `json:"runId"`
	Status         RunStatus `json:"status"`
	StartedAt      string    `json:"startedAt"`
	FinishedAt     string    `json:"finishedAt,omitempty"`
	EmailsChecked  int       `json:"emailsChecked"`
	Indeterminate  int       `json:"indeterminate"`
	NewMemberships int       `json:"newMemberships"`
}
