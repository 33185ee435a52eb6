package plan

import "time"

// TaskResult is the outcome of running one task.
type TaskResult struct {
	TaskID   string        `json:"task_id"`
	Success  bool          `json:"success"`
	Output   any           `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`

	// ReAuthAttempted reports that the executor triggered a re-authentication
	// flow for this task. RequiresAuth marks a final failure that needs
	// credentials the engine could not acquire automatically.
	ReAuthAttempted bool `json:"reauth_attempted,omitempty"`
	RequiresAuth    bool `json:"requires_auth,omitempty"`
}

// Result is the aggregate outcome of one plan execution.
type Result struct {
	RunID    string                `json:"run_id"`
	Success  bool                  `json:"success"`
	Results  map[string]TaskResult `json:"results"`
	Errors   map[string]string     `json:"errors,omitempty"`
	Duration time.Duration         `json:"duration"`
}
