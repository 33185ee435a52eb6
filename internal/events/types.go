package events

import "time"

// Event is the base interface for all engine events.
type Event interface {
	EventType() string
	TaskID() string
}

// Topic constants
const (
	TopicTask = "task"
	TopicPlan = "plan"
	TopicAuth = "auth"
)

// Event type constants
const (
	EventTypeTaskStarted  = "task.started"
	EventTypeTaskSettled  = "task.settled"
	EventTypeAuthStarted  = "auth.started"
	EventTypeAuthFinished = "auth.finished"
	EventTypePlanProgress = "plan.progress"
	EventTypePlanFinished = "plan.finished"
)

// TaskStartedEvent is published when a task's invocation begins.
type TaskStartedEvent struct {
	ID        string
	Service   string
	Action    string
	Timestamp time.Time
}

func (e TaskStartedEvent) EventType() string { return EventTypeTaskStarted }
func (e TaskStartedEvent) TaskID() string    { return e.ID }

// TaskSettledEvent is published when a task produces its final result,
// success or failure.
type TaskSettledEvent struct {
	ID           string
	Success      bool
	Error        string
	RequiresAuth bool
	Duration     time.Duration
	Timestamp    time.Time
}

func (e TaskSettledEvent) EventType() string { return EventTypeTaskSettled }
func (e TaskSettledEvent) TaskID() string    { return e.ID }

// AuthStartedEvent is published when a re-authentication flow begins.
// Trigger names the service whose failure started the flow.
type AuthStartedEvent struct {
	Trigger   string
	Timestamp time.Time
}

func (e AuthStartedEvent) EventType() string { return EventTypeAuthStarted }
func (e AuthStartedEvent) TaskID() string    { return "" }

// AuthFinishedEvent is published when a re-authentication flow settles.
type AuthFinishedEvent struct {
	Trigger   string
	Success   bool
	Timestamp time.Time
}

func (e AuthFinishedEvent) EventType() string { return EventTypeAuthFinished }
func (e AuthFinishedEvent) TaskID() string    { return "" }

// PlanProgressEvent is published after each scheduling round settles.
type PlanProgressEvent struct {
	Round     int
	Total     int
	Completed int
	Failed    int
	Remaining int
	Timestamp time.Time
}

func (e PlanProgressEvent) EventType() string { return EventTypePlanProgress }
func (e PlanProgressEvent) TaskID() string    { return "" }

// PlanFinishedEvent is published once per execution, after the last round
// or on deadlock.
type PlanFinishedEvent struct {
	RunID      string
	Success    bool
	Deadlocked bool
	Duration   time.Duration
	Timestamp  time.Time
}

func (e PlanFinishedEvent) EventType() string { return EventTypePlanFinished }
func (e PlanFinishedEvent) TaskID() string    { return "" }
