package plan

// Task represents one unit of work in a plan: a service/action pair, its
// inputs, and the task IDs it depends on.
type Task struct {
	ID        string         `json:"id"`
	Service   string         `json:"service"`
	Action    string         `json:"action"`
	Inputs    map[string]any `json:"inputs,omitempty"`
	DependsOn []string       `json:"depends_on,omitempty"`

	// Advisory metadata. Neither field is consulted by the scheduler;
	// AllowFallback hints that the action may need a higher-cost fallback,
	// Priority is a hint for external planners.
	AllowFallback bool `json:"allow_fallback,omitempty"`
	Priority      int  `json:"priority,omitempty"`
}

// Dependencies returns a copy of the task's declared dependency IDs.
func (t *Task) Dependencies() []string {
	if t.DependsOn == nil {
		return nil
	}
	return append([]string(nil), t.DependsOn...)
}

// Plan is the full directed graph of tasks submitted for one execution.
// List order is irrelevant; execution order is dependency-driven.
// A Plan is treated as immutable once handed to the engine.
type Plan struct {
	Tasks []Task `json:"tasks"`
}

// Get returns the task with the given ID, or false if absent.
func (p *Plan) Get(taskID string) (*Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}

// IDs returns all task identifiers in list order, duplicates included.
func (p *Plan) IDs() []string {
	ids := make([]string, 0, len(p.Tasks))
	for i := range p.Tasks {
		ids = append(ids, p.Tasks[i].ID)
	}
	return ids
}
