package plan

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a plan from a JSON file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a plan from JSON bytes.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.ID == "" {
			return nil, fmt.Errorf("task at index %d has no id", i)
		}
		if t.Service == "" || t.Action == "" {
			return nil, fmt.Errorf("task %q is missing service or action", t.ID)
		}
	}
	return &p, nil
}
