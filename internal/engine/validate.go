package engine

import (
	"fmt"

	"github.com/gammazero/toposort"

	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/registry"
)

// Validate checks a plan for structural violations: duplicate task IDs,
// dependencies on tasks absent from the plan, service/action pairs missing
// from the registry, and dependency cycles. All checks run independently and
// every violation found is returned; any non-empty result is fatal to
// execution.
func Validate(p *plan.Plan, reg *registry.Registry) []string {
	var violations []string

	ids := make(map[string]bool, len(p.Tasks))
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if ids[t.ID] {
			violations = append(violations, fmt.Sprintf("duplicate task ID %q", t.ID))
			continue
		}
		ids[t.ID] = true
	}

	for i := range p.Tasks {
		t := &p.Tasks[i]
		for _, depID := range t.DependsOn {
			if !ids[depID] {
				violations = append(violations, fmt.Sprintf("task %q depends on unknown task %q", t.ID, depID))
			}
		}

		svc, ok := reg.Lookup(t.Service)
		if !ok {
			violations = append(violations, fmt.Sprintf("task %q uses unknown service %q", t.ID, t.Service))
			continue
		}
		if _, ok := svc.Actions[t.Action]; !ok {
			violations = append(violations, fmt.Sprintf("task %q uses unknown action %q of service %q", t.ID, t.Action, t.Service))
		}
	}

	if msg := findCycle(p, ids); msg != "" {
		violations = append(violations, msg)
	}

	return violations
}

// findCycle runs a topological sort over the dependency edges. Dependencies
// on tasks outside the plan are excluded; they are already reported as
// dangling and would only add phantom nodes here.
func findCycle(p *plan.Plan, ids map[string]bool) string {
	var edges []toposort.Edge
	for i := range p.Tasks {
		t := &p.Tasks[i]
		added := false
		for _, depID := range t.DependsOn {
			if ids[depID] {
				// Edge (depID, taskID): depID must settle first.
				edges = append(edges, toposort.Edge{depID, t.ID})
				added = true
			}
		}
		if !added {
			edges = append(edges, toposort.Edge{nil, t.ID})
		}
	}

	if _, err := toposort.Toposort(edges); err != nil {
		return fmt.Sprintf("dependency cycle: %v", err)
	}
	return ""
}
