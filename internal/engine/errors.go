package engine

import (
	"fmt"
	"strings"
)

// InvalidPlanError aggregates every structural violation found in a plan.
// Execution never starts when validation reports at least one.
type InvalidPlanError struct {
	Violations []string
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid plan: %s", strings.Join(e.Violations, "; "))
}

// DeadlockError reports that a round produced no ready tasks while tasks
// remained. Stuck holds the stranded task identifiers, sorted.
type DeadlockError struct {
	Stuck []string
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("plan cannot make progress; stuck tasks: %s", strings.Join(e.Stuck, ", "))
}
