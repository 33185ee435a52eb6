package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/registry"
)

// errNoResult marks an invocable that returned neither a value nor an error.
// Treating it as a failure guards against silently swallowed remote errors.
var errNoResult = errors.New("action returned no result")

// executor runs one task at a time: resolve inputs, invoke, and recover from
// authentication failures with a single retry.
type executor struct {
	reg  *registry.Registry
	auth *Coordinator
	log  *log.Logger
}

// execute runs task against the live registry. completed feeds placeholder
// resolution. The returned result always carries elapsed wall-clock time
// measured from the first invocation attempt through any retry.
func (x *executor) execute(ctx context.Context, task *plan.Task, completed map[string]plan.TaskResult) plan.TaskResult {
	start := time.Now()
	result := plan.TaskResult{TaskID: task.ID}

	inputs := ResolveInputs(task.Inputs, completed)

	// The registry is consulted live on every execution, not cached from
	// validation time.
	inv, ok := x.reg.Action(task.Service, task.Action)
	if !ok {
		result.Error = fmt.Sprintf("no action %q registered for service %q", task.Action, task.Service)
		result.Duration = time.Since(start)
		return result
	}

	output, err := x.invoke(ctx, inv, inputs)
	if err == nil {
		result.Success = true
		result.Output = output
		result.Duration = time.Since(start)
		return result
	}

	if !IsAuthError(err) {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	// Authentication-classified failure: run the shared login flow and retry
	// the invocation exactly once.
	result.ReAuthAttempted = true
	x.log.Warn("task failed with authentication error", "task", task.ID, "service", task.Service, "err", err)

	if authErr := x.auth.Ensure(ctx, task.Service); authErr != nil {
		result.Error = fmt.Sprintf("service %q requires authentication: %v", task.Service, authErr)
		result.RequiresAuth = true
		result.Duration = time.Since(start)
		return result
	}

	output, err = x.invoke(ctx, inv, inputs)
	if err != nil {
		result.Error = fmt.Sprintf("service %q requires authentication: retry failed: %v", task.Service, err)
		result.RequiresAuth = true
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Output = output
	result.Duration = time.Since(start)
	return result
}

func (x *executor) invoke(ctx context.Context, inv registry.Invocable, inputs map[string]any) (any, error) {
	output, err := inv.Invoke(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if output == nil {
		return nil, errNoResult
	}
	return output, nil
}
