// Package engine executes plans: dependency-driven concurrent scheduling of
// service actions with cross-task placeholder data flow and single-flight
// credential recovery.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/planrun/planrun/internal/events"
	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/registry"
)

// Options tunes one engine instance.
type Options struct {
	// MaxConcurrent caps how many tasks of one round run at once.
	// Zero or negative means unlimited: every ready task launches together.
	MaxConcurrent int

	// Bus receives execution events. Nil disables publishing.
	Bus *events.Bus

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Engine executes plans against a capability registry. The authentication
// coordinator is scoped to the engine instance and shared by every plan it
// runs; all other state lives in one ExecutePlan call.
type Engine struct {
	reg  *registry.Registry
	auth *Coordinator
	bus  *events.Bus
	log  *log.Logger
	opts Options
}

// New creates an engine. authenticator may be nil if no capability can ever
// require re-authentication.
func New(reg *registry.Registry, authenticator registry.Authenticator, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Engine{
		reg:  reg,
		auth: NewCoordinator(authenticator, opts.Bus, opts.Logger),
		bus:  opts.Bus,
		log:  opts.Logger,
		opts: opts,
	}
}

// executionState is owned by a single ExecutePlan call. remaining holds task
// IDs not yet settled; completed holds success results and doubles as the
// placeholder resolution source; failures go to errors. A failed task never
// enters completed, so nothing downstream of it can become ready.
type executionState struct {
	remaining map[string]struct{}
	completed map[string]plan.TaskResult
	errors    map[string]string
	// results holds every settled result, failures included, for the caller's
	// summary. Readiness and placeholder resolution consult completed only.
	results map[string]plan.TaskResult
}

func newExecutionState(p *plan.Plan) *executionState {
	s := &executionState{
		remaining: make(map[string]struct{}, len(p.Tasks)),
		completed: make(map[string]plan.TaskResult),
		errors:    make(map[string]string),
		results:   make(map[string]plan.TaskResult),
	}
	for i := range p.Tasks {
		s.remaining[p.Tasks[i].ID] = struct{}{}
	}
	return s
}

// ready returns the tasks whose dependencies all have a recorded success.
func (s *executionState) ready(p *plan.Plan) []*plan.Task {
	var ready []*plan.Task
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if _, pending := s.remaining[t.ID]; !pending {
			continue
		}
		satisfied := true
		for _, depID := range t.DependsOn {
			if _, ok := s.completed[depID]; !ok {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, t)
		}
	}
	return ready
}

// settle folds one task result into the state.
func (s *executionState) settle(result plan.TaskResult) {
	delete(s.remaining, result.TaskID)
	s.results[result.TaskID] = result
	if result.Success {
		s.completed[result.TaskID] = result
	} else {
		s.errors[result.TaskID] = result.Error
	}
}

func (s *executionState) stuck() []string {
	ids := make([]string, 0, len(s.remaining))
	for id := range s.remaining {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ExecutePlan validates the plan and runs it to completion in rounds of
// concurrently launched ready tasks. Individual task failures are captured in
// the result's error map and do not abort sibling branches. The returned
// error is non-nil only for structural violations (*InvalidPlanError, with a
// nil result) and deadlock (*DeadlockError, alongside the partial result).
func (e *Engine) ExecutePlan(ctx context.Context, p *plan.Plan) (*plan.Result, error) {
	if violations := Validate(p, e.reg); len(violations) > 0 {
		return nil, &InvalidPlanError{Violations: violations}
	}

	start := time.Now()
	runID := uuid.NewString()
	state := newExecutionState(p)
	exec := &executor{reg: e.reg, auth: e.auth, log: e.log}

	e.log.Info("executing plan", "run", runID, "tasks", len(p.Tasks))

	round := 0
	for len(state.remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return e.finish(runID, p, state, start, false), fmt.Errorf("plan execution cancelled: %w", err)
		}

		ready := state.ready(p)
		if len(ready) == 0 {
			stuck := state.stuck()
			for _, id := range stuck {
				state.errors[id] = "stranded: dependencies can no longer be satisfied"
			}
			e.log.Error("plan deadlocked", "run", runID, "stuck", stuck)
			return e.finish(runID, p, state, start, true), &DeadlockError{Stuck: stuck}
		}

		round++
		e.log.Debug("starting round", "run", runID, "round", round, "width", len(ready))

		for _, result := range e.runRound(ctx, exec, ready, state.completed) {
			state.settle(result)
			e.publish(events.TopicTask, events.TaskSettledEvent{
				ID:           result.TaskID,
				Success:      result.Success,
				Error:        result.Error,
				RequiresAuth: result.RequiresAuth,
				Duration:     result.Duration,
				Timestamp:    time.Now(),
			})
		}

		e.publish(events.TopicPlan, events.PlanProgressEvent{
			Round:     round,
			Total:     len(p.Tasks),
			Completed: len(state.completed),
			Failed:    len(state.errors),
			Remaining: len(state.remaining),
			Timestamp: time.Now(),
		})
	}

	return e.finish(runID, p, state, start, false), nil
}

// runRound launches every ready task and blocks until all of them settle.
// Results are collected here and folded into the state only after the join,
// so settle phases never interleave with running tasks.
func (e *Engine) runRound(ctx context.Context, exec *executor, ready []*plan.Task, completed map[string]plan.TaskResult) []plan.TaskResult {
	results := make([]plan.TaskResult, len(ready))

	g, gctx := errgroup.WithContext(ctx)
	if e.opts.MaxConcurrent > 0 {
		g.SetLimit(e.opts.MaxConcurrent)
	}

	var mu sync.Mutex
	for i, task := range ready {
		i, task := i, task
		g.Go(func() error {
			e.publish(events.TopicTask, events.TaskStartedEvent{
				ID:        task.ID,
				Service:   task.Service,
				Action:    task.Action,
				Timestamp: time.Now(),
			})
			result := exec.execute(gctx, task, completed)
			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Engine) finish(runID string, p *plan.Plan, state *executionState, start time.Time, deadlocked bool) *plan.Result {
	result := &plan.Result{
		RunID:    runID,
		Success:  len(state.errors) == 0 && !deadlocked,
		Results:  state.results,
		Errors:   state.errors,
		Duration: time.Since(start),
	}
	e.log.Info("plan finished", "run", runID,
		"success", result.Success,
		"completed", len(state.completed),
		"failed", len(state.errors),
		"duration", result.Duration)
	e.publish(events.TopicPlan, events.PlanFinishedEvent{
		RunID:      runID,
		Success:    result.Success,
		Deadlocked: deadlocked,
		Duration:   result.Duration,
		Timestamp:  time.Now(),
	})
	return result
}

func (e *Engine) publish(topic string, event events.Event) {
	if e.bus != nil {
		e.bus.Publish(topic, event)
	}
}
