// Package registry holds the capability registry the engine dispatches
// through: a two-level mapping from service name to action name to invocable.
package registry

import (
	"context"
	"sync"
)

// Invocable is a single remote operation. It receives the fully resolved
// input mapping and returns the action's raw result value.
type Invocable interface {
	Invoke(ctx context.Context, inputs map[string]any) (any, error)
}

// InvocableFunc adapts a function to the Invocable interface.
type InvocableFunc func(ctx context.Context, inputs map[string]any) (any, error)

// Invoke calls f.
func (f InvocableFunc) Invoke(ctx context.Context, inputs map[string]any) (any, error) {
	return f(ctx, inputs)
}

// Capability is a registered group of actions for one service name.
type Capability struct {
	Service string
	Actions map[string]Invocable
}

// Authenticator acquires credentials for every service group at once.
// Login returns whether a valid credential was obtained; an error describes
// why the flow itself could not run.
type Authenticator interface {
	Login(ctx context.Context) (bool, error)
}

// Registry maps service names to capabilities.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]*Capability
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{caps: make(map[string]*Capability)}
}

// Register adds or replaces a capability under its service name.
func (r *Registry) Register(c *Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c.Service] = c
}

// Lookup returns the capability for a service name.
func (r *Registry) Lookup(service string) (*Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[service]
	return c, ok
}

// Action resolves a service/action pair to its invocable.
func (r *Registry) Action(service, action string) (Invocable, bool) {
	c, ok := r.Lookup(service)
	if !ok {
		return nil, false
	}
	inv, ok := c.Actions[action]
	return inv, ok
}

// Services returns all registered service names.
func (r *Registry) Services() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.caps))
	for name := range r.caps {
		names = append(names, name)
	}
	return names
}
