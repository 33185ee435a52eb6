package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/registry"
)

func testRegistry() *registry.Registry {
	noop := registry.InvocableFunc(func(_ context.Context, _ map[string]any) (any, error) {
		return map[string]any{}, nil
	})
	reg := registry.New()
	reg.Register(&registry.Capability{
		Service: "drive",
		Actions: map[string]registry.Invocable{"findFiles": noop},
	})
	reg.Register(&registry.Capability{
		Service: "gmail",
		Actions: map[string]registry.Invocable{"sendMessage": noop},
	})
	return reg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		tasks      []plan.Task
		wantCount  int
		wantSubstr []string
	}{
		{
			name: "valid linear chain",
			tasks: []plan.Task{
				{ID: "a", Service: "drive", Action: "findFiles"},
				{ID: "b", Service: "gmail", Action: "sendMessage", DependsOn: []string{"a"}},
			},
		},
		{
			name: "duplicate IDs reported per occurrence",
			tasks: []plan.Task{
				{ID: "a", Service: "drive", Action: "findFiles"},
				{ID: "a", Service: "drive", Action: "findFiles"},
				{ID: "a", Service: "drive", Action: "findFiles"},
			},
			wantCount:  2,
			wantSubstr: []string{`duplicate task ID "a"`},
		},
		{
			name: "dangling dependency",
			tasks: []plan.Task{
				{ID: "a", Service: "drive", Action: "findFiles", DependsOn: []string{"ghost"}},
			},
			wantCount:  1,
			wantSubstr: []string{`depends on unknown task "ghost"`},
		},
		{
			name: "unknown service",
			tasks: []plan.Task{
				{ID: "a", Service: "calendar", Action: "listEvents"},
			},
			wantCount:  1,
			wantSubstr: []string{`unknown service "calendar"`},
		},
		{
			name: "unknown action",
			tasks: []plan.Task{
				{ID: "a", Service: "drive", Action: "deleteEverything"},
			},
			wantCount:  1,
			wantSubstr: []string{`unknown action "deleteEverything"`},
		},
		{
			name: "direct cycle",
			tasks: []plan.Task{
				{ID: "a", Service: "drive", Action: "findFiles", DependsOn: []string{"b"}},
				{ID: "b", Service: "gmail", Action: "sendMessage", DependsOn: []string{"a"}},
			},
			wantCount:  1,
			wantSubstr: []string{"dependency cycle"},
		},
		{
			name: "transitive cycle",
			tasks: []plan.Task{
				{ID: "a", Service: "drive", Action: "findFiles", DependsOn: []string{"c"}},
				{ID: "b", Service: "gmail", Action: "sendMessage", DependsOn: []string{"a"}},
				{ID: "c", Service: "gmail", Action: "sendMessage", DependsOn: []string{"b"}},
			},
			wantCount:  1,
			wantSubstr: []string{"dependency cycle"},
		},
		{
			name: "self cycle",
			tasks: []plan.Task{
				{ID: "a", Service: "drive", Action: "findFiles", DependsOn: []string{"a"}},
			},
			wantCount:  1,
			wantSubstr: []string{"dependency cycle"},
		},
		{
			name: "independent checks all reported",
			tasks: []plan.Task{
				{ID: "a", Service: "nowhere", Action: "nothing", DependsOn: []string{"ghost"}},
				{ID: "a", Service: "drive", Action: "findFiles"},
			},
			wantCount: 3,
			wantSubstr: []string{
				`duplicate task ID "a"`,
				`unknown task "ghost"`,
				`unknown service "nowhere"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := Validate(&plan.Plan{Tasks: tt.tasks}, testRegistry())
			assert.Len(t, violations, tt.wantCount)
			for _, substr := range tt.wantSubstr {
				found := false
				for _, v := range violations {
					if strings.Contains(v, substr) {
						found = true
						break
					}
				}
				assert.True(t, found, "no violation containing %q in %v", substr, violations)
			}
		})
	}
}
