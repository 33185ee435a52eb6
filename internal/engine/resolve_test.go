package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planrun/planrun/internal/plan"
)

func completedFixture() map[string]plan.TaskResult {
	return map[string]plan.TaskResult{
		"find": {
			TaskID:  "find",
			Success: true,
			Output: map[string]any{
				"name":  "Q4.pdf",
				"size":  float64(2048),
				"owner": map[string]any{"email": "a@b.com"},
			},
		},
		"t": {
			TaskID:  "t",
			Success: true,
			Output: map[string]any{
				"items": []any{"a", "b", "c"},
				"flags": []any{true, false},
			},
		},
		"scalar": {
			TaskID:  "scalar",
			Success: true,
			Output:  "just text",
		},
	}
}

func TestResolveStrings(t *testing.T) {
	completed := completedFixture()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"inline substitution", "See {{find.name}}", "See Q4.pdf"},
		{"exact match coerced to string", "{{find.size}}", "2048"},
		{"array index", "{{t.items.1}}", "b"},
		{"nested field", "owner is {{find.owner.email}}", "owner is a@b.com"},
		{"bare task reference", "{{scalar}}", "just text"},
		{"bool coercion", "{{t.flags.0}}", "true"},
		{"multiple placeholders", "{{find.name}} by {{find.owner.email}}", "Q4.pdf by a@b.com"},
		{"missing task left verbatim", "{{missingTask.field}}", "{{missingTask.field}}"},
		{"missing field left verbatim", "See {{find.nothing}}", "See {{find.nothing}}"},
		{"index out of range left verbatim", "{{t.items.9}}", "{{t.items.9}}"},
		{"index into non-sequence left verbatim", "{{find.name.0}}", "{{find.name.0}}"},
		{"no partial substitution on broken path", "{{find.owner.phone}}", "{{find.owner.phone}}"},
		{"mixed resolved and unresolved", "{{find.name}} {{ghost.x}}", "Q4.pdf {{ghost.x}}"},
		{"structured value rendered as json", "{{find.owner}}", `{"email":"a@b.com"}`},
		{"plain string untouched", "no placeholders here", "no placeholders here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.input, completed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRecursion(t *testing.T) {
	completed := completedFixture()

	input := map[string]any{
		"to":      "{{find.owner.email}}",
		"body":    "See {{find.name}}",
		"cc":      []any{"{{find.owner.email}}", "x@y.com"},
		"count":   float64(3),
		"nested":  map[string]any{"inner": "{{t.items.2}}"},
		"literal": true,
	}

	got := ResolveInputs(input, completed)

	assert.Equal(t, "a@b.com", got["to"])
	assert.Equal(t, "See Q4.pdf", got["body"])
	assert.Equal(t, []any{"a@b.com", "x@y.com"}, got["cc"])
	assert.Equal(t, float64(3), got["count"])
	assert.Equal(t, map[string]any{"inner": "c"}, got["nested"])
	assert.Equal(t, true, got["literal"])

	// Keys stay untouched even when they look like placeholders.
	weird := ResolveInputs(map[string]any{"{{find.name}}": "v"}, completed)
	_, ok := weird["{{find.name}}"]
	assert.True(t, ok)
}

func TestResolveNilInputs(t *testing.T) {
	assert.Nil(t, ResolveInputs(nil, completedFixture()))
}

func TestResolveNonContainerPassthrough(t *testing.T) {
	completed := completedFixture()
	assert.Equal(t, 42, Resolve(42, completed))
	assert.Nil(t, Resolve(nil, completed))
}
