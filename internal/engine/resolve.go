package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/planrun/planrun/internal/plan"
)

// placeholderPattern matches {{taskID}} and {{taskID.path.to.field}}.
// Task IDs and field names may contain hyphens; a path segment consisting
// only of digits indexes a sequence.
var placeholderPattern = regexp.MustCompile(`\{\{([\w-]+(?:\.[\w-]+)*)\}\}`)

// Resolve substitutes {{taskID.path}} placeholders in value from the
// completed-results map, recursing through strings, sequences, and mappings.
// A placeholder whose task has not completed, or whose path does not exist,
// is left verbatim: the broken reference surfaces later as a malformed input
// to the action rather than aborting the task up front.
func Resolve(value any, completed map[string]plan.TaskResult) any {
	switch v := value.(type) {
	case string:
		return resolveString(v, completed)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Resolve(elem, completed)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			out[key] = Resolve(elem, completed)
		}
		return out
	default:
		return value
	}
}

// ResolveInputs resolves a task's full input mapping. A nil mapping stays nil.
func ResolveInputs(inputs map[string]any, completed map[string]plan.TaskResult) map[string]any {
	if inputs == nil {
		return nil
	}
	out := make(map[string]any, len(inputs))
	for key, value := range inputs {
		out[key] = Resolve(value, completed)
	}
	return out
}

func resolveString(s string, completed map[string]plan.TaskResult) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		path := strings.Split(match[2:len(match)-2], ".")
		result, ok := completed[path[0]]
		if !ok {
			return match
		}
		value, ok := descend(result.Output, path[1:])
		if !ok {
			return match
		}
		return coerce(value)
	})
}

// descend walks a dot path through decoded JSON-like data. Digit segments
// index sequences, everything else names a mapping field.
func descend(value any, path []string) (any, bool) {
	for _, segment := range path {
		switch v := value.(type) {
		case map[string]any:
			next, ok := v[segment]
			if !ok {
				return nil, false
			}
			value = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			value = v[idx]
		default:
			return nil, false
		}
	}
	if value == nil {
		return nil, false
	}
	return value, true
}

// coerce renders a resolved value as the string substituted into the input.
// Scalars use their natural form; structured values are rendered as JSON so
// the substitution stays parseable downstream.
func coerce(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}
