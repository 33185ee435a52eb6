package services

import (
	"context"
	"fmt"
	"time"

	"github.com/planrun/planrun/internal/registry"
)

// clockCapability exposes wall-clock actions: "now" returns the current time,
// "sleep" pauses for a given number of milliseconds (honoring cancellation).
func clockCapability() *registry.Capability {
	return &registry.Capability{
		Service: "clock",
		Actions: map[string]registry.Invocable{
			"now": registry.InvocableFunc(func(_ context.Context, inputs map[string]any) (any, error) {
				layout := time.RFC3339
				if f, ok := inputs["format"].(string); ok && f != "" {
					layout = f
				}
				now := time.Now()
				return map[string]any{
					"time": now.Format(layout),
					"unix": now.Unix(),
				}, nil
			}),
			"sleep": registry.InvocableFunc(func(ctx context.Context, inputs map[string]any) (any, error) {
				ms, err := intInput(inputs, "ms")
				if err != nil {
					return nil, err
				}
				select {
				case <-time.After(time.Duration(ms) * time.Millisecond):
					return map[string]any{"slept_ms": ms}, nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}),
		},
	}
}

// intInput reads an integer input that may arrive as a JSON float64, an int,
// or a numeric string (placeholder substitution stringifies numbers).
func intInput(inputs map[string]any, key string) (int, error) {
	switch v := inputs[key].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return 0, fmt.Errorf("input %q is not a number: %q", key, v)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("missing input %q", key)
	default:
		return 0, fmt.Errorf("input %q has unsupported type %T", key, v)
	}
}
