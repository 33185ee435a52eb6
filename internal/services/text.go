package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/planrun/planrun/internal/registry"
)

// textCapability exposes small string actions, mostly useful for stitching
// placeholder-resolved values between tasks.
func textCapability() *registry.Capability {
	return &registry.Capability{
		Service: "text",
		Actions: map[string]registry.Invocable{
			"upper": registry.InvocableFunc(func(_ context.Context, inputs map[string]any) (any, error) {
				s, err := stringInput(inputs, "value")
				if err != nil {
					return nil, err
				}
				return map[string]any{"text": strings.ToUpper(s)}, nil
			}),
			"lower": registry.InvocableFunc(func(_ context.Context, inputs map[string]any) (any, error) {
				s, err := stringInput(inputs, "value")
				if err != nil {
					return nil, err
				}
				return map[string]any{"text": strings.ToLower(s)}, nil
			}),
			"join": registry.InvocableFunc(func(_ context.Context, inputs map[string]any) (any, error) {
				parts, ok := inputs["parts"].([]any)
				if !ok {
					return nil, fmt.Errorf("input %q must be a list", "parts")
				}
				sep, _ := inputs["separator"].(string)
				strs := make([]string, len(parts))
				for i, p := range parts {
					strs[i] = fmt.Sprintf("%v", p)
				}
				return map[string]any{"text": strings.Join(strs, sep)}, nil
			}),
		},
	}
}

func stringInput(inputs map[string]any, key string) (string, error) {
	v, ok := inputs[key]
	if !ok {
		return "", fmt.Errorf("missing input %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("input %q must be a string, got %T", key, v)
	}
	return s, nil
}
