package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planrun/planrun/internal/config"
	"github.com/planrun/planrun/internal/registry"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func builtinRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	Register(reg, config.DefaultConfig(), quietLogger())
	return reg
}

func TestRegisterInstallsCapabilities(t *testing.T) {
	reg := builtinRegistry(t)
	for _, svc := range []string{"clock", "text", "http"} {
		_, ok := reg.Lookup(svc)
		assert.True(t, ok, "missing capability %q", svc)
	}
}

func TestClockNow(t *testing.T) {
	reg := builtinRegistry(t)
	inv, ok := reg.Action("clock", "now")
	require.True(t, ok)

	out, err := inv.Invoke(context.Background(), map[string]any{})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.NotEmpty(t, m["time"])

	parsed, err := time.Parse(time.RFC3339, m["time"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, time.Minute)
}

func TestClockSleep(t *testing.T) {
	reg := builtinRegistry(t)
	inv, _ := reg.Action("clock", "sleep")

	tests := []struct {
		name    string
		inputs  map[string]any
		wantErr bool
	}{
		{"json number", map[string]any{"ms": float64(1)}, false},
		{"stringified number", map[string]any{"ms": "1"}, false},
		{"missing", map[string]any{}, true},
		{"not a number", map[string]any{"ms": "soon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.Invoke(context.Background(), tt.inputs)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClockSleepCancellation(t *testing.T) {
	reg := builtinRegistry(t)
	inv, _ := reg.Action("clock", "sleep")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := inv.Invoke(ctx, map[string]any{"ms": float64(5000)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextActions(t *testing.T) {
	reg := builtinRegistry(t)

	upper, _ := reg.Action("text", "upper")
	out, err := upper.Invoke(context.Background(), map[string]any{"value": "q4.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "Q4.PDF", out.(map[string]any)["text"])

	join, _ := reg.Action("text", "join")
	out, err = join.Invoke(context.Background(), map[string]any{
		"parts":     []any{"a", float64(2), true},
		"separator": ", ",
	})
	require.NoError(t, err)
	assert.Equal(t, "a, 2, true", out.(map[string]any)["text"])

	_, err = join.Invoke(context.Background(), map[string]any{"parts": "not-a-list"})
	assert.Error(t, err)
}

func TestHTTPGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"name": "Q4.pdf"}`)
	}))
	defer srv.Close()

	reg := builtinRegistry(t)
	inv, _ := reg.Action("http", "get")

	out, err := inv.Invoke(context.Background(), map[string]any{"url": srv.URL})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, 200, m["status"])
	assert.Equal(t, map[string]any{"name": "Q4.pdf"}, m["body"])
}

func TestHTTPUnauthorizedClassifiable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	reg := builtinRegistry(t)
	inv, _ := reg.Action("http", "get")

	_, err := inv.Invoke(context.Background(), map[string]any{"url": srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestHTTPMissingURL(t *testing.T) {
	reg := builtinRegistry(t)
	inv, _ := reg.Action("http", "get")
	_, err := inv.Invoke(context.Background(), map[string]any{})
	assert.Error(t, err)
}
