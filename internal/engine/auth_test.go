package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthenticator counts Login calls and returns a scripted outcome.
type stubAuthenticator struct {
	mu    sync.Mutex
	calls int32
	ok    bool
	err   error
	delay time.Duration
}

func (a *stubAuthenticator) Login(_ context.Context) (bool, error) {
	atomic.AddInt32(&a.calls, 1)
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ok, a.err
}

func (a *stubAuthenticator) loginCalls() int {
	return int(atomic.LoadInt32(&a.calls))
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"User not authenticated", true},
		{"AUTHENTICATION REQUIRED for this endpoint", true},
		{"please run login first", true},
		{"login required", true},
		{"401 Unauthorized", true},
		{"invalid credentials provided", true},
		{"token expired at 10:00", true},
		{"Access Denied", true},
		{"file not found", false},
		{"rate limit exceeded", false},
		{"connection refused", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthError(errors.New(tt.msg)))
		})
	}

	assert.False(t, IsAuthError(nil))
}

func TestEnsureSuccess(t *testing.T) {
	auth := &stubAuthenticator{ok: true}
	c := NewCoordinator(auth, nil, quietLogger())

	require.NoError(t, c.Ensure(context.Background(), "gmail"))
	assert.Equal(t, 1, auth.loginCalls())
}

func TestEnsureInvalidCredential(t *testing.T) {
	auth := &stubAuthenticator{ok: false}
	c := NewCoordinator(auth, nil, quietLogger())

	err := c.Ensure(context.Background(), "gmail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid credential")
}

func TestEnsureFlowError(t *testing.T) {
	auth := &stubAuthenticator{err: errors.New("browser could not open")}
	c := NewCoordinator(auth, nil, quietLogger())

	err := c.Ensure(context.Background(), "drive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication flow failed")
}

func TestEnsureNoAuthenticator(t *testing.T) {
	c := NewCoordinator(nil, nil, quietLogger())
	require.Error(t, c.Ensure(context.Background(), "drive"))
}

// TestEnsureSingleFlight verifies that concurrent requesters share one
// in-flight login instead of each starting their own.
func TestEnsureSingleFlight(t *testing.T) {
	auth := &stubAuthenticator{ok: true, delay: 50 * time.Millisecond}
	c := NewCoordinator(auth, nil, quietLogger())

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.Ensure(context.Background(), "gmail")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, auth.loginCalls(), "expected a single shared login flow")
	for i, err := range errs {
		assert.NoError(t, err, "requester %d", i)
	}
}

// TestEnsureFlightCleared verifies the lock resets after a flow settles so a
// later independent failure can trigger a fresh attempt.
func TestEnsureFlightCleared(t *testing.T) {
	auth := &stubAuthenticator{ok: false}
	c := NewCoordinator(auth, nil, quietLogger())

	require.Error(t, c.Ensure(context.Background(), "gmail"))

	auth.mu.Lock()
	auth.ok = true
	auth.mu.Unlock()

	require.NoError(t, c.Ensure(context.Background(), "drive"))
	assert.Equal(t, 2, auth.loginCalls())
}
