package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/planrun/planrun/internal/events"
	"github.com/planrun/planrun/internal/registry"
)

// authPatterns classify a failure as authentication-related. Matching is
// case-insensitive substring search over the error message.
var authPatterns = []string{
	"not authenticated",
	"authentication required",
	"run login",
	"login required",
	"unauthorized",
	"invalid credentials",
	"token expired",
	"access denied",
}

// IsAuthError reports whether an error message matches any of the
// authentication failure patterns.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range authPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// authFlightKey collapses every concurrent re-authentication request into
// one flow; the flow covers all service groups at once.
const authFlightKey = "login"

// Coordinator serializes credential acquisition. However many tasks fail
// with authentication errors at the same time, exactly one login flow runs;
// the rest await its outcome. The flight is forgotten once it settles, so a
// later independent failure starts a fresh flow.
type Coordinator struct {
	auth registry.Authenticator
	bus  *events.Bus
	log  *log.Logger
	sf   singleflight.Group
}

// NewCoordinator creates a coordinator around an authenticator. bus may be
// nil to disable event publishing.
func NewCoordinator(auth registry.Authenticator, bus *events.Bus, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{auth: auth, bus: bus, log: logger}
}

// Ensure runs (or joins) the single-flight login flow. trigger names the
// service whose failure requested it, for logging and events only; the flow
// itself authenticates every service group. A nil error means a valid
// credential was acquired.
func (c *Coordinator) Ensure(ctx context.Context, trigger string) error {
	if c.auth == nil {
		return errors.New("no authenticator configured")
	}

	_, err, shared := c.sf.Do(authFlightKey, func() (any, error) {
		c.log.Info("starting authentication flow", "trigger", trigger)
		c.publish(events.AuthStartedEvent{Trigger: trigger, Timestamp: time.Now()})

		ok, err := c.auth.Login(ctx)
		c.publish(events.AuthFinishedEvent{Trigger: trigger, Success: err == nil && ok, Timestamp: time.Now()})
		if err != nil {
			return nil, fmt.Errorf("authentication flow failed: %w", err)
		}
		if !ok {
			return nil, errors.New("authentication flow did not produce a valid credential")
		}
		return nil, nil
	})
	if shared {
		c.log.Debug("joined in-flight authentication", "trigger", trigger)
	}
	return err
}

func (c *Coordinator) publish(event events.Event) {
	if c.bus != nil {
		c.bus.Publish(events.TopicAuth, event)
	}
}
