package session

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
)

// AppState is a host-application lifecycle state. Transitions arrive from
// the embedding platform as an event stream.
type AppState int

const (
	// StateActive: app is in the foreground and interactive.
	StateActive AppState = iota
	// StateInactive: app is transitioning (e.g. system dialog on top).
	StateInactive
	// StateBackground: app is suspended; timers cannot be trusted to fire.
	StateBackground
)

func (s AppState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateBackground:
		return "background"
	default:
		return "unknown"
	}
}

// Observer consumes app lifecycle transitions and forwards them to the
// session manager: suspension disarms the refresh timer, resumption
// reconciles in-memory state against the store.
type Observer struct {
	manager *Manager
	logger  logging.Logger
}

func NewObserver(m *Manager, logger logging.Logger) *Observer {
	return &Observer{manager: m, logger: logger}
}

// Run processes events until ctx is cancelled or the channel closes.
func (o *Observer) Run(ctx context.Context, events <-chan AppState) {
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-events:
			if !ok {
				return
			}
			o.logger.Debug(ctx, "app state changed", "state", state.String())
			o.manager.HandleAppState(ctx, state)
		}
	}
}
