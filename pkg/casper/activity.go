package casper

import (
	"context"

	"github.com/BrandonKowalski/casper/pkg/casper/session"
)

// UserActivity reacts to pointer activity. Without a stored credential the
// user is logged out. While the connection is down, or there is no session,
// it starts a reconnect attempt unless the backoff timer is still running.
//
// Calls beyond the configured activity rate are ignored.
func (a *Application) UserActivity(ctx context.Context) {
	if !a.activity.Allow() {
		return
	}

	credential := a.deps.Primary.Credential()
	if credential == "" || credential == "undefined" {
		a.logger.Info("No session credential, logging out")
		a.Logout(ctx)
		return
	}

	state := a.Status().State
	hasSession := a.Session() != nil
	if !a.backoff.Schedule(state, hasSession) {
		return
	}

	a.logger.Info("Re-establishing connection",
		"state", state.String(),
		"has_session", hasSession,
		"next_delay", a.backoff.Delay().String())
	a.metrics.ReconnectArmed()
	a.apply(ctx, session.Event{Kind: session.EventReconnecting})
}
