package casper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/casper/pkg/casper/session"
)

func TestActivityWhileReadyDoesNothing(t *testing.T) {
	f := newStartedFixture(t, testConfig())

	f.app.UserActivity(context.Background())

	checks, validates, _, _ := f.primary.counts()
	assert.Zero(t, checks)
	assert.Zero(t, validates)
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, session.StateReady, f.app.Status().State)
}

func TestActivityReconnectsWithBackoff(t *testing.T) {
	f := newStartedFixture(t, testConfig())
	ctx := context.Background()

	f.app.HandleEvent(ctx, session.Event{Kind: session.EventDisconnected})
	require.Equal(t, session.StatePending, f.app.Status().State)

	f.app.UserActivity(ctx)

	status := f.app.Status()
	assert.Equal(t, session.StateConnecting, status.State)
	assert.Equal(t, "A restabelecer ligação ao servidor", f.app.StatusText())
	checks, validates, _, _ := f.primary.counts()
	assert.Equal(t, 1, checks)
	assert.Equal(t, 1, validates)
	assert.Equal(t, time.Second, f.app.ReconnectDelay())

	// Throttled while the timer runs.
	f.app.HandleEvent(ctx, session.Event{Kind: session.EventDisconnected})
	f.app.UserActivity(ctx)
	checks, _, _, _ = f.primary.counts()
	assert.Equal(t, 1, checks)

	f.clock.Advance(time.Second)
	assert.Equal(t, 2*time.Second, f.app.ReconnectDelay())

	f.app.UserActivity(ctx)
	checks, _, _, _ = f.primary.counts()
	assert.Equal(t, 2, checks)

	f.clock.Advance(2 * time.Second)
	assert.Equal(t, 4*time.Second, f.app.ReconnectDelay())
}

func TestActivityWithoutSessionReconnects(t *testing.T) {
	f := newStartedFixture(t, testConfig())
	f.app.mu.Lock()
	f.app.record = nil
	f.app.mu.Unlock()

	f.app.UserActivity(context.Background())

	checks, _, _, _ := f.primary.counts()
	assert.Equal(t, 1, checks)
	assert.Equal(t, 1, f.clock.Pending())
}

func TestSignedInResetsBackoff(t *testing.T) {
	f := newStartedFixture(t, testConfig())
	ctx := context.Background()

	for range 2 {
		f.app.HandleEvent(ctx, session.Event{Kind: session.EventDisconnected})
		f.app.UserActivity(ctx)
		f.clock.Advance(10 * time.Second)
	}
	require.Equal(t, 4*time.Second, f.app.ReconnectDelay())

	f.app.HandleEvent(ctx, session.Event{Kind: session.EventSignedIn})

	assert.Equal(t, time.Second, f.app.ReconnectDelay())
	assert.Equal(t, "Sessão disponível", f.app.StatusText())
}

func TestPreserveBackoffAcrossSignIn(t *testing.T) {
	cfg := testConfig()
	cfg.PreserveBackoff = true
	f := newStartedFixture(t, cfg)
	ctx := context.Background()

	f.app.HandleEvent(ctx, session.Event{Kind: session.EventDisconnected})
	f.app.UserActivity(ctx)
	f.clock.Advance(time.Second)

	f.app.HandleEvent(ctx, session.Event{Kind: session.EventSignedIn})
	assert.Equal(t, 2*time.Second, f.app.ReconnectDelay())
}

func TestActivityWithoutCredentialLogsOut(t *testing.T) {
	for _, credential := range []string{"", "undefined"} {
		t.Run("credential="+credential, func(t *testing.T) {
			f := newStartedFixture(t, testConfig())
			f.primary.credential = credential

			f.app.UserActivity(context.Background())

			redirects, _ := f.redirect.seen()
			assert.Equal(t, []string{"/login"}, redirects)
			assert.Equal(t, 0, f.clock.Pending())
		})
	}
}

func TestActivityIsRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.ActivityRate = 0.01
	f := newStartedFixture(t, cfg)
	f.primary.credential = ""

	f.app.UserActivity(context.Background())
	f.app.UserActivity(context.Background())

	redirects, _ := f.redirect.seen()
	assert.Len(t, redirects, 1)
}

func TestLogoutSwallowsSignOutFailure(t *testing.T) {
	f := newStartedFixture(t, testConfig())
	f.signOut.err = errors.New("connection reset")

	f.app.Logout(context.Background())

	redirects, _ := f.redirect.seen()
	assert.Equal(t, []string{"/login"}, redirects)
	_, _, disconnects, wipes := f.primary.counts()
	assert.Equal(t, 1, disconnects)
	assert.Equal(t, 1, wipes)
	assert.Nil(t, f.app.Session())
	assert.Empty(t, f.primary.Credential())
}

func TestLogoutSkipsSignOutWithoutCredential(t *testing.T) {
	cfg := testConfig()
	cfg.LoginLocation = "/entrar"
	f := newStartedFixture(t, cfg)
	f.primary.credential = ""

	f.app.Logout(context.Background())

	assert.Zero(t, f.signOut.count())
	redirects, _ := f.redirect.seen()
	assert.Equal(t, []string{"/entrar"}, redirects)
}

func TestLogoutStopsPendingBackoff(t *testing.T) {
	f := newStartedFixture(t, testConfig())
	ctx := context.Background()

	f.app.HandleEvent(ctx, session.Event{Kind: session.EventDisconnected})
	f.app.UserActivity(ctx)
	require.Equal(t, 1, f.clock.Pending())

	f.app.Logout(ctx)
	assert.Equal(t, 0, f.clock.Pending())
}

func TestReconfigureChangesBackoff(t *testing.T) {
	f := newStartedFixture(t, testConfig())
	ctx := context.Background()

	cfg := testConfig()
	cfg.InitialBackoff = 3 * time.Second
	cfg.MaxBackoff = 5 * time.Second
	cfg.PreserveBackoff = true
	f.app.Reconfigure(cfg)
	assert.Equal(t, 3*time.Second, f.app.ReconnectDelay())

	f.app.HandleEvent(ctx, session.Event{Kind: session.EventDisconnected})
	f.app.UserActivity(ctx)
	f.clock.Advance(3 * time.Second)
	assert.Equal(t, 5*time.Second, f.app.ReconnectDelay())

	f.app.HandleEvent(ctx, session.Event{Kind: session.EventSignedIn})
	assert.Equal(t, 5*time.Second, f.app.ReconnectDelay(), "preserved across sign-in")

	cfg.PreserveBackoff = false
	f.app.Reconfigure(cfg)
	f.app.HandleEvent(ctx, session.Event{Kind: session.EventSignedIn})
	assert.Equal(t, 3*time.Second, f.app.ReconnectDelay())
}

func TestReconfigureChangesActivityRate(t *testing.T) {
	f := newStartedFixture(t, testConfig())
	ctx := context.Background()

	cfg := testConfig()
	cfg.ActivityRate = 0.001
	f.app.Reconfigure(cfg)

	f.app.HandleEvent(ctx, session.Event{Kind: session.EventDisconnected})
	f.app.UserActivity(ctx)
	f.clock.Advance(time.Second)
	f.app.HandleEvent(ctx, session.Event{Kind: session.EventDisconnected})
	f.app.UserActivity(ctx)

	checks, _, _, _ := f.primary.counts()
	assert.Equal(t, 1, checks, "second activity is over the rate")
}
