package casper

import (
	"context"

	"github.com/BrandonKowalski/casper/pkg/casper/observability"
	"github.com/BrandonKowalski/casper/pkg/casper/remote"
	"github.com/BrandonKowalski/casper/pkg/casper/router"
	"github.com/BrandonKowalski/casper/pkg/casper/session"
	"github.com/BrandonKowalski/casper/pkg/casper/socket"
)

// Start runs the initial sequence: connect both session sockets, fetch the
// menu, build the route table, run the setup hook and become ready.
//
// A failed handshake or a session record reporting failure runs the logout
// flow and returns a *ConnectionError. A failure afterwards moves to the
// error state and returns a *SetupError; it is not retried.
func (a *Application) Start(ctx context.Context) (err error) {
	ctx, span := observability.StartSpan(ctx, a.tracer, "casper.start")
	defer func() { observability.EndSpan(span, err) }()

	record, err := a.connect(ctx)
	if err != nil {
		a.logger.Error("Failed to establish session", "error", err)
		a.apply(ctx, session.Event{Kind: session.EventConnectFailed})
		return err
	}

	span.SetAttributes(observability.AttrRoleMask.Int64(record.RoleMask))

	a.mu.Lock()
	a.record = record
	a.mu.Unlock()
	a.apply(ctx, session.Event{Kind: session.EventConnected})

	if err := a.setup(ctx, record); err != nil {
		a.logger.Error("Application setup failed", "error", err)
		a.apply(ctx, session.Event{Kind: session.EventSetupFailed, Err: err})
		return err
	}

	a.apply(ctx, session.Event{Kind: session.EventSetupComplete})
	return nil
}

func (a *Application) connect(ctx context.Context) (*session.Record, error) {
	endpoints, err := socket.URLs(a.cfg.IssuerURL)
	if err != nil {
		return nil, &ConnectionError{Op: "socket_urls", Err: err}
	}

	primary := a.deps.Primary
	record, err := primary.ConnectAndSetSession(ctx, endpoints.Primary, primary.Credential())
	if err != nil {
		return nil, &ConnectionError{Op: "connect_primary", Err: err}
	}
	if record == nil || !record.Success {
		return nil, &ConnectionError{Op: "connect_primary", Err: ErrInvalidSession}
	}

	if secondary := a.deps.Secondary; secondary != nil {
		if _, err := secondary.ConnectAndSetSession(ctx, endpoints.Secondary, primary.Credential()); err != nil {
			return nil, &ConnectionError{Op: "connect_secondary", Err: err}
		}
	}

	a.logger.Info("Session established", "role_mask", record.RoleMask, "socket", endpoints.Base)
	return record, nil
}

func (a *Application) setup(ctx context.Context, record *session.Record) error {
	var items []router.MenuItem
	if record.RoleMask > 0 {
		route := a.cfg.MenuPath
		if route == "" {
			route = remote.MenuRoute(a.cfg.Language, a.cfg.MenuDigest, record.RoleMask)
		}

		fetched, err := a.deps.Menus.FetchMenu(ctx, route, a.deps.Primary.Credential())
		if err != nil {
			return &SetupError{Op: "fetch_menu", Err: err}
		}
		items = fetched
	}

	a.table.Rebuild(items)
	a.logger.Debug("Route table built", "routes", a.table.Len())

	if a.deps.Setup != nil {
		if err := a.deps.Setup(ctx); err != nil {
			return &SetupError{Op: "setup", Err: err}
		}
	}
	return nil
}

// ReloadMenu fetches the menu again and rebuilds the route table in one step.
// The current page stays in place.
func (a *Application) ReloadMenu(ctx context.Context) error {
	record := a.Session()
	if record == nil {
		return &SetupError{Op: "reload_menu", Err: ErrInvalidSession}
	}
	return a.setup(ctx, record)
}
