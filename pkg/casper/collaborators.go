package casper

import (
	"context"

	"github.com/BrandonKowalski/casper/pkg/casper/router"
	"github.com/BrandonKowalski/casper/pkg/casper/session"
)

// SessionClient is one session socket as seen by the engine.
type SessionClient interface {
	// ConnectAndSetSession performs the handshake and returns the session record.
	ConnectAndSetSession(ctx context.Context, url, credential string) (*session.Record, error)
	// Credential returns the stored session credential, empty if there is none.
	Credential() string
	CheckIfSessionChanged()
	ValidateSession()
	Disconnect()
	WipeCredentials()
	// Events delivers server signals. It may return nil if the client
	// emits none.
	Events() <-chan session.Event
}

// MenuFetcher downloads the menu document.
type MenuFetcher interface {
	FetchMenu(ctx context.Context, route, credential string) ([]router.MenuItem, error)
}

// SignOuter issues the best-effort sign-out request.
type SignOuter interface {
	SignOut(ctx context.Context, path, credential string) error
}

// ModuleLoader loads page code by path.
type ModuleLoader interface {
	Load(ctx context.Context, path string) error
}

// MountRequest describes a page element to create in the screen host.
type MountRequest struct {
	Element    string // Element name, see router.ElementName
	Name       string // Page identifier used for selection
	InstanceID string // Unique per mounted element
}

// ScreenHost holds the mounted page elements and the selected one.
type ScreenHost interface {
	// Lookup returns the mounted element with this name.
	Lookup(element string) (any, bool)
	Mount(req MountRequest) error
	Select(page string)
	// Selected returns the element of the selected page, nil if none.
	Selected() any
}

// QueryUpdater is implemented by pages that react to query-only changes.
// Returning true asks the caller to drop the query from the location.
type QueryUpdater interface {
	UpdateQuery(url, query string) bool
}

// Attacher is implemented by pages that want to know when they are shown
// again without being re-created.
type Attacher interface {
	Attached()
}

// History records navigations.
type History interface {
	Push(url string)
}

// Tooltip is the shared tooltip, hidden on every navigation.
type Tooltip interface {
	Hide()
}

// Redirector leaves the application.
type Redirector interface {
	// Redirect replaces the application with location.
	Redirect(location string)
	// Open shows location in a new tab or window.
	Open(location string)
}
