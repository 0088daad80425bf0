package casper

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/casper/pkg/casper/internal"
	"github.com/BrandonKowalski/casper/pkg/casper/router"
	"github.com/BrandonKowalski/casper/pkg/casper/session"
)

type fakeClient struct {
	mu          sync.Mutex
	credential  string
	record      *session.Record
	err         error
	urls        []string
	credentials []string
	checks      int
	validates   int
	disconnects int
	wipes       int
	events      chan session.Event
}

func (c *fakeClient) ConnectAndSetSession(_ context.Context, url, credential string) (*session.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, url)
	c.credentials = append(c.credentials, credential)
	return c.record, c.err
}

func (c *fakeClient) Credential() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.credential
}

func (c *fakeClient) CheckIfSessionChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks++
}

func (c *fakeClient) ValidateSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.validates++
}

func (c *fakeClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
}

func (c *fakeClient) WipeCredentials() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wipes++
	c.credential = ""
}

func (c *fakeClient) Events() <-chan session.Event {
	return c.events
}

func (c *fakeClient) counts() (checks, validates, disconnects, wipes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checks, c.validates, c.disconnects, c.wipes
}

type fakeMenus struct {
	mu     sync.Mutex
	items  []router.MenuItem
	err    error
	routes []string
}

func (m *fakeMenus) FetchMenu(_ context.Context, route, _ string) ([]router.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route)
	return m.items, m.err
}

type fakeSignOut struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *fakeSignOut) SignOut(_ context.Context, path, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, path+" "+credential)
	return s.err
}

func (s *fakeSignOut) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fakeLoader struct {
	mu      sync.Mutex
	loads   []string
	fail    map[string]error
	block   map[string]chan struct{}
	started chan string
}

func (l *fakeLoader) Load(ctx context.Context, path string) error {
	l.mu.Lock()
	l.loads = append(l.loads, path)
	err := l.fail[path]
	block := l.block[path]
	started := l.started
	l.mu.Unlock()

	if started != nil {
		started <- path
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (l *fakeLoader) loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loads...)
}

type fakePage struct {
	mu       sync.Mutex
	queries  []string
	urls     []string
	clear    bool
	attached int
}

func (p *fakePage) UpdateQuery(url, query string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, url)
	p.queries = append(p.queries, query)
	return p.clear
}

func (p *fakePage) Attached() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attached++
}

func (p *fakePage) seen() ([]string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.queries...), p.attached
}

type fakeHost struct {
	mu         sync.Mutex
	elements   map[string]*fakePage
	names      map[string]string // page name to element name
	mounts     []MountRequest
	selections []string
	selected   string
	mountErr   error
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		elements: make(map[string]*fakePage),
		names:    make(map[string]string),
	}
}

func (h *fakeHost) Lookup(element string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	page, ok := h.elements[element]
	if !ok {
		return nil, false
	}
	return page, true
}

func (h *fakeHost) Mount(req MountRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mountErr != nil {
		return h.mountErr
	}
	h.mounts = append(h.mounts, req)
	h.elements[req.Element] = &fakePage{}
	h.names[req.Name] = req.Element
	return nil
}

func (h *fakeHost) Select(page string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selected = page
	h.selections = append(h.selections, page)
}

func (h *fakeHost) Selected() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	page, ok := h.elements[h.names[h.selected]]
	if !ok {
		return nil
	}
	return page
}

func (h *fakeHost) page(element string) *fakePage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.elements[element]
}

func (h *fakeHost) state() (selected string, mounts int, selections []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selected, len(h.mounts), append([]string(nil), h.selections...)
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []string
}

func (h *fakeHistory) Push(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, url)
}

func (h *fakeHistory) pushed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

type fakeTooltip struct {
	mu    sync.Mutex
	hides int
}

func (t *fakeTooltip) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hides++
}

type fakeRedirect struct {
	mu        sync.Mutex
	redirects []string
	opened    []string
}

func (r *fakeRedirect) Redirect(location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, location)
}

func (r *fakeRedirect) Open(location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, location)
}

func (r *fakeRedirect) seen() (redirects, opened []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.redirects...), append([]string(nil), r.opened...)
}

type fixture struct {
	app       *Application
	primary   *fakeClient
	secondary *fakeClient
	menus     *fakeMenus
	signOut   *fakeSignOut
	loader    *fakeLoader
	host      *fakeHost
	history   *fakeHistory
	tooltip   *fakeTooltip
	redirect  *fakeRedirect
	clock     *internal.FakeClock
}

func testMenu() []router.MenuItem {
	return []router.MenuItem{
		{
			Link:    "/sales",
			Primary: true,
			Level:   "1",
			Props:   router.ComponentProps{Component: "sales"},
			Items: []router.MenuItem{
				{Link: "/orders", Level: "1,2", Props: router.ComponentProps{Component: "orders"}},
				{Link: "/customers", Level: "1,2", Props: router.ComponentProps{Component: "customers"}},
			},
		},
		{Link: "/reports", Level: "1", Props: router.ComponentProps{Component: "report-viewer", ComponentSource: "/lib/report-viewer.js"}},
	}
}

func testConfig() Config {
	return Config{
		IssuerURL:    "https://app.example.com",
		ActivityRate: -1,
	}
}

func newFixture(t *testing.T, cfg Config, opts ...func(*Dependencies)) *fixture {
	t.Helper()

	f := &fixture{
		primary: &fakeClient{
			credential: "token-1",
			record:     &session.Record{Success: true, RoleMask: 3},
		},
		secondary: &fakeClient{record: &session.Record{Success: true}},
		menus:     &fakeMenus{items: testMenu()},
		signOut:   &fakeSignOut{},
		loader:    &fakeLoader{},
		host:      newFakeHost(),
		history:   &fakeHistory{},
		tooltip:   &fakeTooltip{},
		redirect:  &fakeRedirect{},
		clock:     internal.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	deps := Dependencies{
		Primary:   f.primary,
		Secondary: f.secondary,
		Menus:     f.menus,
		SignOut:   f.signOut,
		Loader:    f.loader,
		Host:      f.host,
		History:   f.history,
		Tooltip:   f.tooltip,
		Redirect:  f.redirect,
		Clock:     f.clock,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	app, err := New(cfg, deps)
	require.NoError(t, err)
	f.app = app
	return f
}

func newStartedFixture(t *testing.T, cfg Config, opts ...func(*Dependencies)) *fixture {
	t.Helper()
	f := newFixture(t, cfg, opts...)
	require.NoError(t, f.app.Start(context.Background()))
	return f
}
