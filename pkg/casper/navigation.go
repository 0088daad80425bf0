package casper

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/BrandonKowalski/casper/pkg/casper/constants"
	"github.com/BrandonKowalski/casper/pkg/casper/observability"
	"github.com/BrandonKowalski/casper/pkg/casper/router"
	"github.com/BrandonKowalski/casper/pkg/casper/session"
)

// OnLocationChanged shows the page for a new location.
//
// The location is recorded and pushed to the history (except for the first
// location and back/forward changes), then the call waits for the
// application to be ready. Navigations run one at a time; a navigation that
// finishes after a newer one started reports OutcomeSuperseded and leaves
// the active page alone.
func (a *Application) OnLocationChanged(ctx context.Context, rawURL string) (Outcome, error) {
	return a.locationChanged(ctx, rawURL, true)
}

func (a *Application) locationChanged(ctx context.Context, rawURL string, push bool) (Outcome, error) {
	loc, err := ParseLocation(rawURL)
	if err != nil {
		return OutcomeUnchanged, err
	}

	a.mu.Lock()
	a.location = loc
	forwarded := a.forwarded == loc.URL
	a.forwarded = ""
	a.mu.Unlock()

	seq := a.navSeq.Inc()

	first := a.firstLocation.Swap(false)
	if first || !push {
		a.logger.Debug("Skipping history entry", "url", loc.URL)
	} else {
		a.deps.History.Push(loc.URL)
	}

	if a.deps.Tooltip != nil {
		a.deps.Tooltip.Hide()
	}

	if err := a.ready.Wait(ctx); err != nil {
		return OutcomeUnchanged, err
	}

	a.navMu.Lock()
	defer a.navMu.Unlock()

	if seq != a.navSeq.Load() {
		a.metrics.ObserveNavigation(OutcomeSuperseded.String(), 0)
		return OutcomeSuperseded, nil
	}

	a.apply(ctx, session.Event{Kind: session.EventNavigationStarted})
	defer a.apply(ctx, session.Event{Kind: session.EventNavigationFinished})

	started := a.deps.Clock.Now()
	ctx, span := observability.StartSpan(ctx, a.tracer, "casper.navigation", observability.AttrURL.String(loc.URL))

	outcome, err := a.navigate(ctx, seq, loc, forwarded)

	span.SetAttributes(
		observability.AttrOutcome.String(outcome.String()),
		observability.AttrPage.String(a.ActivePage()),
	)
	observability.EndSpan(span, err)
	a.metrics.ObserveNavigation(outcome.String(), a.deps.Clock.Now().Sub(started))
	return outcome, err
}

func (a *Application) navigate(ctx context.Context, seq uint64, loc Location, forwarded bool) (Outcome, error) {
	current := a.ActivePage()

	var entry router.RouteEntry
	route, ok := a.routePath(loc)
	if ok {
		entry, ok = a.table.Resolve(route)
	}
	if !ok || entry.Props.Component == "" {
		if current == "" {
			a.showNotFound(nil)
			return OutcomeNotFound, nil
		}
		return OutcomeUnchanged, nil
	}

	page := entry.Props.Component
	if err := a.mount(entry, page, current); err != nil {
		loadErr := &RouteLoadError{Page: page, Path: router.ElementName(entry.Props), Err: err}
		a.showNotFound(loadErr)
		return OutcomeNotFound, loadErr
	}

	if page == current {
		a.forwardQuery(loc, forwarded)
		return OutcomeReused, nil
	}

	path := router.ModulePath(entry.Props, a.cfg.ModulePrefix, a.cfg.Digest)
	if err := a.load(ctx, path); err != nil {
		loadErr := &RouteLoadError{Page: page, Path: path, Err: err}
		if seq != a.navSeq.Load() {
			a.logger.Warn("Stale page load failed", "page", page, "error", err)
			return OutcomeSuperseded, loadErr
		}
		a.showNotFound(loadErr)
		return OutcomeNotFound, loadErr
	}

	if seq != a.navSeq.Load() {
		a.logger.Debug("Navigation superseded", "page", page)
		return OutcomeSuperseded, nil
	}

	a.selectPage(page)
	return OutcomeLoaded, nil
}

// routePath is the location stripped of the base path and the fragment,
// the way the route table keys it. Returns false for locations outside the
// base path.
func (a *Application) routePath(loc Location) (string, bool) {
	path := loc.URL
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	if base := strings.TrimSuffix(a.cfg.BasePath, "/"); base != "" {
		rest, ok := strings.CutPrefix(path, base)
		if !ok || (rest != "" && rest[0] != '/' && rest[0] != '?') {
			return "", false
		}
		path = rest
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, true
}

// mount creates the page element once. An element that exists already is
// reused; when it is the active page it is told it was attached again.
func (a *Application) mount(entry router.RouteEntry, page, current string) error {
	element := router.ElementName(entry.Props)
	host := a.deps.Host

	a.mu.Lock()
	mounted := a.mounted[element]
	a.mu.Unlock()

	existing, found := host.Lookup(element)
	if mounted || found {
		if page == current {
			if attacher, ok := existing.(Attacher); ok {
				attacher.Attached()
			}
		}
		a.markMounted(element)
		return nil
	}

	req := MountRequest{
		Element:    element,
		Name:       page,
		InstanceID: uuid.NewString(),
	}
	if err := host.Mount(req); err != nil {
		return err
	}

	a.logger.Debug("Mounted page element", "element", element, "instance", req.InstanceID)
	a.markMounted(element)
	return nil
}

func (a *Application) markMounted(element string) {
	a.mu.Lock()
	a.mounted[element] = true
	a.mu.Unlock()
}

func (a *Application) load(ctx context.Context, path string) error {
	a.mu.Lock()
	done := a.loaded[path]
	a.mu.Unlock()
	if done {
		return nil
	}

	ctx, span := observability.StartSpan(ctx, a.tracer, "casper.load_module", observability.AttrModule.String(path))
	err := a.deps.Loader.Load(ctx, path)
	observability.EndSpan(span, err)
	a.metrics.ObserveModuleLoad(err)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.loaded[path] = true
	a.mu.Unlock()
	return nil
}

// forwardQuery hands a query-only change to the active page. When the page
// asks for it, the query is dropped from the location.
func (a *Application) forwardQuery(loc Location, forwarded bool) {
	if forwarded {
		return
	}

	updater, ok := a.deps.Host.Selected().(QueryUpdater)
	if !ok {
		return
	}

	if updater.UpdateQuery(loc.URL, loc.Query()) {
		a.clearQuery(loc)
	}
}

func (a *Application) clearQuery(loc Location) {
	cleared := loc
	cleared.Search = ""
	cleared.URL = loc.Pathname + stripQuery(loc.URL[len(loc.Pathname):])

	a.mu.Lock()
	if a.location == loc {
		a.location = cleared
	}
	a.mu.Unlock()
}

func stripQuery(rest string) string {
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		return rest[i:]
	}
	return ""
}

func (a *Application) selectPage(page string) {
	a.mu.Lock()
	a.page = page
	a.mu.Unlock()
	a.deps.Host.Select(page)
}

// showNotFound selects the not-found page. err is logged when set.
func (a *Application) showNotFound(err error) {
	if err != nil {
		a.logger.Error("Showing not found page", "error", err)
	} else {
		a.logger.Debug("No route for location", "location", a.Location().URL)
	}
	a.selectPage(constants.NotFoundPage)
}

// Navigate changes the route from inside the application. When only the
// query changes, the active page sees the new query first and may ask to
// drop it.
func (a *Application) Navigate(ctx context.Context, route string) (Outcome, error) {
	path, query, _ := strings.Cut(route, "?")

	var forwarded bool
	if a.Location().Pathname == path {
		if updater, ok := a.deps.Host.Selected().(QueryUpdater); ok {
			if updater.UpdateQuery(path, query) {
				query = ""
			}
			forwarded = true
		}
	}

	target := buildLocationURL(path, query)
	if forwarded {
		a.mu.Lock()
		a.forwarded = target
		a.mu.Unlock()
	}
	return a.OnLocationChanged(ctx, target)
}

// Popstate handles a back/forward change. The location is already in the
// history so no entry is pushed.
func (a *Application) Popstate(ctx context.Context, rawURL string) (Outcome, error) {
	return a.locationChanged(ctx, rawURL, false)
}

// FollowLink handles a click on an in-application link. href is relative to
// the base path. New-tab links leave the application through the Redirector.
func (a *Application) FollowLink(ctx context.Context, href string, newTab bool) error {
	link := href
	if base := a.cfg.BasePath; base != "/" {
		link = strings.TrimSuffix(base, "/") + href
	}

	if newTab {
		a.deps.Redirect.Open(link)
		return nil
	}

	_, err := a.Navigate(ctx, link)
	return err
}
