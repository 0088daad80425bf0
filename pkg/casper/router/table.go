package router

import (
	"strings"
	"sync"
)

// Build flattens a menu forest into a route table keyed by link.
// Children are visited before their parent. Primary items add no entry of
// their own. A missing level degrades to a one-element level list.
func Build(items []MenuItem) map[string]RouteEntry {
	routes := make(map[string]RouteEntry)
	buildInto(routes, items)
	return routes
}

func buildInto(routes map[string]RouteEntry, items []MenuItem) {
	for _, item := range items {
		if len(item.Items) > 0 {
			buildInto(routes, item.Items)
		}

		// Primary links would shadow deeper routes sharing their prefix.
		if item.Primary {
			continue
		}

		routes[item.Link] = RouteEntry{
			Props:  item.Props,
			Levels: strings.Split(item.Level, ","),
		}
	}
}

// Table is the route table the navigation layer resolves against.
// It is read-only between rebuilds and safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	routes map[string]RouteEntry
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{routes: make(map[string]RouteEntry)}
}

// Rebuild replaces the whole table with the routes of a new menu document.
// Readers observe either the old table or the new one, never a mix.
func (t *Table) Rebuild(items []MenuItem) {
	routes := Build(items)

	t.mu.Lock()
	t.routes = routes
	t.mu.Unlock()
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}

// Lookup returns the entry registered for exactly this path.
func (t *Table) Lookup(path string) (RouteEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.routes[path]
	return entry, ok
}

// Resolve returns the best entry for path: the exact match if there is one,
// otherwise the longest prefix ending right before a '?', '/' or '&'.
// Returns false when nothing matches.
func (t *Table) Resolve(path string) (RouteEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if entry, ok := t.routes[path]; ok {
		return entry, true
	}

	for i := len(path) - 1; i >= 0; i-- {
		if !isDelimiter(path[i]) {
			continue
		}
		if entry, ok := t.routes[path[:i]]; ok {
			return entry, true
		}
	}

	return RouteEntry{}, false
}

func isDelimiter(c byte) bool {
	return c == '?' || c == '/' || c == '&'
}
