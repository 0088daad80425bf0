package router

import "sync"

// History is an in-memory stand-in for the browser history.
// It stores visited locations and a cursor so back and forward navigation
// can return to earlier entries without a browser.
type History struct {
	mu      sync.Mutex
	entries []string
	cursor  int
}

// NewHistory creates a new empty history.
func NewHistory() *History {
	return &History{
		entries: make([]string, 0),
		cursor:  -1,
	}
}

// Push records a new location after the current one.
// Any forward entries are discarded, as a browser does.
func (h *History) Push(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.cursor+1], url)
	h.cursor = len(h.entries) - 1
}

// Back moves the cursor one entry back and returns that location.
// Returns false if there is nothing to go back to.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor <= 0 {
		return "", false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Forward moves the cursor one entry forward and returns that location.
// Returns false if already at the newest entry.
func (h *History) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= len(h.entries)-1 {
		return "", false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Current returns the location under the cursor without moving it.
// Returns false if the history is empty.
func (h *History) Current() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < 0 {
		return "", false
	}
	return h.entries[h.cursor], true
}

// IsEmpty returns true if no location has been pushed.
func (h *History) IsEmpty() bool {
	return h.Len() == 0
}

// Len returns the number of entries, including forward entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Clear removes all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
	h.cursor = -1
}
