package casper

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPageNotRegistered is returned by Pages.Mount for an element nobody
// registered a factory for.
var ErrPageNotRegistered = errors.New("page not registered")

// PageFactory creates the element for a page. The element may implement
// QueryUpdater and Attacher.
type PageFactory func(req MountRequest) (any, error)

// Pages is an in-memory ScreenHost for applications that keep their page
// elements in Go. Factories are registered by element name, and elements
// are created the first time the navigation layer mounts them.
//
// Example:
//
//	pages := casper.NewPages().
//	    Register("toc-orders", newOrdersPage).
//	    Register("toc-customers", newCustomersPage).
//	    OnSelect(func(page string, element any) { render(element) })
type Pages struct {
	mu        sync.RWMutex
	factories map[string]PageFactory
	elements  map[string]any    // element name to element
	names     map[string]string // page name to element name
	selected  string
	onSelect  func(page string, element any)
}

// NewPages creates an empty page host.
func NewPages() *Pages {
	return &Pages{
		factories: make(map[string]PageFactory),
		elements:  make(map[string]any),
		names:     make(map[string]string),
	}
}

// Register adds the factory for an element name.
func (p *Pages) Register(element string, fn PageFactory) *Pages {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[element] = fn
	return p
}

// OnSelect sets the function called after every page selection, with the
// selected element or nil when the page has none (the not-found page).
func (p *Pages) OnSelect(fn func(page string, element any)) *Pages {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSelect = fn
	return p
}

func (p *Pages) Lookup(element string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	el, ok := p.elements[element]
	return el, ok
}

func (p *Pages) Mount(req MountRequest) error {
	p.mu.RLock()
	fn, ok := p.factories[req.Element]
	_, mounted := p.elements[req.Element]
	p.mu.RUnlock()

	if mounted {
		return nil
	}
	if !ok {
		return fmt.Errorf("pages: %s: %w", req.Element, ErrPageNotRegistered)
	}

	el, err := fn(req)
	if err != nil {
		return fmt.Errorf("pages: create %s: %w", req.Element, err)
	}

	p.mu.Lock()
	p.elements[req.Element] = el
	p.names[req.Name] = req.Element
	p.mu.Unlock()
	return nil
}

func (p *Pages) Select(page string) {
	p.mu.Lock()
	p.selected = page
	el := p.elements[p.names[page]]
	onSelect := p.onSelect
	p.mu.Unlock()

	if onSelect != nil {
		onSelect(page, el)
	}
}

func (p *Pages) Selected() any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.names[p.selected]
	if !ok {
		return nil
	}
	return p.elements[name]
}

// SelectedPage returns the selected page identifier.
func (p *Pages) SelectedPage() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

// Len returns the number of mounted elements.
func (p *Pages) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.elements)
}
