package router

import "encoding/json"

// MenuItem is a single node of the navigation menu document served by the backend.
type MenuItem struct {
	Items   []MenuItem     `json:"items,omitempty"`   // Child items, traversed depth-first
	Link    string         `json:"link"`              // Route registered for this item
	Primary bool           `json:"primary,omitempty"` // Top navigation level, never registered itself
	Level   string         `json:"level"`             // Comma separated level labels
	Props   ComponentProps `json:"props"`             // Page descriptor
}

// ComponentProps identifies the page component mounted for a route.
type ComponentProps struct {
	Component       string         // Page name, also the active page identifier
	ComponentSource string         // Explicit module path, bypasses the naming convention
	Metadata        map[string]any // Any other keys present in the menu document
}

type componentPropsWire struct {
	Component       string `json:"component"`
	ComponentSource string `json:"component_source,omitempty"`
}

func (p *ComponentProps) UnmarshalJSON(data []byte) error {
	var wire componentPropsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "component")
	delete(all, "component_source")

	p.Component = wire.Component
	p.ComponentSource = wire.ComponentSource
	p.Metadata = nil
	if len(all) > 0 {
		p.Metadata = all
	}
	return nil
}

func (p ComponentProps) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Metadata)+2)
	for k, v := range p.Metadata {
		out[k] = v
	}
	out["component"] = p.Component
	if p.ComponentSource != "" {
		out["component_source"] = p.ComponentSource
	}
	return json.Marshal(out)
}

// RouteEntry is the page descriptor stored in the route table.
type RouteEntry struct {
	Props  ComponentProps
	Levels []string
}
