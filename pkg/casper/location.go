package casper

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is where the application currently is. It is always replaced
// as a whole, never patched field by field.
type Location struct {
	URL      string // Path, query and fragment as navigated to
	Pathname string // Escaped path
	Search   string // Decoded query including the leading '?', empty if none
	Hash     string // Decoded fragment including the leading '#', empty if none
}

// ParseLocation decomposes a URL into a Location. Absolute URLs are reduced
// to their path, query and fragment.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", raw, err)
	}

	loc := Location{Pathname: u.EscapedPath()}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	loc.URL = loc.Pathname

	if u.RawQuery != "" {
		loc.URL += "?" + u.RawQuery
		loc.Search = "?" + unescape(u.RawQuery)
	}
	if u.Fragment != "" {
		loc.URL += "#" + u.EscapedFragment()
		loc.Hash = "#" + u.Fragment
	}
	return loc, nil
}

// Query returns the decoded query without its leading '?'.
func (l Location) Query() string {
	return strings.TrimPrefix(l.Search, "?")
}

func unescape(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

// buildLocationURL joins a path and an optional query, forcing a leading slash.
func buildLocationURL(path, query string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if query == "" {
		return path
	}
	return path + "?" + query
}
