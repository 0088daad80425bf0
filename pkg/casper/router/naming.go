package router

// LegacyPrefix is prepended to page element and module names that come
// from the naming convention rather than an explicit component source.
const LegacyPrefix = "toc-"

// ElementName returns the element name a page is mounted under.
func ElementName(props ComponentProps) string {
	if props.ComponentSource != "" {
		return props.Component
	}
	return LegacyPrefix + props.Component
}

// ModulePath returns the path the page module is loaded from.
// An explicit component source wins. Otherwise the path is
// prefix + "<digest>." + "toc-" + component + ".js", with the digest part
// omitted when digest is empty.
func ModulePath(props ComponentProps, prefix, digest string) string {
	if props.ComponentSource != "" {
		return props.ComponentSource
	}

	path := prefix
	if digest != "" {
		path += digest + "."
	}
	return path + LegacyPrefix + props.Component + ".js"
}
