// Package router turns a hierarchical menu document into a flat route table
// and resolves arbitrary locations against it.
//
// Menus register canonical routes only. A location that carries a query
// string or a sub-resource suffix falls back to the longest registered
// prefix that ends at a delimiter ('?', '/' or '&'), so a menu entry for
// "/orders" also serves "/orders/42/edit?x=1".
//
// # Basic Usage
//
//	var items []router.MenuItem
//	_ = json.Unmarshal(menuJSON, &items)
//
//	table := router.NewTable()
//	table.Rebuild(items)
//
//	if entry, ok := table.Resolve("/orders/42/edit?x=1"); ok {
//	    element := router.ElementName(entry.Props)
//	    module := router.ModulePath(entry.Props, "/src/", digest)
//	    // mount element, load module ...
//	}
//
// # Primary Items
//
// Items flagged as primary are the top navigation level. They never get a
// table entry of their own, otherwise a short primary link would shadow the
// deeper routes that share its prefix. Their children are still registered.
//
// # Naming Convention
//
// Page element and module names keep the legacy "toc-" prefix unless the
// menu supplies an explicit component source. The convention lives in
// ElementName and ModulePath so it can change without touching resolution.
package router
