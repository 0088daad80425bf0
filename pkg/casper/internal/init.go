// Package internal contains the core infrastructure for the casper engine.
// This includes logging, configuration, localized status messages, the
// injectable clock and the readiness gate.
// Types and functions in this package are not part of the public API.
package internal

import _ "github.com/BrandonKowalski/certifiable" // Add CA certificates to the default trust store
