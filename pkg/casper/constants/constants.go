// Package constants defines shared constants and configuration values
// used throughout the casper engine.
package constants

import (
	"os"
	"time"
)

// Environment variables read when configuration is loaded.
const (
	LogLevelEnvVar = "CASPER_LOG_LEVEL" // Overrides the configured application log level
	LanguageEnvVar = "CASPER_LANGUAGE"  // Overrides the configured status message language
	DebugEnvVar    = "CASPER_DEBUG"     // Enables debug output from the engine's internal logger
)

// IsDebug returns true if engine debug logging was requested.
func IsDebug() bool {
	return os.Getenv(DebugEnvVar) != ""
}

// NotFoundPage is the page selected when a location resolves to nothing
// or its module fails to load.
const NotFoundPage = "notfound404"

// Default configuration values.
const (
	DefaultBasePath       = "/"
	DefaultLoginLocation  = "/login"
	DefaultSignOutPath    = "/login/sign-out"
	DefaultModulePrefix   = "/src/"
	DefaultLanguage       = "pt"
	DefaultActivityRate   = 20.0 // Pointer activity samples handled per second
	DefaultConnectTimeout = 25   // Progress hint shown while connecting, seconds
)

// Default reconnection delays.
const (
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 10 * time.Second
)
