package constants

// Overlay icon names sent by the server with a show-overlay signal.
const (
	OverlayIconError = "error" // Unrecoverable problem, shown with the error state
	OverlayIconCloud = "cloud" // Server unreachable, waiting to reconnect
)
