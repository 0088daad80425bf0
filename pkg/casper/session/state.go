// Package session holds the connection/session state machine and the
// reconnection backoff controller.
//
// The state machine is a pure function: Transition takes the current Status
// and an Event and returns the next Status plus the side effects the caller
// must run. Nothing in this package renders, dials or redirects.
package session

import "github.com/BrandonKowalski/casper/pkg/casper/constants"

// State is the connection/session state shown to the user.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateInProgress
	StateReady
	StatePending
	StateDisconnected
	StateError
	StateUnknown
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateInProgress:
		return "in-progress"
	case StateReady:
		return "ready"
	case StatePending:
		return "pending"
	case StateDisconnected:
		return "disconnected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// NeedsReconnect reports whether user activity in this state should try to
// re-establish the connection.
func (s State) NeedsReconnect() bool {
	return s == StateDisconnected || s == StatePending
}

// Status message IDs, localized by the application.
const (
	MsgConnecting       = "StatusConnecting"
	MsgConnected        = "StatusConnected"
	MsgLoaded           = "StatusLoaded"
	MsgLoadingPage      = "StatusLoadingPage"
	MsgSessionAvailable = "StatusSessionAvailable"
	MsgSessionEnded     = "StatusSessionEnded"
	MsgReconnecting     = "StatusReconnecting"
	MsgError            = "StatusError"
)

// DefaultConnectTimeout is the progress hint, in seconds, attached to the
// initial connecting state.
const DefaultConnectTimeout = constants.DefaultConnectTimeout

// Status is the observable state plus what to tell the user about it.
type Status struct {
	State     State
	MessageID string // Localizable message, empty when Text is used
	Detail    string // Interpolated into the message (error text)
	Text      string // Raw message supplied by the server
	Progress  int    // Timeout hint for connecting, in seconds
}

// Record is the session payload returned by the server after sign-in.
type Record struct {
	Success    bool           `json:"success"`
	RoleMask   int64          `json:"role_mask"`
	ModuleMask int64          `json:"module_mask,omitempty"`
	App        map[string]any `json:"app,omitempty"`
}
