package session

import "github.com/BrandonKowalski/casper/pkg/casper/constants"

// EventKind identifies what happened.
type EventKind int

const (
	EventStart              EventKind = iota // Application start, initial connect begins
	EventConnected                           // Both sockets completed the handshake
	EventConnectFailed                       // Handshake failed or the session payload reported failure
	EventSetupComplete                       // Menu fetch and setup finished
	EventSetupFailed                         // Menu fetch or setup failed, Err is set
	EventNavigationStarted                   // A navigation began loading a page
	EventNavigationFinished                  // A navigation ended, whatever the outcome
	EventDisconnected                        // Socket signal: connection lost
	EventSignedIn                            // Socket signal: session (re)established
	EventSignedOut                           // Socket signal: session terminated
	EventShowOverlay                         // Socket signal: show a status overlay, Overlay is set
	EventDismissOverlay                      // Socket signal: hide the status overlay
	EventReconnecting                        // User activity armed a reconnect attempt
)

// Overlay is the payload of a show-overlay signal.
type Overlay struct {
	Icon    string `json:"icon,omitempty"`
	Spinner bool   `json:"spinner,omitempty"`
	Message string `json:"message,omitempty"`
}

// Event drives a state transition.
type Event struct {
	Kind     EventKind
	Err      error
	Overlay  Overlay
	Progress int
}

// Effect is a side effect the owner of the state machine must perform
// after applying a transition.
type Effect int

const (
	EffectLogout          Effect = iota + 1 // Run the logout flow
	EffectReleaseReady                      // Release everyone waiting for readiness
	EffectCheckSession                      // Ask the session collaborator whether the session changed
	EffectValidateSession                   // Ask the session collaborator to validate the session
	EffectResetBackoff                      // Reset the reconnection delay
)

func (e Effect) String() string {
	switch e {
	case EffectLogout:
		return "logout"
	case EffectReleaseReady:
		return "release-ready"
	case EffectCheckSession:
		return "check-session"
	case EffectValidateSession:
		return "validate-session"
	case EffectResetBackoff:
		return "reset-backoff"
	default:
		return "none"
	}
}

// Transition computes the status that follows ev and the effects to run.
// Any transition landing on StateReady carries EffectReleaseReady.
func Transition(current Status, ev Event) (Status, []Effect) {
	next := current
	var effects []Effect

	switch ev.Kind {
	case EventStart:
		progress := ev.Progress
		if progress <= 0 {
			progress = DefaultConnectTimeout
		}
		next = Status{State: StateConnecting, MessageID: MsgConnecting, Progress: progress}

	case EventConnected:
		next = Status{State: StateConnected, MessageID: MsgConnected}

	case EventConnectFailed:
		effects = append(effects, EffectLogout)

	case EventSetupComplete:
		next = Status{State: StateReady, MessageID: MsgLoaded}

	case EventSetupFailed:
		next = Status{State: StateError, MessageID: MsgError}
		if ev.Err != nil {
			next.Detail = ev.Err.Error()
		}

	case EventNavigationStarted:
		next = Status{State: StateInProgress, MessageID: MsgLoadingPage}

	case EventNavigationFinished:
		next.State = StateReady

	case EventDisconnected:
		next.State = StatePending

	case EventSignedIn:
		next = Status{State: StateReady, MessageID: MsgSessionAvailable}
		effects = append(effects, EffectResetBackoff)

	case EventSignedOut:
		next = Status{State: StateDisconnected, MessageID: MsgSessionEnded}
		effects = append(effects, EffectLogout)

	case EventShowOverlay:
		next = Status{State: overlayState(ev.Overlay), Text: ev.Overlay.Message, Progress: current.Progress}

	case EventDismissOverlay:
		next = Status{State: StateReady}

	case EventReconnecting:
		next = Status{State: StateConnecting, MessageID: MsgReconnecting, Progress: current.Progress}
		effects = append(effects, EffectCheckSession, EffectValidateSession)
	}

	if next.State == StateReady {
		effects = append(effects, EffectReleaseReady)
	}
	return next, effects
}

func overlayState(o Overlay) State {
	switch {
	case o.Icon == constants.OverlayIconError:
		return StateError
	case o.Icon == constants.OverlayIconCloud:
		return StatePending
	case o.Spinner:
		return StateConnecting
	default:
		return StateUnknown
	}
}
