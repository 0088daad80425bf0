package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/BrandonKowalski/casper/pkg/casper/internal"
	"github.com/BrandonKowalski/casper/pkg/casper/session"
)

const (
	eventPrefix  = "casper-"
	eventsBuffer = 16
	tokenHeader  = "x-casper-access-token"
)

// Signal names as pushed by the server, without the "casper-" prefix.
const (
	SignalDisconnected   = "disconnected"
	SignalSignedIn       = "signed-in"
	SignalSignedOut      = "signed-out"
	SignalShowOverlay    = "show-overlay"
	SignalDismissOverlay = "dismiss-overlay"
)

type frame struct {
	Event  string          `json:"event"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// DecodeEvent maps a server signal to a session event. The "casper-" prefix
// is optional. Returns false for signals the state machine does not handle.
func DecodeEvent(name string, detail []byte) (session.Event, bool) {
	switch strings.TrimPrefix(name, eventPrefix) {
	case SignalDisconnected:
		return session.Event{Kind: session.EventDisconnected}, true
	case SignalSignedIn:
		return session.Event{Kind: session.EventSignedIn}, true
	case SignalSignedOut:
		return session.Event{Kind: session.EventSignedOut}, true
	case SignalDismissOverlay:
		return session.Event{Kind: session.EventDismissOverlay}, true
	case SignalShowOverlay:
		var overlay session.Overlay
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &overlay); err != nil {
				internal.GetInternalLogger().Warn("Malformed overlay detail", "error", err)
			}
		}
		return session.Event{Kind: session.EventShowOverlay, Overlay: overlay}, true
	default:
		return session.Event{}, false
	}
}

// Stream reads signals from one session socket. It is a building block for
// a caller-supplied session client, not a client itself.
type Stream struct {
	conn   *websocket.Conn
	events chan session.Event
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once
}

// Dial connects to url presenting credential and starts reading signals.
func Dial(ctx context.Context, url, credential string) (*Stream, error) {
	header := http.Header{}
	if credential != "" {
		header.Set(tokenHeader, credential)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	s := &Stream{
		conn:   conn,
		events: make(chan session.Event, eventsBuffer),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Events returns the channel signals are delivered on. It is closed when
// the connection ends. An unexpected end is reported as a disconnected
// signal first.
func (s *Stream) Events() <-chan session.Event {
	return s.events
}

// Close shuts the connection down.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.done)
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}

func (s *Stream) readLoop() {
	logger := internal.GetInternalLogger()
	defer close(s.events)

	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				logger.Warn("Dropping malformed socket frame", "error", err)
				continue
			}
			if !s.closed.Load() {
				logger.Warn("Session socket closed unexpectedly", "error", err)
				s.send(session.Event{Kind: session.EventDisconnected})
			}
			return
		}

		ev, ok := DecodeEvent(f.Event, f.Detail)
		if !ok {
			logger.Debug("Ignoring socket signal", "event", f.Event)
			continue
		}
		if !s.send(ev) {
			return
		}
	}
}

func (s *Stream) send(ev session.Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}
