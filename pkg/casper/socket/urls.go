// Package socket derives the session socket endpoints and turns the
// frames pushed by the server into session events.
//
// Stream covers the signal half of a session client only. The session
// handshake (ConnectAndSetSession and the validation calls) is server
// specific and stays with the caller's client, whose Events method can
// return Stream.Events:
//
//	func (c *client) Events() <-chan session.Event { return c.stream.Events() }
package socket

import (
	"fmt"
	"net/url"
)

const (
	primaryPath   = "/epaper"
	secondaryPath = "/epaper2"
)

// Endpoints are the websocket URLs of the two session sockets.
type Endpoints struct {
	Primary   string // Main session socket
	Secondary string // Second socket sharing the primary's credential
	Base      string // Scheme and host only, what the sockets reconnect against
}

// URLs derives the socket endpoints from the page (issuer) URL: https maps
// to wss, anything else to ws, and the port is kept when present.
func URLs(issuer string) (Endpoints, error) {
	u, err := url.Parse(issuer)
	if err != nil {
		return Endpoints{}, fmt.Errorf("parse issuer url: %w", err)
	}
	if u.Hostname() == "" {
		return Endpoints{}, fmt.Errorf("issuer url %q has no host", issuer)
	}

	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}

	host := u.Hostname()
	if port := u.Port(); port != "" {
		host += ":" + port
	}

	return Endpoints{
		Primary:   fmt.Sprintf("%s://%s%s", scheme, host, primaryPath),
		Secondary: fmt.Sprintf("%s://%s%s", scheme, host, secondaryPath),
		Base:      fmt.Sprintf("%s://%s", scheme, u.Hostname()),
	}, nil
}
