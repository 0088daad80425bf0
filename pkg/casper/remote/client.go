// Package remote implements the HTTP calls the engine makes besides the
// session sockets: the authenticated menu fetch and the sign-out request.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BrandonKowalski/casper/pkg/casper/router"
)

const (
	menuContentType    = "application/vnd.api+json"
	accessTokenHeader  = "x-casper-access-token"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 512
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Code, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Code)
}

// Client talks to the application origin.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL (scheme and host, e.g.
// "https://app.example.com"). A nil httpClient gets a default with a timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// MenuRoute returns the path of the menu document for a role mask.
// The digest, when set, is inserted before the file name for cache busting.
func MenuRoute(language, menuDigest string, roleMask int64) string {
	digest := ""
	if menuDigest != "" {
		digest = menuDigest + "."
	}
	return fmt.Sprintf("/static/navigation/%s/%smenu_%d.json", language, digest, roleMask)
}

// FetchMenu downloads and decodes the menu forest at route using credential
// as bearer token.
func (c *Client) FetchMenu(ctx context.Context, route, credential string) ([]router.MenuItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+route, nil)
	if err != nil {
		return nil, fmt.Errorf("build menu request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", menuContentType)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(req, resp); err != nil {
		return nil, err
	}

	body, err := decodedBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var items []router.MenuItem
	if err := json.NewDecoder(body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	return items, nil
}

// SignOut asks the server to end the session behind credential.
func (c *Client) SignOut(ctx context.Context, path, credential string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build sign-out request: %w", err)
	}
	req.Header.Set(accessTokenHeader, credential)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return checkStatus(req, resp)
}

func checkStatus(req *http.Request, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method: req.Method,
		URL:    req.URL.String(),
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}
