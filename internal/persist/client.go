package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apperrors"
	"github.com/ffaheem88/BrowserOS-sub000/internal/desktop"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
)

// ErrNoCredential means no bearer token is available yet; the bridge
// falls back to the local cache until a credential shows up.
var ErrNoCredential = errors.New("no credential available")

// StateEnvelope is the server's desktop-settings record.
type StateEnvelope struct {
	Version int              `json:"version"`
	Desktop desktop.Settings `json:"desktop"`
}

// WindowsEnvelope is the server's window-list record.
type WindowsEnvelope struct {
	Version         int         `json:"version"`
	Windows         []wm.Window `json:"windows"`
	FocusedWindowID string      `json:"focusedWindowId"`
}

// Remote is the server record store as seen by the bridge.
type Remote interface {
	FetchState(ctx context.Context) (*StateEnvelope, error)
	PushState(ctx context.Context, expected int, s desktop.Settings) (int, error)
	FetchWindows(ctx context.Context) (*WindowsEnvelope, error)
	PushWindows(ctx context.Context, expected int, windows []wm.Window, focusedID string) (int, error)
}

// Client talks to the desktop endpoints over HTTP, attaching the bearer
// credential supplied by TokenFunc to every call.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	TokenFunc func() string
}

func NewClient(baseURL string, tokenFunc func() string) *Client {
	return &Client{
		BaseURL:   baseURL,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		TokenFunc: tokenFunc,
	}
}

var _ Remote = (*Client)(nil)

type conflictBody struct {
	Error   string `json:"error"`
	Version int    `json:"version"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	token := ""
	if c.TokenFunc != nil {
		token = c.TokenFunc()
	}
	if token == "" {
		return ErrNoCredential
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &apperrors.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		var cb conflictBody
		_ = json.NewDecoder(resp.Body).Decode(&cb)
		return &apperrors.ConflictError{Resource: "desktop record", Actual: cb.Version}
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.NotFoundError{Resource: "desktop record"}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func versionField(expected int) *int {
	if expected <= 0 {
		return nil
	}
	return &expected
}

func (c *Client) FetchState(ctx context.Context) (*StateEnvelope, error) {
	var env StateEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/desktop/state", nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *Client) PushState(ctx context.Context, expected int, s desktop.Settings) (int, error) {
	body := struct {
		Version *int             `json:"version,omitempty"`
		Desktop desktop.Settings `json:"desktop"`
	}{Version: versionField(expected), Desktop: s}
	var out struct {
		Version int `json:"version"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/desktop/state", body, &out); err != nil {
		return 0, err
	}
	return out.Version, nil
}

func (c *Client) FetchWindows(ctx context.Context) (*WindowsEnvelope, error) {
	var env WindowsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/desktop/windows", nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *Client) PushWindows(ctx context.Context, expected int, windows []wm.Window, focusedID string) (int, error) {
	body := struct {
		Version         *int        `json:"version,omitempty"`
		Windows         []wm.Window `json:"windows"`
		FocusedWindowID string      `json:"focusedWindowId"`
	}{Version: versionField(expected), Windows: windows, FocusedWindowID: focusedID}
	var out struct {
		Version int `json:"version"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/v1/desktop/windows", body, &out); err != nil {
		return 0, err
	}
	return out.Version, nil
}
