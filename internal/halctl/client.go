package halctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wifihal/pkg/types"
)

// APIError is a non-2xx answer from wifihald.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wifihald: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("wifihald: %s (%d)", e.Message, e.Status)
}

// Client talks to the wifihald HTTP API.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient returns a client for addr, which may be a host:port, a :port or a
// full URL.
func NewClient(addr string, timeout time.Duration) *Client {
	base := strings.TrimRight(addr, "/")
	if strings.HasPrefix(base, ":") {
		base = "127.0.0.1" + base
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{base: base, hc: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	logger.Debug().Str("method", method).Str("url", req.URL.String()).Msg("request")
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	logger.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("response")
	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		_, err = io.Copy(w, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er types.ErrorResponse
	if json.Unmarshal(b, &er) == nil && er.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: er.Error}
	}
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(b))}
}

func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var st types.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &st)
	return st, err
}

// Dump copies the diagnostic dump to w.
func (c *Client) Dump(ctx context.Context, w io.Writer) error {
	return c.do(ctx, http.MethodGet, "/dump", nil, w)
}

func (c *Client) Start(ctx context.Context) (types.ActionResponse, error) {
	var ar types.ActionResponse
	err := c.do(ctx, http.MethodPost, "/start", nil, &ar)
	return ar, err
}

func (c *Client) Stop(ctx context.Context) (types.ActionResponse, error) {
	var ar types.ActionResponse
	err := c.do(ctx, http.MethodPost, "/stop", nil, &ar)
	return ar, err
}

// CreateIface asks the daemon for an interface of typ (sta, ap, p2p or nan).
func (c *Client) CreateIface(ctx context.Context, typ string) (types.IfaceStatus, error) {
	var st types.IfaceStatus
	err := c.do(ctx, http.MethodPost, "/ifaces", types.CreateIfaceRequest{Type: typ}, &st)
	return st, err
}

func (c *Client) RemoveIface(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/ifaces/"+url.PathEscape(name), nil, nil)
}

// Events returns recent events, newest first. limit <= 0 uses the server default.
func (c *Client) Events(ctx context.Context, limit int) ([]types.EventRecord, error) {
	path := "/events"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var er types.EventsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &er); err != nil {
		return nil, err
	}
	return er.Events, nil
}
