package clash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "clashctl/pkg/errors"
)

// DefaultTimeout bounds a single control-API request. The daemon is
// local, so anything slower than this is treated as a failure.
const DefaultTimeout = 10 * time.Second

// Config represents client configuration.
type Config struct {
	Host    string
	Secret  string
	Timeout time.Duration
}

// Client talks to the Clash control API at a fixed base URL.
type Client struct {
	base   string
	secret string
	httpc  *http.Client
}

// NewClient creates a control-API client. Hosts without a scheme get an
// http:// prefix; the daemon API is plain HTTP on loopback.
func NewClient(cfg Config) *Client {
	base := cfg.Host
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		secret: cfg.Secret,
		httpc:  &http.Client{Timeout: timeout},
	}
}

// do performs one request and decodes the JSON response into out. An
// empty response body counts as an empty object: mutating calls return
// no content on success. Every failure mode surfaces as *RequestError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &pkgerrors.RequestError{Method: method, URL: target, Err: fmt.Errorf("encode request body: %w", err)}
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return &pkgerrors.RequestError{Method: method, URL: target, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &pkgerrors.RequestError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &pkgerrors.RequestError{Method: method, URL: target, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(data))
		if detail == "" {
			detail = resp.Status
		}
		return &pkgerrors.RequestError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        errors.New(detail),
		}
	}

	if out == nil {
		return nil
	}
	if len(data) == 0 {
		if raw, ok := out.(*json.RawMessage); ok {
			*raw = json.RawMessage("{}")
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &pkgerrors.RequestError{Method: method, URL: target, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Proxies fetches the full proxies mapping in server order.
func (c *Client) Proxies(ctx context.Context) (*Snapshot, error) {
	var out struct {
		Proxies Snapshot `json:"proxies"`
	}
	if err := c.do(ctx, http.MethodGet, "/proxies", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Proxies, nil
}

// Proxy fetches a single entry fresh. Names may contain spaces, slashes,
// or non-ASCII, so the path segment is percent-encoded.
func (c *Client) Proxy(ctx context.Context, name string) (Proxy, error) {
	var entry Proxy
	err := c.do(ctx, http.MethodGet, "/proxies/"+url.PathEscape(name), nil, nil, &entry)
	if err != nil {
		var reqErr *pkgerrors.RequestError
		if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
			return Proxy{}, fmt.Errorf("'%s': %w", name, pkgerrors.ErrProxyNotFound)
		}
		return Proxy{}, err
	}
	if entry.Name == "" {
		entry.Name = name
	}
	return entry, nil
}

// MembersOf fetches a group's current member list. The fetch is always
// fresh: the active selection can change between calls.
func (c *Client) MembersOf(ctx context.Context, group string) ([]string, error) {
	entry, err := c.Proxy(ctx, group)
	if err != nil {
		return nil, err
	}
	if !entry.IsGroup() {
		return nil, &pkgerrors.NotAGroupError{Name: group, Type: entry.Type}
	}
	return entry.All, nil
}

// Select switches a group's active member and returns the raw server
// response. Selecting the already-active node is a no-op success at the
// daemon.
func (c *Client) Select(ctx context.Context, group, node string) (json.RawMessage, error) {
	var raw json.RawMessage
	body := map[string]string{"name": node}
	if err := c.do(ctx, http.MethodPut, "/proxies/"+url.PathEscape(group), nil, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Delay runs a delay probe against one node. ok is false when the
// daemon reports no measurement (absent or negative delay); an absent
// field is how it signals timeout, not an error.
func (c *Client) Delay(ctx context.Context, name, testURL string, timeoutMS int) (int, bool, error) {
	query := url.Values{
		"timeout": {strconv.Itoa(timeoutMS)},
		"url":     {testURL},
	}
	var out struct {
		Delay *int `json:"delay"`
	}
	if err := c.do(ctx, http.MethodGet, "/proxies/"+url.PathEscape(name)+"/delay", query, nil, &out); err != nil {
		return 0, false, err
	}
	if out.Delay == nil || *out.Delay < 0 {
		return 0, false, nil
	}
	return *out.Delay, true, nil
}
