// Package apiclient is the only place that talks to the travel REST API.
// Every response is an Envelope{success, data, message}; anything else is an
// error carrying the server message when there is one.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"tripdesk/globals"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxResponseBody = 8 << 20

type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Decode unmarshals the data field into out. A missing or null data field
// leaves out untouched.
func (e *Envelope) Decode(out any) error {
	if out == nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// DecodeRecord is Decode for endpoints that return one record, either as
// data itself or wrapped one level down (data.accommodation, data.tour, ...).
func (e *Envelope) DecodeRecord(out any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &fields); err != nil {
		return e.Decode(out)
	}
	if _, ok := fields["_id"]; ok || len(fields) == 0 {
		return e.Decode(out)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var inner map[string]json.RawMessage
		if json.Unmarshal(fields[k], &inner) == nil {
			if _, ok := inner["_id"]; ok {
				if err := json.Unmarshal(fields[k], out); err != nil {
					return fmt.Errorf("decode %s: %w", k, err)
				}
				return nil
			}
		}
	}
	return e.Decode(out)
}

// Error is a request the backend answered but did not accept: a non-2xx status
// or success:false.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Message picks the text shown to the admin for err: the server message when
// the backend sent one, a validation message, else fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

type Client struct {
	base    string
	http    *http.Client
	token   string
	limiter *rate.Limiter
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy that sends token as a bearer credential. The
// limiter is shared with the parent.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*Envelope, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	target := c.base + path
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	reqID, _ := ctx.Value(globals.RequestIDKey).(string)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		if ok {
			return &Envelope{Success: true}, nil
		}
		return nil, &Error{Status: resp.StatusCode}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if !ok {
			return nil, &Error{Status: resp.StatusCode}
		}
		return nil, fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if !ok || !env.Success {
		return nil, &Error{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) (*Envelope, error) {
	env, err := c.Do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	return env, env.Decode(out)
}

func (c *Client) SendJSON(ctx context.Context, method, path string, query url.Values, in, out any) (*Envelope, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	env, err := c.Do(ctx, method, path, query, body, "application/json")
	if err != nil {
		return nil, err
	}
	return env, env.Decode(out)
}

func (c *Client) SendForm(ctx context.Context, method, path string, query url.Values, fd *FormData, out any) (*Envelope, error) {
	body, contentType, err := fd.Encode()
	if err != nil {
		return nil, err
	}
	env, err := c.Do(ctx, method, path, query, body, contentType)
	if err != nil {
		return nil, err
	}
	return env, env.Decode(out)
}

func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, "")
}

// Patch sends a body-less PATCH, used for flag updates carried in the query.
func (c *Client) Patch(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.Do(ctx, http.MethodPatch, path, query, nil, "")
}
