// Package client talks to the classboard API. Its sources feed listsync and
// its mutation calls back listsync mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"classboard/internal/listsync"

	"github.com/google/uuid"
)

const (
	apiPrefix      = "/api/v1"
	clientIDHeader = "X-Client-ID"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	clientID   string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClientID fixes the id sent in X-Client-ID. By default every Client
// gets a fresh one.
func WithClientID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.clientID = id
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		clientID: uuid.New().String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ClientID() string {
	return c.clientID
}

func (c *Client) SetToken(token string) {
	c.token = token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// do sends one request. out receives the decoded body: the envelope's data
// when the server wrapped it, the raw body otherwise (collections).
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(clientIDHeader, c.clientID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &listsync.NetworkFailure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &listsync.NetworkFailure{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejection(resp.StatusCode, respBody)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	data := respBody
	if trimmed := bytes.TrimSpace(respBody); len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Data != nil {
			data = env.Data
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func rejection(status int, body []byte) error {
	var env envelope
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		message = env.Error
	}
	return &listsync.ServerRejection{Status: status, Message: message}
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	return listsync.IsStatus(err, http.StatusUnauthorized)
}

// IsNetworkFailure reports whether err never reached the server.
func IsNetworkFailure(err error) bool {
	var nf *listsync.NetworkFailure
	return errors.As(err, &nf)
}
