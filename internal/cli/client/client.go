package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// APIPrefix is prepended to every endpoint path
	APIPrefix = "/api/v1"
	// SessionCookieName is the cookie the server issues at login
	SessionCookieName = "_auth"
)

// Credentials are attached to every request the client sends. Either field
// may be empty.
type Credentials struct {
	SessionToken string
	BearerKey    string
}

func (c Credentials) apply(req *http.Request) {
	if c.SessionToken != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.SessionToken})
	}
	if c.BearerKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerKey)
	}
}

// StatusError is returned when the server answers with an unexpected status code
type StatusError struct {
	Action string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Action, e.Code, e.Body)
}

// Client represents an HTTP client for the Terra API
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	logger     zerolog.Logger
}

// New creates a new API client. serverURL defaults to https when it has no
// scheme; insecure skips certificate verification for self-signed servers.
func New(serverURL string, insecure bool, creds Credentials) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &Client{
		baseURL: BaseURL(serverURL),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		creds:  creds,
		logger: log.Logger,
	}
}

// BaseURL turns a server address into the API base URL
func BaseURL(serverURL string) string {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if !strings.Contains(serverURL, "://") {
		serverURL = "https://" + serverURL
	}
	return serverURL + APIPrefix
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetLogger sets the logger used for swallowed failures
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// SetCredentials replaces the credentials sent from now on
func (c *Client) SetCredentials(creds Credentials) {
	c.creds = creds
}

// WithCredentials returns a copy of the client sending creds instead
func (c *Client) WithCredentials(creds Credentials) *Client {
	clone := *c
	clone.creds = creds
	return &clone
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.creds.apply(req)

	return req, nil
}

// send performs the request and returns the response when its status is
// want; otherwise the body is drained into a StatusError.
func (c *Client) send(ctx context.Context, action, method, path string, body any, want int) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != want {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Action: action, Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return resp, nil
}

// decode rejects bodies with anything after the first JSON value
func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
