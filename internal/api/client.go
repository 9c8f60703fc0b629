// Package api implements the client for the financial-literacy assistant
// backend: a streamed chat endpoint plus plain REST wrappers for quizzes,
// diagnostics, course content, uploads, and the user profile.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"finchat/internal/config"
	"finchat/internal/logging"
)

// Client talks to the assistant backend. Non-streaming requests carry a
// fixed-duration timeout; streaming chat requests run without one. A request
// rejected with 401 is replayed exactly once after a token refresh.
type Client struct {
	streamClient *http.Client // no timeout, streamed chat only; never swapped

	mu           sync.Mutex
	baseURL      string
	apiKey       string
	httpClient   *http.Client // fixed timeout, non-streaming; swapped whole by UpdateConfig
	accessToken  string
	refreshToken string
}

// NewClient builds a Client from the API configuration.
func NewClient(cfg config.APIConfig) (*Client, error) {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid api timeout: %w", err)
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}, nil
}

// UpdateConfig swaps the endpoint, API key, and timeout. Tokens are kept.
// Used when the config file changes under a running widget. A fresh client
// is installed rather than mutating the current one, which may be serving
// in-flight requests on other goroutines.
func (c *Client) UpdateConfig(cfg config.APIConfig) error {
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return fmt.Errorf("invalid api timeout: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	c.apiKey = cfg.APIKey
	c.httpClient = &http.Client{Timeout: timeout}
	return nil
}

// endpoint resolves a path against the configured base URL.
func (c *Client) endpoint(path string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURL + path
}

// restClient returns the current fixed-timeout client. Fetched per request;
// UpdateConfig may swap it at any time.
func (c *Client) restClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.httpClient
}

// SetTokens installs previously obtained tokens, e.g. restored from the
// local store.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

// Tokens returns the current access and refresh tokens.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// bearer returns the credential to send: login token first, API key as the
// non-interactive fallback.
func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" {
		return c.accessToken
	}
	return c.apiKey
}

// Login authenticates with email/password and stores the returned tokens.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var tokens tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &tokens); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()

	logging.API("Login: authenticated email=%s", email)
	return nil
}

// refresh exchanges the refresh token for a new access token. Returns false
// when no refresh token is available.
func (c *Client) refresh(ctx context.Context) bool {
	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()
	if refreshToken == "" {
		return false
	}

	body := map[string]string{"refresh_token": refreshToken}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/auth/refresh"), bytes.NewReader(jsonData))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.restClient().Do(req)
	if err != nil {
		logging.APIError("refresh: request failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.APIError("refresh: rejected with status %d", resp.StatusCode)
		return false
	}

	var tokens tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return false
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.refreshToken = tokens.RefreshToken
	}
	c.mu.Unlock()

	logging.APIDebug("refresh: token renewed")
	return true
}

// do executes a non-streaming JSON request. A 401 response triggers a single
// token refresh and replay; a second 401 surfaces ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, reqBody, out interface{}) error {
	startTime := time.Now()

	var jsonData []byte
	if reqBody != nil {
		var err error
		jsonData, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		var bodyReader io.Reader
		if jsonData != nil {
			bodyReader = bytes.NewReader(jsonData)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if jsonData != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.bearer(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.restClient().Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			if c.refresh(ctx) {
				logging.APIDebug("do: replaying %s %s after token refresh", method, path)
				continue
			}
			return ErrUnauthorized
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			defer resp.Body.Close()
			return c.decodeError(resp)
		}

		defer resp.Body.Close()
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}

		logging.APIDebug("do: %s %s completed in %v", method, path, time.Since(startTime))
		return nil
	}

	return ErrUnauthorized
}

// stream executes the streaming chat request. The caller owns the response
// body. No fixed timeout applies; cancellation comes only from ctx.
func (c *Client) stream(ctx context.Context, path string, reqBody interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if !c.refresh(ctx) {
			return nil, ErrUnauthorized
		}
		// Single replay with the fresh token.
		req2, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req2.Header = req.Header.Clone()
		req2.Header.Set("Authorization", "Bearer "+c.bearer())
		resp, err = c.streamClient.Do(req2)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return nil, ErrUnauthorized
		}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.decodeError(resp)
	}

	return resp, nil
}

// decodeError turns a non-2xx response into an error, preferring the
// backend's error envelope message when the body carries one.
func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var env errorEnvelope
	message := ""
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		message = env.Message
	} else if len(body) > 0 {
		message = strings.TrimSpace(string(body))
	}

	logging.APIError("request failed status=%d message=%s", resp.StatusCode, message)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}
