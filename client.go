package stakeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://stake.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10
)

// Browser-like headers replayed on every request; the API refuses
// requests that do not look like they came from the site itself.
var defaultHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Accept":             "application/graphql+json, application/json",
	"Accept-Language":    "en-US,en;q=0.9",
	"Origin":             "https://stake.com",
	"Referer":            "https://stake.com/",
	"Sec-Ch-Ua":          `"Chromium";v="135", "Not-A.Brand";v="8"`,
	"Sec-Ch-Ua-Mobile":   "?0",
	"Sec-Ch-Ua-Platform": `"Windows"`,
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-origin",
	"X-Language":         "en",
}

// Config carries the settings for a Client. The zero value of every
// field falls back to a sensible default.
type Config struct {
	// AccessToken is the x-access-token header value copied from a
	// browser session.
	AccessToken string
	// SessionCookie is the session cookie value, if available.
	SessionCookie string
	// BaseURL defaults to the production host.
	BaseURL string
	// Timeout bounds each request; defaults to 30s.
	Timeout time.Duration
	// RateLimit is an advisory requests-per-second hint. The client
	// performs no enforcement; pacing is the caller's concern.
	RateLimit int
	// Logger is optional; nil disables client logging.
	Logger *zap.Logger
	// HTTPClient overrides the pooled transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is the call-site object for the stake.com API. One pooled
// HTTP connection context is shared by all methods; concurrent calls
// from the same Client are safe and may complete in any order.
type Client struct {
	baseURL    string
	rateLimit  int
	auth       *AuthManager
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		rateLimit:  rateLimit,
		auth:       NewAuthManager(cfg.AccessToken, cfg.SessionCookie),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Auth exposes the credential holder so callers can rotate or clear
// tokens mid-session.
func (c *Client) Auth() *AuthManager {
	return c.auth
}

// BaseURL returns the configured host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RateLimit returns the advisory requests-per-second hint.
func (c *Client) RateLimit() int {
	return c.rateLimit
}

// Close releases the pooled connections. The Client must not be used
// afterwards.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Request issues one authenticated round trip and decodes the JSON
// response body. Status codes are classified in fixed precedence:
// 401 AuthenticationError, 429 RateLimitError, any other >=400
// APIError with status and body; transport failures are wrapped in
// APIError. Numbers are decoded as json.Number so monetary strings
// never pass through a float.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body any) (map[string]any, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, &ValidationError{Model: "Request", Field: "body", Reason: err.Error()}
		}
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, &ValidationError{Model: "Request", Field: "url", Reason: err.Error()}
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.auth.Headers() {
		req.Header.Set(k, v)
	}
	for name, value := range c.auth.Cookies() {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		}
		return nil, &APIError{Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &AuthenticationError{}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{}
	case resp.StatusCode >= 400:
		return nil, &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	decoded, err := decodeJSONMap(raw)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Body: string(raw), Err: err}
	}
	if c.logger != nil {
		c.logger.Debug("request ok", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
	}
	return decoded, nil
}

// GraphQL posts a query to the GraphQL endpoint and returns the data
// field. A non-empty errors list is a hard failure even on HTTP 200.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, operationName string) (map[string]any, error) {
	payload := map[string]any{"query": query}
	if len(variables) > 0 {
		payload["variables"] = variables
	}
	if operationName != "" {
		payload["operationName"] = operationName
	}
	resp, err := c.Request(ctx, http.MethodPost, GraphQLPath, nil, payload)
	if err != nil {
		return nil, err
	}
	if errs, ok := resp["errors"].([]any); ok && len(errs) > 0 {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			msg := "Unknown error"
			if em, ok := e.(map[string]any); ok {
				if s, ok := em["message"].(string); ok && s != "" {
					msg = s
				}
			}
			messages = append(messages, msg)
		}
		return nil, &GraphQLError{Messages: messages}
	}
	data, ok := resp["data"].(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return data, nil
}

func decodeJSONMap(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
