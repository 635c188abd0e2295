// Package github provides the GitHub API client used by the selectors.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/yuxiqian/auto-assign/pkg/cache"

	"github.com/codeGROOVE-dev/retry"
)

// DefaultBaseURL is the GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client handles all GitHub API interactions for one invocation.
type Client struct {
	httpClient    *http.Client
	cache         *cache.Cache
	installExpiry time.Time
	baseURL       string
	token         string
	appID         string
	owner         string
	repo          string
	installToken  string
	privateKey    []byte
	tokenMutex    sync.RWMutex
	isAppAuth     bool
}

// Config holds configuration for creating a new GitHub client.
type Config struct {
	BaseURL     string // API endpoint; empty means DefaultBaseURL (or GITHUB_API_URL when set)
	Token       string // Personal or installation access token
	AppID       string // GitHub App ID (app auth)
	AppKey      string // GitHub App private key content, PEM (app auth)
	AppKeyPath  string // Path to GitHub App private key file (app auth)
	Owner       string // Repository owner, used to resolve the app installation
	Repo        string
	HTTPTimeout time.Duration
	CacheTTL    time.Duration
}

// New creates a GitHub client from a token or GitHub App credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("GITHUB_API_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}

	if cfg.Token != "" {
		return newTokenClient(cfg, baseURL)
	}
	if cfg.AppID != "" {
		return newAppAuthClient(ctx, cfg, baseURL)
	}
	return nil, errors.New("GITHUB_TOKEN is required (or GITHUB_APP_ID for app authentication)")
}

// drainAndCloseBody drains and closes an HTTP response body to prevent
// connection churn.
func drainAndCloseBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		slog.Warn("Failed to drain response body", "error", err)
	}
	if err := body.Close(); err != nil {
		slog.Warn("Failed to close response body", "error", err)
	}
}

// apiURL joins a path like "/users/alice" onto the configured endpoint.
func (c *Client) apiURL(format string, args ...any) string {
	return c.baseURL + fmt.Sprintf(format, args...)
}

// doRequest makes an authenticated HTTP request with retry on transient
// failures. The caller owns the response body.
func (c *Client) doRequest(ctx context.Context, method, apiURL string, body any) (*http.Response, error) {
	slog.Debug("HTTP request", "component", "http", "method", method, "url", apiURL)

	var resp *http.Response
	err := retryWithBackoff(ctx, fmt.Sprintf("%s %s", method, apiURL), func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyBytes, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
			bodyReader = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		authToken, err := c.authToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve auth token: %w", err)
		}
		req.Header.Set("Authorization", "token "+authToken)
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		localResp, err := c.httpClient.Do(req) //nolint:bodyclose // body is closed by the caller or drainAndCloseBody
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if localResp.StatusCode == http.StatusTooManyRequests {
			drainAndCloseBody(localResp.Body)
			slog.Warn("Rate limited - will retry with backoff", "method", method, "url", apiURL, "status", 429)
			return fmt.Errorf("http %d: rate limited", localResp.StatusCode)
		}

		if localResp.StatusCode >= http.StatusInternalServerError && localResp.StatusCode < 600 {
			drainAndCloseBody(localResp.Body)
			slog.Warn("Server error - will retry with backoff", "method", method, "url", apiURL, "status", localResp.StatusCode)
			return fmt.Errorf("http %d: server error", localResp.StatusCode)
		}

		resp = localResp
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("HTTP response", "component", "http", "method", method, "url", apiURL, "status", resp.StatusCode)
	return resp, nil
}

// Retry constants. Invocation lifetime is bounded by the CI runner, so the
// budget is far smaller than a long-running service would use.
const (
	maxRetryAttempts  = 4
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

// retryWithBackoff executes fn with exponential backoff and jitter,
// retrying only transient failures.
func retryWithBackoff(ctx context.Context, operation string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(maxRetryAttempts)),
		retry.Delay(initialRetryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(initialRetryDelay/4),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("Retry attempt", "component", "retry", "operation", operation, "attempt", n+1, "max_attempts", maxRetryAttempts, "error", err)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if err == nil {
				return false
			}
			errStr := err.Error()
			return strings.Contains(errStr, "rate limited") ||
				strings.Contains(errStr, "server error") ||
				strings.Contains(errStr, "connection refused") ||
				strings.Contains(errStr, "timeout") ||
				strings.Contains(errStr, "EOF")
		}),
	)
}
