package github

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuxiqian/auto-assign/pkg/cache"

	"github.com/golang-jwt/jwt/v5"
)

// Authentication constants.
const (
	maxTokenLength     = 100
	minTokenLength     = 40
	classicTokenLength = 40
)

// newTokenClient creates a client authenticated with a personal or
// installation access token.
func newTokenClient(cfg Config, baseURL string) (*Client, error) {
	if err := validateToken(cfg.Token); err != nil {
		return nil, err
	}

	slog.Info("Using token authentication", "component", "auth")

	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		cache:      cache.New(cfg.CacheTTL),
		baseURL:    baseURL,
		token:      cfg.Token,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
	}, nil
}

// newAppAuthClient creates a client authenticated as a GitHub App. The app
// JWT is exchanged for a repository installation token on first use.
func newAppAuthClient(_ context.Context, cfg Config, baseURL string) (*Client, error) {
	privateKey, err := loadPrivateKey([]byte(cfg.AppKey), cfg.AppKeyPath)
	if err != nil {
		return nil, err
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("app authentication requires the repository owner and name")
	}

	slog.Info("Using GitHub App authentication", "component", "auth", "app_id", cfg.AppID)

	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		cache:      cache.New(cfg.CacheTTL),
		baseURL:    baseURL,
		appID:      cfg.AppID,
		privateKey: privateKey,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		isAppAuth:  true,
	}, nil
}

// authToken returns the token for the next request. For app auth this is
// the installation token, refreshed when close to expiry.
func (c *Client) authToken(ctx context.Context) (string, error) {
	if !c.isAppAuth {
		return c.token, nil
	}

	c.tokenMutex.RLock()
	token, expiry := c.installToken, c.installExpiry
	c.tokenMutex.RUnlock()
	if token != "" && time.Now().Before(expiry) {
		return token, nil
	}

	return c.refreshInstallationToken(ctx)
}

// refreshInstallationToken resolves the app installation for the repository
// and creates a fresh installation access token.
func (c *Client) refreshInstallationToken(ctx context.Context) (string, error) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if c.installToken != "" && time.Now().Before(c.installExpiry) {
		return c.installToken, nil
	}

	jwtToken, err := generateJWT(c.appID, c.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT: %w", err)
	}

	installationID, err := c.repositoryInstallationID(ctx, jwtToken)
	if err != nil {
		return "", err
	}

	slog.Info("Creating installation access token", "component", "auth", "installation_id", installationID)
	apiURL := c.apiURL("/app/installations/%d/access_tokens", installationID)
	resp, err := c.appRequest(ctx, http.MethodPost, apiURL, jwtToken)
	if err != nil {
		return "", fmt.Errorf("failed to create installation token: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to create installation token (status %d): %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		ExpiresAt time.Time `json:"expires_at"`
		Token     string    `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.Token == "" {
		return "", errors.New("received empty installation token")
	}

	// Refresh five minutes before the actual expiry.
	c.installToken = tokenResp.Token
	c.installExpiry = tokenResp.ExpiresAt.Add(-5 * time.Minute)

	return c.installToken, nil
}

// repositoryInstallationID looks up the app installation covering the
// current repository.
func (c *Client) repositoryInstallationID(ctx context.Context, jwtToken string) (int, error) {
	apiURL := c.apiURL("/repos/%s/%s/installation", c.owner, c.repo)
	resp, err := c.appRequest(ctx, http.MethodGet, apiURL, jwtToken)
	if err != nil {
		return 0, fmt.Errorf("failed to look up app installation: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("no app installation for %s/%s (status %d)", c.owner, c.repo, resp.StatusCode)
	}

	var installation struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&installation); err != nil {
		return 0, fmt.Errorf("failed to decode installation: %w", err)
	}
	if installation.ID <= 0 {
		return 0, errors.New("app installation has no ID")
	}
	return installation.ID, nil
}

// appRequest makes a JWT-authenticated request, bypassing doRequest to
// avoid recursing into installation-token resolution.
func (c *Client) appRequest(ctx context.Context, method, apiURL, jwtToken string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+jwtToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	return c.httpClient.Do(req)
}

// generateJWT generates a short-lived JWT for GitHub App authentication.
func generateJWT(appID string, privateKey []byte) (string, error) {
	block, _ := pem.Decode(privateKey)
	if block == nil {
		return "", errors.New("failed to parse PEM block containing the private key")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS8 format if PKCS1 fails.
		parsedKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return "", fmt.Errorf("failed to parse private key: %w", err)
		}
		var ok bool
		key, ok = parsedKey.(*rsa.PrivateKey)
		if !ok {
			return "", errors.New("private key is not RSA")
		}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(10 * time.Minute).Unix(), // GitHub App JWTs expire after 10 minutes max
		"iss": appID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(key)
}

// loadPrivateKey loads the app private key from content or a file path.
func loadPrivateKey(content []byte, keyPath string) ([]byte, error) {
	var privateKey []byte
	switch {
	case len(content) > 0:
		privateKey = content
	case keyPath != "":
		cleanPath := filepath.Clean(keyPath)
		data, err := os.ReadFile(cleanPath) //nolint:gosec // path is operator-supplied credentials
		if err != nil {
			return nil, fmt.Errorf("cannot read private key file: %w", err)
		}
		privateKey = data
	default:
		return nil, errors.New("GitHub App private key is required " +
			"(GITHUB_APP_KEY content or GITHUB_APP_KEY_PATH file)")
	}

	if !strings.Contains(string(privateKey), "BEGIN RSA PRIVATE KEY") &&
		!strings.Contains(string(privateKey), "BEGIN PRIVATE KEY") {
		return nil, errors.New("private key does not appear to be a valid PEM private key")
	}
	return privateKey, nil
}

// validateToken validates a GitHub access token.
func validateToken(token string) error {
	if token == "" {
		return errors.New("no GitHub token found")
	}
	if len(token) > maxTokenLength || len(token) < minTokenLength {
		return errors.New("invalid token length")
	}

	// GitHub tokens have specific prefixes.
	validPrefixes := []string{"ghp_", "gho_", "ghu_", "ghs_", "ghr_"}
	for _, prefix := range validPrefixes {
		if strings.HasPrefix(token, prefix) {
			return nil
		}
	}

	// Could be a classic token (40 hex chars).
	if len(token) != classicTokenLength {
		return errors.New("invalid token format")
	}
	for _, r := range token {
		if (r < 'a' || r > 'f') && (r < '0' || r > '9') {
			return errors.New("invalid classic token format")
		}
	}

	return nil
}
