package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"empty", "", true},
		{"too short", "ghp_abc", true},
		{"personal token", "ghp_" + strings.Repeat("A", 36), false},
		{"oauth token", "gho_" + strings.Repeat("A", 36), false},
		{"installation token", "ghs_" + strings.Repeat("A", 40), false},
		{"classic hex token", strings.Repeat("ab12", 10), false},
		{"classic with bad chars", strings.Repeat("zz!2", 10), true},
		{"too long", "ghp_" + strings.Repeat("A", 120), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateToken(tt.token)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateToken(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
		})
	}
}

// testPrivateKeyPEM generates an RSA key in PKCS1 PEM form.
func testPrivateKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

func TestGenerateJWT(t *testing.T) {
	token, err := generateJWT("12345", testPrivateKeyPEM(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("expected a three-part JWT, got %d parts", len(parts))
	}
}

func TestGenerateJWT_BadKey(t *testing.T) {
	if _, err := generateJWT("12345", []byte("not a key")); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestLoadPrivateKey(t *testing.T) {
	keyPEM := testPrivateKeyPEM(t)

	got, err := loadPrivateKey(keyPEM, "")
	if err != nil {
		t.Fatalf("unexpected error for key content: %v", err)
	}
	if string(got) != string(keyPEM) {
		t.Error("key content was altered")
	}

	if _, err := loadPrivateKey(nil, ""); err == nil {
		t.Error("expected error when no key is provided")
	}

	if _, err := loadPrivateKey([]byte("garbage"), ""); err == nil {
		t.Error("expected error for non-PEM content")
	}
}

func TestAppAuth_InstallationTokenFlow(t *testing.T) {
	keyPEM := testPrivateKeyPEM(t)

	var sawLookup, sawTokenCreate bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/repos/acme/widgets/installation":
			if !strings.HasPrefix(auth, "Bearer ") {
				t.Errorf("installation lookup must use the app JWT, got %q", auth)
			}
			sawLookup = true
			json.NewEncoder(w).Encode(map[string]any{"id": 555})
		case "/app/installations/555/access_tokens":
			if !strings.HasPrefix(auth, "Bearer ") {
				t.Errorf("token creation must use the app JWT, got %q", auth)
			}
			sawTokenCreate = true
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"token":      "ghs_" + strings.Repeat("B", 36),
				"expires_at": time.Now().Add(time.Hour).Format(time.RFC3339),
			})
		case "/users/alice":
			if want := "token ghs_" + strings.Repeat("B", 36); auth != want {
				t.Errorf("API call must use the installation token, got %q", auth)
			}
			json.NewEncoder(w).Encode(map[string]any{"login": "alice", "id": 1})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client, err := New(context.Background(), Config{
		BaseURL: server.URL,
		AppID:   "12345",
		AppKey:  string(keyPEM),
		Owner:   "acme",
		Repo:    "widgets",
	})
	if err != nil {
		t.Fatalf("failed to create app client: %v", err)
	}

	if !client.IsValidUser(context.Background(), "alice") {
		t.Error("expected alice to validate through app auth")
	}
	if !sawLookup || !sawTokenCreate {
		t.Errorf("installation flow incomplete: lookup=%v create=%v", sawLookup, sawTokenCreate)
	}

	// Second token request reuses the cached installation token.
	sawTokenCreate = false
	if !client.IsValidUser(context.Background(), "alice") {
		t.Error("expected cached validation to succeed")
	}
	if sawTokenCreate {
		t.Error("expected installation token to be reused")
	}
}

func TestAppAuth_RequiresRepository(t *testing.T) {
	_, err := New(context.Background(), Config{
		AppID:  "12345",
		AppKey: string(testPrivateKeyPEM(t)),
	})
	if err == nil {
		t.Error("expected error without owner/repo for app auth")
	}
}
