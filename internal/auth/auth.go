package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	credFileName = "credentials.json"

	// EnvToken overrides the stored credentials.
	EnvToken = "SHOPIFY_ACCESS_TOKEN"
)

// Token sources.
const (
	SourceEnv  = "env"
	SourceFile = "file"
)

// TokenInfo is an Admin API access token and where it came from.
type TokenInfo struct {
	Token      string    `json:"token"`
	Source     string    `json:"source"`
	ShopDomain string    `json:"shop_domain,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Credentials reads and writes the token file under Dir.
type Credentials struct {
	Dir string
}

func (c Credentials) path() string { return filepath.Join(c.Dir, credFileName) }

// Get returns the env token if set, else the stored one. A nil TokenInfo with
// a nil error means nothing is configured.
func (c Credentials) Get() (*TokenInfo, error) {
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		return &TokenInfo{Token: env, Source: SourceEnv}, nil
	}

	b, err := os.ReadFile(c.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Source = SourceFile
	return &ti, nil
}

// Set stores token (and the shop it belongs to) with owner-only permissions.
func (c Credentials) Set(token, shopDomain string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:      token,
		Source:     SourceFile,
		ShopDomain: strings.TrimSpace(shopDomain),
		CreatedAt:  time.Now().UTC(),
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(c.path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes the stored token; a missing file is not an error.
func (c Credentials) Delete() error {
	if err := os.Remove(c.path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Mask shows only the ends of a token.
func Mask(token string) string {
	if len(token) <= 10 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-4:]
}
