package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/skillbridge-dev/skillbridge/internal/api"
)

const (
	service = "skillbridge-cli"
)

// getKeyringKey returns a unique key for storing tokens per server
func getKeyringKey(serverURL string) string {
	return fmt.Sprintf("tokens-%s", serverURL)
}

// KeyringCredentials keeps one server's backend session cookies in the OS
// keychain/credential manager
type KeyringCredentials struct {
	serverURL string
}

var _ api.CredentialStore = (*KeyringCredentials)(nil)

// NewKeyringCredentials returns the credential store for serverURL
func NewKeyringCredentials(serverURL string) *KeyringCredentials {
	return &KeyringCredentials{serverURL: serverURL}
}

// LoadTokens returns empty tokens when nothing is stored
func (k *KeyringCredentials) LoadTokens(ctx context.Context) (api.Tokens, error) {
	raw, err := keyring.Get(service, getKeyringKey(k.serverURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return api.Tokens{}, nil
		}
		return api.Tokens{}, fmt.Errorf("failed to load credentials: %w", err)
	}

	var tokens api.Tokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		// unreadable entries are treated as logged out
		return api.Tokens{}, nil
	}
	return tokens, nil
}

// SaveTokens persists tokens; empty tokens remove the entry
func (k *KeyringCredentials) SaveTokens(ctx context.Context, tokens api.Tokens) error {
	if tokens.Empty() {
		return k.DeleteTokens(ctx)
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := keyring.Set(service, getKeyringKey(k.serverURL), string(data)); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// DeleteTokens removes the entry. A missing entry is not an error.
func (k *KeyringCredentials) DeleteTokens(ctx context.Context) error {
	if err := keyring.Delete(service, getKeyringKey(k.serverURL)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
