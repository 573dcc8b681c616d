package api

import (
	"context"
	"net/http"
	"sync"
)

// Tokens are the backend session cookies
type Tokens struct {
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
}

// Empty reports whether no token is held
func (t Tokens) Empty() bool {
	return t.Access == "" && t.Refresh == ""
}

func (t Tokens) apply(req *http.Request) {
	if t.Access != "" {
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: t.Access})
		req.Header.Set("Authorization", "Bearer "+t.Access)
	}
	if t.Refresh != "" {
		req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: t.Refresh})
	}
}

// merge folds Set-Cookie values into t. A cleared cookie empties its token.
func (t Tokens) merge(cookies []*http.Cookie) (Tokens, bool) {
	changed := false
	for _, ck := range cookies {
		value := ck.Value
		if ck.MaxAge < 0 {
			value = ""
		}
		switch ck.Name {
		case AccessCookie:
			if t.Access != value {
				t.Access = value
				changed = true
			}
		case RefreshCookie:
			if t.Refresh != value {
				t.Refresh = value
				changed = true
			}
		}
	}
	return t, changed
}

// CredentialStore keeps backend session cookies between requests
type CredentialStore interface {
	LoadTokens(ctx context.Context) (Tokens, error)
	SaveTokens(ctx context.Context, tokens Tokens) error
	DeleteTokens(ctx context.Context) error
}

// MemoryCredentials is an in-process CredentialStore
type MemoryCredentials struct {
	mu     sync.Mutex
	tokens Tokens
}

// NewMemoryCredentials returns an empty store
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{}
}

func (m *MemoryCredentials) LoadTokens(ctx context.Context) (Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, nil
}

func (m *MemoryCredentials) SaveTokens(ctx context.Context, tokens Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	return nil
}

func (m *MemoryCredentials) DeleteTokens(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = Tokens{}
	return nil
}
