// Package session resolves whether the current client holds an authenticated
// SkillBridge session and gates role-scoped work on the result.
//
// The cached profile lives in a Store that is passed to the Resolver
// explicitly; nothing in this package keeps global state.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/skillbridge-dev/skillbridge/internal/models"
)

// ProfileKey is the fixed storage key the profile is cached under
const ProfileKey = "skillbridge.user"

// ErrNoSession is returned by Store.Load when no profile is cached
var ErrNoSession = errors.New("no session")

// Store caches the authenticated profile on the client side
type Store interface {
	Load(ctx context.Context) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
	Clear(ctx context.Context) error
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu      sync.Mutex
	profile *models.Profile
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, ErrNoSession
	}
	p := *m.profile
	return &p, nil
}

func (m *MemoryStore) Save(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *profile
	m.profile = &p
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = nil
	return nil
}
