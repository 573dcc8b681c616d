// Package sessionstore holds the persistent session.Store implementations:
// a JSON file for the CLI, and gorm or redis rows for portal sessions.
package sessionstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
)

const storageFileName = "storage.json"

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ServerPath returns <configDir>/servers/<alias>-<hash>/storage.json. The
// hash of the server URL keeps aliases that sanitize to the same name apart,
// so profiles never leak across servers.
func ServerPath(configDir, alias, serverURL string) string {
	name := strings.TrimLeft(unsafePathChars.ReplaceAllString(alias, "_"), ".")
	if name == "" {
		name = "default"
	}
	sum := sha256.Sum256([]byte(alias + "\x00" + serverURL))
	name += "-" + hex.EncodeToString(sum[:4])
	return filepath.Join(configDir, "servers", name, storageFileName)
}

// FileStore keeps string values in a single JSON document, one entry per
// key. The profile is stored serialized under session.ProfileKey. Other keys
// in the document are preserved.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ session.Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the document at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	raw, ok := doc[session.ProfileKey]
	if !ok || raw == "" {
		return nil, session.ErrNoSession
	}

	var p models.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to parse cached profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("cached profile is invalid: %w", err)
	}
	return &p, nil
}

func (f *FileStore) Save(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		// an unreadable document is replaced rather than blocking login
		doc = map[string]string{}
	}
	doc[session.ProfileKey] = string(data)
	return f.write(doc)
}

func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		doc = map[string]string{}
	}
	if _, ok := doc[session.ProfileKey]; !ok && err == nil {
		return nil
	}
	delete(doc, session.ProfileKey)
	return f.write(doc)
}

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	doc := map[string]string{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse storage file: %w", err)
	}
	return doc, nil
}

func (f *FileStore) write(doc map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
