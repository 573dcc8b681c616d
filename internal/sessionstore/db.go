package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/auth"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
)

// Backend creates and removes portal sessions and hands out per-session
// stores. DB and Redis both implement it.
type Backend interface {
	Create(ctx context.Context) (string, error)
	Exists(ctx context.Context, sessionID string) (bool, error)
	Destroy(ctx context.Context, sessionID string) error
	For(sessionID string) SessionStore
}

// SessionStore is the per-session view: the cached profile plus the sealed
// backend credentials of that browser session.
type SessionStore interface {
	session.Store
	api.CredentialStore
}

// DB stores portal sessions as gorm rows
type DB struct {
	db     *gorm.DB
	sealer *auth.Sealer
}

// NewDB returns a gorm backed session backend
func NewDB(db *gorm.DB, sealer *auth.Sealer) *DB {
	return &DB{db: db, sealer: sealer}
}

func (d *DB) Create(ctx context.Context) (string, error) {
	row := models.PortalSession{LastSeenAt: time.Now()}
	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return row.ID, nil
}

func (d *DB) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.PortalSession{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up portal session: %w", err)
	}
	return count > 0, nil
}

func (d *DB) Destroy(ctx context.Context, sessionID string) error {
	if err := d.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.PortalSession{}).Error; err != nil {
		return fmt.Errorf("failed to delete portal session: %w", err)
	}
	return nil
}

// Prune removes sessions not seen since before the cutoff
func (d *DB) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Where("last_seen_at < ?", olderThan).Delete(&models.PortalSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune portal sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (d *DB) For(sessionID string) SessionStore {
	return &DBStore{db: d.db, sealer: d.sealer, id: sessionID}
}

const touchInterval = time.Minute

// DBStore is one portal session row
type DBStore struct {
	db     *gorm.DB
	sealer *auth.Sealer
	id     string
}

func (s *DBStore) load(ctx context.Context) (*models.PortalSession, error) {
	var row models.PortalSession
	err := models.FindByID(s.db.WithContext(ctx), s.id, &row)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, session.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portal session: %w", err)
	}
	return &row, nil
}

func (s *DBStore) update(ctx context.Context, fields map[string]any) error {
	fields["last_seen_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&models.PortalSession{}).Where("id = ?", s.id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update portal session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return session.ErrNoSession
	}
	return nil
}

// Load returns the cached profile and slides the session's expiry the way
// the redis backend does on read.
func (s *DBStore) Load(ctx context.Context) (*models.Profile, error) {
	row, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, row)
	p := row.Profile()
	if p == nil {
		return nil, session.ErrNoSession
	}
	return p, nil
}

// touch bumps last_seen_at, at most once per touchInterval
func (s *DBStore) touch(ctx context.Context, row *models.PortalSession) {
	now := time.Now()
	if now.Sub(row.LastSeenAt) < touchInterval {
		return
	}
	err := s.db.WithContext(ctx).Model(&models.PortalSession{}).
		Where("id = ?", s.id).
		UpdateColumn("last_seen_at", now).Error
	if err == nil {
		row.LastSeenAt = now
	}
}

func (s *DBStore) Save(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	var row models.PortalSession
	row.SetProfile(profile)
	return s.update(ctx, map[string]any{
		"user_id":    row.UserID,
		"email":      row.Email,
		"name":       row.Name,
		"role":       string(row.Role),
		"college_id": row.CollegeID,
	})
}

func (s *DBStore) Clear(ctx context.Context) error {
	err := s.update(ctx, map[string]any{
		"user_id": "", "email": "", "name": "", "role": "", "college_id": "",
	})
	if errors.Is(err, session.ErrNoSession) {
		return nil
	}
	return err
}

func (s *DBStore) LoadTokens(ctx context.Context) (api.Tokens, error) {
	row, err := s.load(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return api.Tokens{}, nil
	}
	if err != nil {
		return api.Tokens{}, err
	}

	access, err := s.sealer.Open(row.AccessToken)
	if err != nil {
		return api.Tokens{}, fmt.Errorf("failed to open access token: %w", err)
	}
	refresh, err := s.sealer.Open(row.RefreshToken)
	if err != nil {
		return api.Tokens{}, fmt.Errorf("failed to open refresh token: %w", err)
	}
	return api.Tokens{Access: access, Refresh: refresh}, nil
}

func (s *DBStore) SaveTokens(ctx context.Context, tokens api.Tokens) error {
	access, err := s.sealer.Seal(tokens.Access)
	if err != nil {
		return err
	}
	refresh, err := s.sealer.Seal(tokens.Refresh)
	if err != nil {
		return err
	}
	return s.update(ctx, map[string]any{"access_token": access, "refresh_token": refresh})
}

func (s *DBStore) DeleteTokens(ctx context.Context) error {
	err := s.update(ctx, map[string]any{"access_token": "", "refresh_token": ""})
	if errors.Is(err, session.ErrNoSession) {
		return nil
	}
	return err
}
