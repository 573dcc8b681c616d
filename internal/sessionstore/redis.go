package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/auth"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
)

const redisKeyPrefix = "portal_session:"

// Hash fields of a portal session
const (
	fieldCreatedAt = "created_at"
	fieldUserID    = "user_id"
	fieldEmail     = "email"
	fieldName      = "name"
	fieldRole      = "role"
	fieldCollegeID = "college_id"
	fieldAccess    = "access_token"
	fieldRefresh   = "refresh_token"
)

// Redis stores each portal session as a hash with a sliding TTL. Every
// access pushes the expiry out by ttl.
type Redis struct {
	client redis.UniversalClient
	sealer *auth.Sealer
	ttl    time.Duration
}

// NewRedis returns a redis backed session backend
func NewRedis(client redis.UniversalClient, sealer *auth.Sealer, ttl time.Duration) *Redis {
	return &Redis{client: client, sealer: sealer, ttl: ttl}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (r *Redis) Create(ctx context.Context) (string, error) {
	id := models.NewID()
	key := redisKey(id)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldCreatedAt, time.Now().UTC().Format(time.RFC3339))
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return id, nil
}

func (r *Redis) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up portal session: %w", err)
	}
	return n > 0, nil
}

func (r *Redis) Destroy(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete portal session: %w", err)
	}
	return nil
}

func (r *Redis) For(sessionID string) SessionStore {
	return &RedisStore{backend: r, key: redisKey(sessionID)}
}

// RedisStore is one portal session hash
type RedisStore struct {
	backend *Redis
	key     string
}

func (s *RedisStore) fields(ctx context.Context) (map[string]string, error) {
	client := s.backend.client
	values, err := client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load portal session: %w", err)
	}
	if len(values) == 0 {
		return nil, session.ErrNoSession
	}
	if err := client.Expire(ctx, s.key, s.backend.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to extend portal session: %w", err)
	}
	return values, nil
}

// set writes fields only while the session hash still exists, so an expired
// session is not resurrected by a late write.
func (s *RedisStore) set(ctx context.Context, values map[string]any) error {
	client := s.backend.client
	n, err := client.Exists(ctx, s.key).Result()
	if err != nil {
		return fmt.Errorf("failed to look up portal session: %w", err)
	}
	if n == 0 {
		return session.ErrNoSession
	}
	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, values)
		pipe.Expire(ctx, s.key, s.backend.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update portal session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*models.Profile, error) {
	values, err := s.fields(ctx)
	if err != nil {
		return nil, err
	}
	row := models.PortalSession{
		UserID:    values[fieldUserID],
		Email:     values[fieldEmail],
		Name:      values[fieldName],
		Role:      models.Role(values[fieldRole]),
		CollegeID: values[fieldCollegeID],
	}
	p := row.Profile()
	if p == nil {
		return nil, session.ErrNoSession
	}
	return p, nil
}

func (s *RedisStore) Save(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return s.set(ctx, map[string]any{
		fieldUserID:    profile.ID,
		fieldEmail:     profile.Email,
		fieldName:      profile.Name,
		fieldRole:      string(profile.Role),
		fieldCollegeID: profile.CollegeID,
	})
}

func (s *RedisStore) Clear(ctx context.Context) error {
	err := s.backend.client.HDel(ctx, s.key, fieldUserID, fieldEmail, fieldName, fieldRole, fieldCollegeID).Err()
	if err != nil {
		return fmt.Errorf("failed to clear portal session profile: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadTokens(ctx context.Context) (api.Tokens, error) {
	values, err := s.fields(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return api.Tokens{}, nil
	}
	if err != nil {
		return api.Tokens{}, err
	}

	access, err := s.backend.sealer.Open(values[fieldAccess])
	if err != nil {
		return api.Tokens{}, fmt.Errorf("failed to open access token: %w", err)
	}
	refresh, err := s.backend.sealer.Open(values[fieldRefresh])
	if err != nil {
		return api.Tokens{}, fmt.Errorf("failed to open refresh token: %w", err)
	}
	return api.Tokens{Access: access, Refresh: refresh}, nil
}

func (s *RedisStore) SaveTokens(ctx context.Context, tokens api.Tokens) error {
	access, err := s.backend.sealer.Seal(tokens.Access)
	if err != nil {
		return err
	}
	refresh, err := s.backend.sealer.Seal(tokens.Refresh)
	if err != nil {
		return err
	}
	return s.set(ctx, map[string]any{fieldAccess: access, fieldRefresh: refresh})
}

func (s *RedisStore) DeleteTokens(ctx context.Context) error {
	if err := s.backend.client.HDel(ctx, s.key, fieldAccess, fieldRefresh).Err(); err != nil {
		return fmt.Errorf("failed to delete session credentials: %w", err)
	}
	return nil
}
