package sessionstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/auth"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
)

var testProfile = &models.Profile{
	ID:        "u-1",
	Email:     "trainer@skillbridge.com",
	Name:      "Priya",
	Role:      models.RoleTrainer,
	CollegeID: "c-1",
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	store := NewFileStore(path)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, store.Save(ctx, testProfile))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testProfile, got)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestFileStore_PreservesOtherKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0600))

	store := NewFileStore(path)
	require.NoError(t, store.Save(ctx, testProfile))
	require.NoError(t, store.Clear(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(data))
}

func TestFileStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"skillbridge.user":"{not json"}`), 0600))

	store := NewFileStore(path)
	_, err := store.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNoSession)

	// a corrupt document is replaced on the next save
	require.NoError(t, os.WriteFile(path, []byte(`garbage`), 0600))
	require.NoError(t, store.Save(ctx, testProfile))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testProfile.ID, got.ID)
}

func TestFileStore_RejectsInvalidProfile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "storage.json"))
	assert.Error(t, store.Save(context.Background(), &models.Profile{ID: "x"}))
}

func TestServerPath(t *testing.T) {
	const prodURL = "https://skillbridge.example.edu/api/v1"

	prod := ServerPath("/cfg", "production", prodURL)
	assert.Equal(t, filepath.Join("/cfg", "servers"), filepath.Dir(filepath.Dir(prod)))
	assert.Equal(t, "storage.json", filepath.Base(prod))
	assert.Regexp(t, `^production-[0-9a-f]{8}$`, filepath.Base(filepath.Dir(prod)))
	assert.Equal(t, prod, ServerPath("/cfg", "production", prodURL))

	// aliases that sanitize alike still get their own directory
	slash := ServerPath("/cfg", "eu/west", prodURL)
	underscore := ServerPath("/cfg", "eu_west", prodURL)
	assert.NotEqual(t, slash, underscore)
	assert.Regexp(t, `^eu_west-[0-9a-f]{8}$`, filepath.Base(filepath.Dir(slash)))

	assert.Regexp(t, `^default-[0-9a-f]{8}$`, filepath.Base(filepath.Dir(ServerPath("/cfg", "", prodURL))))

	for _, alias := range []string{".", "..", "../.."} {
		path := ServerPath("/cfg", alias, prodURL)
		assert.Equal(t, filepath.Join("/cfg", "servers"), filepath.Dir(filepath.Dir(path)), alias)
		assert.NotEqual(t, "..", filepath.Base(filepath.Dir(path)), alias)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func testSealer() *auth.Sealer {
	return auth.NewSealer("0123456789abcdef0123456789abcdef")
}

// exerciseBackend runs the same lifecycle against any Backend
func exerciseBackend(t *testing.T, backend Backend) {
	ctx := context.Background()

	id, err := backend.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	ok, err := backend.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	store := backend.For(id)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)

	tokens, err := store.LoadTokens(ctx)
	require.NoError(t, err)
	assert.True(t, tokens.Empty())

	require.NoError(t, store.Save(ctx, testProfile))
	require.NoError(t, store.SaveTokens(ctx, api.Tokens{Access: "acc", Refresh: "ref"}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testProfile, got)

	tokens, err = store.LoadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, api.Tokens{Access: "acc", Refresh: "ref"}, tokens)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)

	// credentials survive a profile clear until deleted
	tokens, err = store.LoadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc", tokens.Access)

	require.NoError(t, store.DeleteTokens(ctx))
	tokens, err = store.LoadTokens(ctx)
	require.NoError(t, err)
	assert.True(t, tokens.Empty())

	require.NoError(t, backend.Destroy(ctx, id))
	ok, err = backend.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	// writes to a destroyed session do not bring it back
	assert.ErrorIs(t, store.Save(ctx, testProfile), session.ErrNoSession)
	ok, err = backend.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDBBackend(t *testing.T) {
	exerciseBackend(t, NewDB(newTestDB(t), testSealer()))
}

func TestDBBackend_TokensAreSealedAtRest(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	backend := NewDB(db, testSealer())

	id, err := backend.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, backend.For(id).SaveTokens(ctx, api.Tokens{Access: "plain-access"}))

	var row models.PortalSession
	require.NoError(t, models.FindByID(db, id, &row))
	assert.NotEmpty(t, row.AccessToken)
	assert.NotContains(t, row.AccessToken, "plain-access")

	// a different secret cannot open them
	_, err = NewDB(db, auth.NewSealer("another-secret-another-secret-xx")).For(id).LoadTokens(ctx)
	assert.Error(t, err)
}

func TestDBBackend_Prune(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	backend := NewDB(db, testSealer())

	stale, err := backend.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.PortalSession{}).Where("id = ?", stale).
		Update("last_seen_at", time.Now().Add(-48*time.Hour)).Error)
	fresh, err := backend.Create(ctx)
	require.NoError(t, err)

	n, err := backend.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, _ := backend.Exists(ctx, stale)
	assert.False(t, ok)
	ok, _ = backend.Exists(ctx, fresh)
	assert.True(t, ok)
}

func TestDBBackend_ReadSlidesExpiry(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	backend := NewDB(db, testSealer())

	id, err := backend.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, backend.For(id).Save(ctx, testProfile))
	require.NoError(t, db.Model(&models.PortalSession{}).Where("id = ?", id).
		Update("last_seen_at", time.Now().Add(-48*time.Hour)).Error)

	_, err = backend.For(id).Load(ctx)
	require.NoError(t, err)

	n, err := backend.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	ok, err := backend.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDRESS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	backend := NewRedis(client, testSealer(), time.Minute)
	exerciseBackend(t, backend)

	id, err := backend.Create(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Destroy(context.Background(), id) })

	ttl, err := client.TTL(context.Background(), redisKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
