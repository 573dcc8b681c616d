package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-dev/skillbridge/internal/models"
)

type remoteError struct {
	status  int
	message string
}

func (e *remoteError) Error() string       { return e.message }
func (e *remoteError) UserMessage() string { return e.message }
func (e *remoteError) StatusCode() int     { return e.status }

// fakeRemote records calls and returns canned results
type fakeRemote struct {
	meCalls      atomic.Int32
	loginCalls   atomic.Int32
	logoutCalls  atomic.Int32
	refreshCalls atomic.Int32

	me        *models.Profile
	meErr     error
	meRelease chan struct{} // when set, Me blocks until closed

	accounts  map[string]*models.Profile // email -> profile, password is "secret"
	loginErr  error
	logoutErr error

	refreshed  *models.Profile
	refreshErr error

	registered  *models.Profile
	registerErr error
}

func (f *fakeRemote) Login(ctx context.Context, email, password string) (*models.Profile, error) {
	f.loginCalls.Add(1)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	p, ok := f.accounts[email]
	if !ok || password != "secret" {
		return nil, &remoteError{status: 401, message: "Invalid email or password"}
	}
	return p, nil
}

func (f *fakeRemote) Register(ctx context.Context, kind string, payload any) (*models.Profile, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registered, nil
}

func (f *fakeRemote) Me(ctx context.Context) (*models.Profile, error) {
	f.meCalls.Add(1)
	if f.meRelease != nil {
		select {
		case <-f.meRelease:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.me, nil
}

func (f *fakeRemote) Refresh(ctx context.Context) (*models.Profile, error) {
	f.refreshCalls.Add(1)
	return f.refreshed, f.refreshErr
}

func (f *fakeRemote) Logout(ctx context.Context) error {
	f.logoutCalls.Add(1)
	return f.logoutErr
}

var (
	adminProfile   = &models.Profile{ID: "1", Email: "admin@skillbridge.com", Name: "Admin User", Role: models.RoleAdmin}
	studentProfile = &models.Profile{ID: "2", Email: "student@test.com", Name: "Student User", Role: models.RoleStudent}
)

func newTestResolver(t *testing.T, remote *fakeRemote) (*Resolver, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewResolver(store, remote, zerolog.Nop()), store
}

func cached(t *testing.T, store Store) *models.Profile {
	t.Helper()
	p, err := store.Load(context.Background())
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	require.NoError(t, err)
	return p
}

func TestGate_CachedProfileWithOtherRole_Unauthorized(t *testing.T) {
	for _, required := range []models.Role{models.RoleAdmin, models.RoleTrainer} {
		t.Run(string(required), func(t *testing.T) {
			remote := &fakeRemote{}
			resolver, store := newTestResolver(t, remote)
			require.NoError(t, store.Save(context.Background(), studentProfile))

			state, user := NewGate(resolver, required).Authorize(context.Background())

			assert.Equal(t, Unauthorized, state)
			assert.Nil(t, user)
			assert.Zero(t, remote.meCalls.Load())
		})
	}
}

func TestGate_CachedProfileMatchingRole_AuthorizedWithoutNetwork(t *testing.T) {
	for _, required := range []models.Role{models.RoleStudent, ""} {
		t.Run("required="+string(required), func(t *testing.T) {
			remote := &fakeRemote{meErr: errors.New("must not be called")}
			resolver, store := newTestResolver(t, remote)
			require.NoError(t, store.Save(context.Background(), studentProfile))

			state, user := NewGate(resolver, required).Authorize(context.Background())

			assert.Equal(t, Authorized, state)
			assert.Equal(t, studentProfile, user)
			assert.Zero(t, remote.meCalls.Load())
		})
	}
}

func TestGate_NoCacheRemoteSuccess_AuthorizedAndCached(t *testing.T) {
	remote := &fakeRemote{me: adminProfile}
	resolver, store := newTestResolver(t, remote)

	state, user := NewGate(resolver, models.RoleAdmin).Authorize(context.Background())

	assert.Equal(t, Authorized, state)
	assert.Equal(t, adminProfile, user)
	assert.Equal(t, int32(1), remote.meCalls.Load())
	assert.Equal(t, adminProfile, cached(t, store))
}

func TestGate_NoCacheRemoteFailure_UnauthorizedAndEmpty(t *testing.T) {
	for name, err := range map[string]error{
		"network": errors.New("dial tcp: connection refused"),
		"401":     &remoteError{status: 401, message: "Not authenticated"},
	} {
		t.Run(name, func(t *testing.T) {
			remote := &fakeRemote{meErr: err}
			resolver, store := newTestResolver(t, remote)

			state, _ := NewGate(resolver, "").Authorize(context.Background())

			assert.Equal(t, Unauthorized, state)
			assert.Equal(t, int32(1), remote.meCalls.Load())
			assert.Nil(t, cached(t, store))
		})
	}
}

func TestEnsureSession_InvalidRemoteProfile(t *testing.T) {
	remote := &fakeRemote{me: &models.Profile{ID: "9", Role: "GUEST"}}
	resolver, store := newTestResolver(t, remote)

	res := resolver.EnsureSession(context.Background())

	assert.False(t, res.Authenticated)
	assert.Nil(t, cached(t, store))
}

func TestLogout_ClearsCacheEvenWhenRemoteFails(t *testing.T) {
	for name, logoutErr := range map[string]error{
		"remote ok":     nil,
		"remote failed": errors.New("connection reset"),
	} {
		t.Run(name, func(t *testing.T) {
			remote := &fakeRemote{logoutErr: logoutErr}
			resolver, store := newTestResolver(t, remote)
			require.NoError(t, store.Save(context.Background(), adminProfile))

			resolver.Logout(context.Background())

			assert.Equal(t, int32(1), remote.logoutCalls.Load())
			assert.Nil(t, cached(t, store))
		})
	}
}

func TestLogin(t *testing.T) {
	remote := &fakeRemote{accounts: map[string]*models.Profile{adminProfile.Email: adminProfile}}

	t.Run("success caches profile", func(t *testing.T) {
		resolver, store := newTestResolver(t, remote)
		res := resolver.Login(context.Background(), adminProfile.Email, "secret")
		require.True(t, res.Success)
		assert.Equal(t, adminProfile, res.User)
		assert.Equal(t, adminProfile, cached(t, store))
	})

	t.Run("server message on failure, cache untouched", func(t *testing.T) {
		resolver, store := newTestResolver(t, remote)
		require.NoError(t, store.Save(context.Background(), studentProfile))

		res := resolver.Login(context.Background(), adminProfile.Email, "wrong")
		assert.False(t, res.Success)
		assert.Equal(t, "Invalid email or password", res.Message)
		assert.Equal(t, studentProfile, cached(t, store))
	})

	t.Run("generic message on transport failure", func(t *testing.T) {
		resolver, store := newTestResolver(t, &fakeRemote{loginErr: errors.New("timeout")})
		res := resolver.Login(context.Background(), "a@b.c", "secret")
		assert.False(t, res.Success)
		assert.Equal(t, MsgLoginFailed, res.Message)
		assert.Nil(t, cached(t, store))
	})

	t.Run("blank credentials skip the network", func(t *testing.T) {
		r := &fakeRemote{}
		resolver, _ := newTestResolver(t, r)
		res := resolver.Login(context.Background(), " ", "")
		assert.Equal(t, MsgMissingCredentials, res.Message)
		assert.Zero(t, r.loginCalls.Load())
	})
}

func TestRegister_ConflictMessage(t *testing.T) {
	resolver, store := newTestResolver(t, &fakeRemote{registerErr: &remoteError{status: 409}})

	res := resolver.Register(context.Background(), KindStudent, map[string]string{})

	assert.False(t, res.Success)
	assert.Equal(t, MsgEmailTaken, res.Message)
	assert.Nil(t, cached(t, store))
}

func TestRegister_SuccessCaches(t *testing.T) {
	resolver, store := newTestResolver(t, &fakeRemote{registered: studentProfile})

	res := resolver.Register(context.Background(), KindStudent, nil)

	require.True(t, res.Success)
	assert.Equal(t, studentProfile, cached(t, store))
}

func TestRefresh(t *testing.T) {
	t.Run("success overwrites cache", func(t *testing.T) {
		updated := *adminProfile
		updated.Name = "Renamed Admin"
		resolver, store := newTestResolver(t, &fakeRemote{refreshed: &updated})
		require.NoError(t, store.Save(context.Background(), adminProfile))

		res := resolver.Refresh(context.Background())
		require.True(t, res.Authenticated)
		assert.Equal(t, "Renamed Admin", cached(t, store).Name)
	})

	t.Run("failure deletes cache", func(t *testing.T) {
		resolver, store := newTestResolver(t, &fakeRemote{refreshErr: &remoteError{status: 401, message: "Invalid refresh token"}})
		require.NoError(t, store.Save(context.Background(), adminProfile))

		res := resolver.Refresh(context.Background())
		assert.False(t, res.Authenticated)
		assert.Nil(t, cached(t, store))
	})
}

func TestCheck_ResolvesAsynchronously(t *testing.T) {
	release := make(chan struct{})
	remote := &fakeRemote{me: adminProfile, meRelease: release}
	resolver, _ := newTestResolver(t, remote)

	check := NewGate(resolver, models.RoleAdmin).Start(context.Background())
	assert.Equal(t, Checking, check.State())

	close(release)
	state, err := check.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Authorized, state)
	assert.Equal(t, adminProfile, check.User())
}

func TestCheck_CancelledBeforeResolution_DiscardsResult(t *testing.T) {
	release := make(chan struct{})
	remote := &fakeRemote{me: adminProfile, meRelease: release}
	resolver, _ := newTestResolver(t, remote)

	check := NewGate(resolver, models.RoleAdmin).Start(context.Background())
	check.Cancel()
	close(release)

	select {
	case <-check.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("check did not settle after cancel")
	}

	state, err := check.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Checking, state)
	assert.Nil(t, check.User())
}

func TestCheck_ParentContextTeardown(t *testing.T) {
	remote := &fakeRemote{me: adminProfile, meRelease: make(chan struct{})}
	resolver, _ := newTestResolver(t, remote)

	ctx, cancel := context.WithCancel(context.Background())
	check := NewGate(resolver, "").Start(ctx)
	cancel()

	<-check.Done()
	assert.Equal(t, Checking, check.State())
}

// Admin logs in, then visits an admin-only and a student-only area
func TestScenario_AdminLoginThenNavigate(t *testing.T) {
	remote := &fakeRemote{accounts: map[string]*models.Profile{adminProfile.Email: adminProfile}}
	resolver, store := newTestResolver(t, remote)

	res := resolver.Login(context.Background(), adminProfile.Email, "secret")
	require.True(t, res.Success)
	assert.Equal(t, models.RoleAdmin, cached(t, store).Role)

	adminState, _ := NewGate(resolver, models.RoleAdmin).Authorize(context.Background())
	assert.Equal(t, Authorized, adminState)

	studentState, _ := NewGate(resolver, models.RoleStudent).Authorize(context.Background())
	assert.Equal(t, Unauthorized, studentState)

	assert.Zero(t, remote.meCalls.Load())
}
