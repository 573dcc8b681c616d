package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/cli/config"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
)

var testAccounts = map[string]models.Profile{
	"admin@skillbridge.com":   {ID: "u-admin", Email: "admin@skillbridge.com", Name: "Asha", Role: models.RoleAdmin},
	"student@skillbridge.com": {ID: "u-student", Email: "student@skillbridge.com", Name: "Meena", Role: models.RoleStudent},
}

// testBackend answers the handful of endpoints the commands use. The access
// cookie value is the account email.
type testBackend struct {
	meCalls atomic.Int32
}

func (b *testBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	current := func() (models.Profile, bool) {
		c, err := r.Cookie(api.AccessCookie)
		if err != nil {
			return models.Profile{}, false
		}
		p, ok := testAccounts[c.Value]
		return p, ok
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	switch path {
	case "/auth/login":
		var req api.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		p, ok := testAccounts[req.Email]
		if !ok || req.Password != "secret" {
			reply(http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: api.AccessCookie, Value: p.Email})
		reply(http.StatusOK, p)
	case "/auth/me":
		b.meCalls.Add(1)
		p, ok := current()
		if !ok {
			reply(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		reply(http.StatusOK, p)
	case "/auth/refresh":
		p, ok := current()
		if !ok {
			reply(http.StatusUnauthorized, map[string]string{"message": "Refresh token expired"})
			return
		}
		reply(http.StatusOK, p)
	case "/auth/logout":
		http.SetCookie(w, &http.Cookie{Name: api.AccessCookie, Value: "", MaxAge: -1})
		w.WriteHeader(http.StatusOK)
	case "/batches":
		reply(http.StatusOK, map[string]any{"content": []api.Batch{
			{ID: "b1", Name: "Java Fullstack", Status: "ACTIVE", DurationWeeks: 12},
			{ID: "b2", Name: "Go Services", Status: "UPCOMING", DurationWeeks: 8},
		}})
	case "/feedback/top-trainers":
		reply(http.StatusOK, []api.TopTrainer{})
	case "/companies":
		reply(http.StatusUnauthorized, map[string]string{"message": "Token expired"})
	default:
		reply(http.StatusNotFound, map[string]string{"message": "Not found"})
	}
}

func newTestEnv(t *testing.T) (*Env, *testBackend) {
	t.Helper()
	backend := &testBackend{}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL+"/api/v1", api.WithCredentials(api.NewMemoryCredentials()))
	resolver := session.NewResolver(session.NewMemoryStore(), client, zerolog.Nop())
	client.SetUnauthorizedHandler(resolver.Invalidate)

	return &Env{
		Server:   &config.Server{Alias: "production", URL: srv.URL + "/api/v1"},
		Client:   client,
		Resolver: resolver,
		Logger:   zerolog.Nop(),
	}, backend
}

func gatedCommand(role string) *cobra.Command {
	cmd := &cobra.Command{Use: "sample", Annotations: gated(role)}
	cmd.SetContext(context.Background())
	return cmd
}

func TestRunLogin(t *testing.T) {
	env, backend := newTestEnv(t)
	ctx := context.Background()
	var out bytes.Buffer

	if err := runLogin(ctx, env, &out, "admin@skillbridge.com", "secret"); err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}
	if !strings.Contains(out.String(), "Login successful") {
		t.Errorf("output = %q, want success message", out.String())
	}
	if !strings.Contains(out.String(), "Role: ADMIN") {
		t.Errorf("output = %q, want role line", out.String())
	}

	cached, err := env.Resolver.Store().Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cached.ID != "u-admin" {
		t.Errorf("cached ID = %q, want u-admin", cached.ID)
	}
	if backend.meCalls.Load() != 0 {
		t.Errorf("login called /auth/me %d times", backend.meCalls.Load())
	}
}

func TestRunLoginFailure(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	err := runLogin(ctx, env, &bytes.Buffer{}, "admin@skillbridge.com", "wrong")
	if err == nil || !strings.Contains(err.Error(), "Invalid email or password") {
		t.Fatalf("runLogin() error = %v, want server message", err)
	}
	if _, err := env.Resolver.Store().Load(ctx); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Load() error = %v, want ErrNoSession", err)
	}

	err = runLogin(ctx, env, &bytes.Buffer{}, "", "secret")
	if err == nil || !strings.Contains(err.Error(), session.MsgMissingCredentials) {
		t.Errorf("runLogin() error = %v, want %q", err, session.MsgMissingCredentials)
	}
}

func TestRunLogoutAndRefresh(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()

	if err := runLogin(ctx, env, &bytes.Buffer{}, "student@skillbridge.com", "secret"); err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}

	var out bytes.Buffer
	if err := runRefresh(ctx, env, &out); err != nil {
		t.Fatalf("runRefresh() error = %v", err)
	}
	if !strings.Contains(out.String(), "Session refreshed") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := runLogout(ctx, env, &out); err != nil {
		t.Fatalf("runLogout() error = %v", err)
	}
	if _, err := env.Resolver.Store().Load(ctx); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Load() after logout error = %v, want ErrNoSession", err)
	}

	if err := runRefresh(ctx, env, &bytes.Buffer{}); err == nil {
		t.Error("runRefresh() after logout should fail")
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name      string
		loginAs   string
		role      string
		wantErr   string
		wantAdmit bool
	}{
		{name: "not logged in", role: AnyRole, wantErr: "not logged in to production"},
		{name: "any role", loginAs: "student@skillbridge.com", role: AnyRole, wantAdmit: true},
		{name: "matching role", loginAs: "admin@skillbridge.com", role: string(models.RoleAdmin), wantAdmit: true},
		{name: "wrong role", loginAs: "student@skillbridge.com", role: string(models.RoleAdmin), wantErr: "requires the ADMIN role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := newTestEnv(t)
			if tt.loginAs != "" {
				if err := runLogin(context.Background(), env, &bytes.Buffer{}, tt.loginAs, "secret"); err != nil {
					t.Fatalf("runLogin() error = %v", err)
				}
			}
			app := &App{Load: func(*cobra.Command) (*Env, error) { return env, nil }}

			err := app.Authorize(gatedCommand(tt.role))
			if tt.wantAdmit {
				if err != nil {
					t.Fatalf("Authorize() error = %v", err)
				}
				if env.Profile == nil || env.Profile.Email != tt.loginAs {
					t.Errorf("Profile = %+v, want %s", env.Profile, tt.loginAs)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Authorize() error = %v, want containing %q", err, tt.wantErr)
			}
			if env.Profile != nil {
				t.Errorf("Profile = %+v, want nil", env.Profile)
			}
		})
	}
}

func TestAuthorizeUngatedSkipsLoad(t *testing.T) {
	loads := 0
	app := &App{Load: func(*cobra.Command) (*Env, error) {
		loads++
		return nil, errors.New("should not load")
	}}

	if err := app.Authorize(&cobra.Command{Use: "init"}); err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if loads != 0 {
		t.Errorf("Load called %d times, want 0", loads)
	}
}

func TestAuthorizeCancelled(t *testing.T) {
	env, _ := newTestEnv(t)
	app := &App{Load: func(*cobra.Command) (*Env, error) { return env, nil }}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd := &cobra.Command{Use: "sample", Annotations: gated(AnyRole)}
	cmd.SetContext(ctx)

	err := app.Authorize(cmd)
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("Authorize() error = %v, want cancellation", err)
	}
}

func TestRunBatchesList(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()
	if err := runLogin(ctx, env, &bytes.Buffer{}, "admin@skillbridge.com", "secret"); err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}

	var out bytes.Buffer
	if err := runBatchesList(ctx, env.Client, &out, "", 0, 20); err != nil {
		t.Fatalf("runBatchesList() error = %v", err)
	}
	for _, want := range []string{"NAME", "Java Fullstack", "Go Services", "UPCOMING"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunTopTrainersEmpty(t *testing.T) {
	env, _ := newTestEnv(t)
	var out bytes.Buffer
	if err := runTopTrainers(context.Background(), env.Client, &out, 5); err != nil {
		t.Fatalf("runTopTrainers() error = %v", err)
	}
	if !strings.Contains(out.String(), "No rated trainers yet.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBackendUnauthorizedDropsCachedProfile(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()
	if err := runLogin(ctx, env, &bytes.Buffer{}, "admin@skillbridge.com", "secret"); err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}

	_, err := env.Client.ListCompanies(ctx, 0, 20)
	err = describeError("failed to list companies", err)
	if err == nil || !strings.Contains(err.Error(), "session expired") {
		t.Fatalf("describeError() = %v, want session expired", err)
	}
	if _, err := env.Resolver.Store().Load(ctx); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Load() error = %v, want ErrNoSession after backend 401", err)
	}
}

func TestDescribeError(t *testing.T) {
	err := describeError("failed to load batch", &api.APIError{Status: http.StatusNotFound, Message: "Batch not found"})
	if got, want := err.Error(), "failed to load batch: Batch not found"; got != want {
		t.Errorf("describeError() = %q, want %q", got, want)
	}

	plain := errors.New("connection refused")
	if err := describeError("failed", plain); !errors.Is(err, plain) {
		t.Errorf("describeError() should wrap %v", plain)
	}
}

func TestProfileCachePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := profileCachePath(&config.Server{Alias: "staging/eu west", URL: "https://staging.example.edu/api/v1"})
	if err != nil {
		t.Fatalf("profileCachePath() error = %v", err)
	}
	servers := filepath.Join(home, ".config", "skillbridge", "servers")
	if dir := filepath.Dir(filepath.Dir(got)); dir != servers {
		t.Errorf("profileCachePath() = %q, want it under %q", got, servers)
	}
	if name := filepath.Base(filepath.Dir(got)); !strings.HasPrefix(name, "staging_eu_west-") {
		t.Errorf("cache directory = %q, want staging_eu_west-<hash>", name)
	}

	other, _ := profileCachePath(&config.Server{Alias: "staging_eu_west", URL: "https://eu.example.edu/api/v1"})
	if other == got {
		t.Error("servers should not share a profile cache")
	}
}

func TestProfileID(t *testing.T) {
	env := &Env{Profile: &models.Profile{ID: "u-trainer"}}
	if got := profileID(env, nil); got != "u-trainer" {
		t.Errorf("profileID() = %q, want own id", got)
	}
	if got := profileID(env, []string{"u-other"}); got != "u-other" {
		t.Errorf("profileID() = %q, want explicit id", got)
	}
}

func TestRunWhoami(t *testing.T) {
	env, _ := newTestEnv(t)
	ctx := context.Background()
	env.Profile = &models.Profile{ID: "u-admin", Email: "admin@skillbridge.com", Name: "Asha", Role: models.RoleAdmin}

	var out bytes.Buffer
	if err := runWhoami(ctx, env, &out); err != nil {
		t.Fatalf("runWhoami() error = %v", err)
	}
	if strings.Contains(out.String(), "expires") {
		t.Errorf("no access token held, output = %q", out.String())
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
	})
	signed, err := token.SignedString([]byte("backend-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if err := env.Client.Credentials().SaveTokens(ctx, api.Tokens{Access: signed}); err != nil {
		t.Fatalf("SaveTokens() error = %v", err)
	}

	out.Reset()
	if err := runWhoami(ctx, env, &out); err != nil {
		t.Fatalf("runWhoami() error = %v", err)
	}
	for _, want := range []string{"Logged in to production", "Role: ADMIN", "Access token expires"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
