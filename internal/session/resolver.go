package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skillbridge-dev/skillbridge/internal/models"
)

// Registration kinds accepted by Remote.Register
const (
	KindGeneric = ""
	KindStudent = "student"
	KindTrainer = "trainer"
	KindAdmin   = "admin"
)

// User-facing failure messages
const (
	MsgLoginFailed        = "Unable to connect to server. Please try again later."
	MsgMissingCredentials = "Email and password are required"
	MsgRegisterFailed     = "Registration failed. Please try again."
	MsgEmailTaken         = "User with this email already exists"
)

// Remote is the part of the SkillBridge backend the resolver talks to
type Remote interface {
	Login(ctx context.Context, email, password string) (*models.Profile, error)
	Register(ctx context.Context, kind string, payload any) (*models.Profile, error)
	Me(ctx context.Context) (*models.Profile, error)
	Refresh(ctx context.Context) (*models.Profile, error)
	Logout(ctx context.Context) error
}

// userMessager is implemented by remote errors that carry a server-supplied message
type userMessager interface {
	UserMessage() string
}

// statusCoder is implemented by remote errors that carry an HTTP status
type statusCoder interface {
	StatusCode() int
}

// Result is the outcome of resolving the current session
type Result struct {
	Authenticated bool
	User          *models.Profile
}

// LoginResult is the outcome of a login or registration attempt
type LoginResult struct {
	Success bool
	User    *models.Profile
	Message string
}

// Resolver determines the authentication state of the client: cache first,
// then a single remote re-validation.
type Resolver struct {
	store  Store
	remote Remote
	logger zerolog.Logger
}

// NewResolver creates a resolver over the given store and remote
func NewResolver(store Store, remote Remote, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		remote: remote,
		logger: logger.With().Str("component", "session_resolver").Logger(),
	}
}

// Store returns the session store backing the resolver
func (r *Resolver) Store() Store {
	return r.store
}

// EnsureSession returns the cached profile without a network call when one is
// present. Otherwise it asks the remote for the current profile exactly once.
func (r *Resolver) EnsureSession(ctx context.Context) Result {
	profile, err := r.store.Load(ctx)
	if err == nil && profile != nil {
		return Result{Authenticated: true, User: profile}
	}
	if err != nil && !errors.Is(err, ErrNoSession) {
		r.logger.Warn().Err(err).Msg("Failed to read cached session, re-validating")
	}

	profile, err = r.remote.Me(ctx)
	if err == nil {
		err = profile.Validate()
	}
	if err != nil {
		r.logger.Debug().Err(err).Msg("Session re-validation failed")
		r.clear(ctx)
		return Result{}
	}

	if err := r.store.Save(ctx, profile); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to cache session profile")
	}
	return Result{Authenticated: true, User: profile}
}

// Login authenticates with email and password. The cache is only written on success.
func (r *Resolver) Login(ctx context.Context, email, password string) LoginResult {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return LoginResult{Message: MsgMissingCredentials}
	}

	profile, err := r.remote.Login(ctx, email, password)
	if err == nil {
		err = profile.Validate()
	}
	if err != nil {
		r.logger.Info().Err(err).Str("email", email).Msg("Login failed")
		return LoginResult{Message: messageFor(err, MsgLoginFailed)}
	}

	if err := r.store.Save(ctx, profile); err != nil {
		r.logger.Error().Err(err).Msg("Failed to cache session profile")
		return LoginResult{Message: MsgLoginFailed}
	}

	r.logger.Info().Str("user_id", profile.ID).Str("role", string(profile.Role)).Msg("User logged in")
	return LoginResult{Success: true, User: profile}
}

// Register creates an account of the given kind and caches the returned profile
func (r *Resolver) Register(ctx context.Context, kind string, payload any) LoginResult {
	profile, err := r.remote.Register(ctx, kind, payload)
	if err == nil {
		err = profile.Validate()
	}
	if err != nil {
		r.logger.Info().Err(err).Str("kind", kind).Msg("Registration failed")
		fallback := MsgRegisterFailed
		var sc statusCoder
		if errors.As(err, &sc) && sc.StatusCode() == http.StatusConflict {
			fallback = MsgEmailTaken
		}
		return LoginResult{Message: messageFor(err, fallback)}
	}

	if err := r.store.Save(ctx, profile); err != nil {
		r.logger.Error().Err(err).Msg("Failed to cache session profile")
		return LoginResult{Message: MsgRegisterFailed}
	}

	r.logger.Info().Str("user_id", profile.ID).Str("role", string(profile.Role)).Msg("User registered")
	return LoginResult{Success: true, User: profile}
}

// Refresh rotates the remote session. Success overwrites the cached profile,
// failure deletes it.
func (r *Resolver) Refresh(ctx context.Context) Result {
	profile, err := r.remote.Refresh(ctx)
	if err == nil {
		err = profile.Validate()
	}
	if err != nil {
		r.logger.Info().Err(err).Msg("Session refresh failed")
		r.clear(ctx)
		return Result{}
	}

	if err := r.store.Save(ctx, profile); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to cache refreshed profile")
	}
	return Result{Authenticated: true, User: profile}
}

// Logout invalidates the remote session on a best-effort basis and always
// clears the local cache.
func (r *Resolver) Logout(ctx context.Context) {
	if err := r.remote.Logout(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("Remote logout failed")
	}
	r.clear(ctx)
}

// Invalidate drops the local session without contacting the remote
func (r *Resolver) Invalidate(ctx context.Context) {
	r.clear(ctx)
}

func (r *Resolver) clear(ctx context.Context) {
	// Clearing must survive a cancelled request context
	if err := r.store.Clear(context.WithoutCancel(ctx)); err != nil {
		r.logger.Error().Err(err).Msg("Failed to clear cached session")
	}
}

func messageFor(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}
