package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/cli/auth"
	"github.com/skillbridge-dev/skillbridge/internal/cli/config"
	"github.com/skillbridge-dev/skillbridge/internal/cli/serverselect"
	"github.com/skillbridge-dev/skillbridge/internal/cli/userconfig"
	"github.com/skillbridge-dev/skillbridge/internal/logger"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
	"github.com/skillbridge-dev/skillbridge/internal/sessionstore"
)

const (
	// RoleAnnotation marks a command as gated. The value is a role name or AnyRole.
	RoleAnnotation = "skillbridge/role"
	// AnyRole admits any logged-in user
	AnyRole = "*"

	checkingNoticeDelay = 300 * time.Millisecond
)

// Env is everything a command needs to talk to the selected server
type Env struct {
	Server   *config.Server
	Client   *api.Client
	Resolver *session.Resolver
	Logger   zerolog.Logger

	// Profile is set once the role gate admits the command
	Profile *models.Profile
}

// App builds the Env lazily, once per process
type App struct {
	Load func(cmd *cobra.Command) (*Env, error)
	env  *Env
}

// NewApp returns an App that loads the project config from the current directory
func NewApp() *App {
	return &App{Load: LoadEnv}
}

// Env returns the environment, loading it on first use
func (a *App) Env(cmd *cobra.Command) (*Env, error) {
	if a.env != nil {
		return a.env, nil
	}
	env, err := a.Load(cmd)
	if err != nil {
		return nil, err
	}
	a.env = env
	return env, nil
}

func gated(role string) map[string]string {
	return map[string]string{RoleAnnotation: role}
}

// Authorize runs the role gate for commands carrying RoleAnnotation
func (a *App) Authorize(cmd *cobra.Command) error {
	role, ok := cmd.Annotations[RoleAnnotation]
	if !ok {
		return nil
	}
	env, err := a.Env(cmd)
	if err != nil {
		return err
	}

	required := models.Role("")
	if role != AnyRole {
		required = models.Role(role)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if f := cmd.Flag("timeout"); f != nil {
		if d, err := time.ParseDuration(f.Value.String()); err == nil && d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
	}

	check := session.NewGate(env.Resolver, required).Start(ctx)
	defer check.Cancel()

	// A cached profile settles at once; only a remote check shows the notice
	notice := time.NewTimer(checkingNoticeDelay)
	select {
	case <-check.Done():
		notice.Stop()
	case <-notice.C:
		fmt.Fprintln(cmd.ErrOrStderr(), "Checking session...")
	}

	state, err := check.Wait(ctx)
	switch state {
	case session.Authorized:
		env.Profile = check.User()
		return nil
	case session.Checking:
		return fmt.Errorf("session check cancelled: %w", err)
	}

	// A cached profile after an Unauthorized verdict means the role is wrong
	if cached, err := env.Resolver.Store().Load(ctx); err == nil && cached != nil {
		return fmt.Errorf("'%s' requires the %s role (logged in as %s with role %s)",
			cmd.CommandPath(), required, cached.Email, cached.Role)
	}
	return fmt.Errorf("not logged in to %s. Please run 'skillbridge login' first", env.Server.Alias)
}

// profileCachePath keeps one profile cache per configured server
func profileCachePath(server *config.Server) (string, error) {
	dir, err := userconfig.GetConfigDir()
	if err != nil {
		return "", err
	}
	return sessionstore.ServerPath(dir, server.Alias, server.URL), nil
}

// LoadEnv resolves the server from skillbridge.yaml and wires the API client,
// keyring credentials and profile cache for it
func LoadEnv(cmd *cobra.Command) (*Env, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'skillbridge init <url>' to create a configuration file", err)
	}

	alias := ""
	if f := cmd.Flag("server"); f != nil {
		alias = f.Value.String()
	}
	server, err := serverselect.ResolveServer(cfg, alias, nil)
	if err != nil {
		return nil, err
	}
	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit %s and add a valid URL", config.ConfigFileName)
	}

	level := "warn"
	if f := cmd.Flag("verbose"); f != nil && f.Value.String() == "true" {
		level = "debug"
	}
	log := logger.New(cmd.ErrOrStderr(), "console").Level(parseLevel(level))

	cachePath, err := profileCachePath(server)
	if err != nil {
		return nil, err
	}

	client := api.New(server.URL,
		api.WithCredentials(auth.NewKeyringCredentials(server.URL)),
		api.WithLogger(log.With().Str("component", "api").Logger()),
	)
	resolver := session.NewResolver(sessionstore.NewFileStore(cachePath), client, log.With().Str("component", "session").Logger())
	client.SetUnauthorizedHandler(resolver.Invalidate)

	return &Env{
		Server:   server,
		Client:   client,
		Resolver: resolver,
		Logger:   log,
	}, nil
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.WarnLevel
	}
	return l
}

// resolvePassword falls back to an environment variable, then to a hidden
// prompt when stdin is a terminal
func resolvePassword(password string, out io.Writer) (string, error) {
	if password == "" {
		password = os.Getenv("SKILLBRIDGE_PASSWORD")
	}
	if password != "" {
		return password, nil
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", errors.New("password is required in non-interactive mode (use --password flag or SKILLBRIDGE_PASSWORD env var)")
	}
	fmt.Fprint(out, "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out)
	return string(bytePassword), nil
}

// profileID returns the explicit id or the logged-in user's own
func profileID(env *Env, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if env.Profile != nil {
		return env.Profile.ID
	}
	return ""
}

// describeError turns backend errors into CLI messages
func describeError(action string, err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%s: session expired. Please run 'skillbridge login' again", action)
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.UserMessage() != "" {
		return fmt.Errorf("%s: %s", action, apiErr.UserMessage())
	}
	return fmt.Errorf("%s: %w", action, err)
}
