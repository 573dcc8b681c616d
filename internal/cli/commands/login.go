package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/auth"
	"github.com/skillbridge-dev/skillbridge/internal/cli/userconfig"
	"github.com/skillbridge-dev/skillbridge/internal/models"
)

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a SkillBridge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}

			// Check for environment variables (useful for CI/CD)
			if email == "" {
				email = os.Getenv("SKILLBRIDGE_EMAIL")
			}
			if email == "" {
				email = userconfig.GetLastEmail(env.Server.URL)
			}
			if email == "" {
				return fmt.Errorf("email is required (use --email flag or SKILLBRIDGE_EMAIL env var)")
			}

			pw, err := resolvePassword(password, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := runLogin(cmd.Context(), env, cmd.OutOrStdout(), email, pw); err != nil {
				return err
			}
			if err := userconfig.SetLastEmail(env.Server.URL, email); err != nil {
				env.Logger.Warn().Err(err).Msg("Failed to remember login email")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set SKILLBRIDGE_EMAIL, defaults to the last one used)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set SKILLBRIDGE_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, env *Env, out io.Writer, email, password string) error {
	fmt.Fprintf(out, "Logging in to %s (%s)...\n", env.Server.Alias, env.Server.URL)

	result := env.Resolver.Login(ctx, email, password)
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Message)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	printProfile(out, result.User)
	return nil
}

func printProfile(out io.Writer, p *models.Profile) {
	fmt.Fprintf(out, "  User: %s (%s)\n", p.Name, p.Email)
	fmt.Fprintf(out, "  Role: %s\n", p.Role)
	if p.CollegeID != "" {
		fmt.Fprintf(out, "  College: %s\n", p.CollegeID)
	}
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the selected server",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runLogout(cmd.Context(), env, cmd.OutOrStdout())
		},
	}
}

func runLogout(ctx context.Context, env *Env, out io.Writer) error {
	env.Resolver.Logout(ctx)
	fmt.Fprintf(out, "✓ Logged out of %s\n", env.Server.Alias)
	return nil
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the logged-in user",
		Annotations: gated(AnyRole),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runWhoami(cmd.Context(), env, cmd.OutOrStdout())
		},
	}
}

func runWhoami(ctx context.Context, env *Env, out io.Writer) error {
	fmt.Fprintf(out, "Logged in to %s (%s)\n", env.Server.Alias, env.Server.URL)
	printProfile(out, env.Profile)

	tokens, err := env.Client.Credentials().LoadTokens(ctx)
	if err != nil {
		env.Logger.Debug().Err(err).Msg("Failed to load credentials")
		return nil
	}
	// Opaque tokens carry no expiry; only JWTs are reported
	if exp, err := auth.AccessTokenExpiry(tokens.Access); err == nil {
		if remaining := time.Until(exp); remaining > 0 {
			fmt.Fprintf(out, "  Access token expires: %s (in %s)\n", exp.Local().Format(time.RFC1123), remaining.Round(time.Minute))
		} else {
			fmt.Fprintln(out, "  Access token expired; it will be renewed on the next request or with 'skillbridge refresh'")
		}
	}
	return nil
}

// NewRefreshCmd creates the refresh command
func NewRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the session and reload the profile from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runRefresh(cmd.Context(), env, cmd.OutOrStdout())
		},
	}
}

func runRefresh(ctx context.Context, env *Env, out io.Writer) error {
	res := env.Resolver.Refresh(ctx)
	if !res.Authenticated {
		return fmt.Errorf("session expired. Please run 'skillbridge login' again")
	}
	fmt.Fprintln(out, "✓ Session refreshed")
	printProfile(out, res.User)
	return nil
}
