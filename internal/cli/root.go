package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/cli/commands"
)

var version = "dev" // Will be set during build

// NewRootCmd assembles the command tree. Commands annotated with a role are
// checked against the session before they run.
func NewRootCmd(version string, app *commands.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "skillbridge",
		Short: "SkillBridge - Training batches, students and trainers",
		Long: `SkillBridge CLI - Work with a SkillBridge server from the terminal.

Log in once per server; your profile is cached locally and tokens are kept
in the system keyring.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Authorize(cmd)
		},
	}

	rootCmd.PersistentFlags().String("server", "", "Server alias or URL to use")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "How long to wait for the session check")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "skillbridge version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewRefreshCmd(app))
	rootCmd.AddCommand(commands.NewRegisterCmd(app))
	rootCmd.AddCommand(commands.NewBatchesCmd(app))
	rootCmd.AddCommand(commands.NewStudentsCmd(app))
	rootCmd.AddCommand(commands.NewTrainersCmd(app))
	rootCmd.AddCommand(commands.NewCompaniesCmd(app))
	rootCmd.AddCommand(commands.NewCollegesCmd(app))
	rootCmd.AddCommand(commands.NewFeedbackCmd(app))
	rootCmd.AddCommand(commands.NewProgressCmd(app))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCmd(version, commands.NewApp())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
