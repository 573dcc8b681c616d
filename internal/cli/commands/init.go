package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <url>",
		Short: "Add a SkillBridge server to skillbridge.yaml",
		Long: `Add a SkillBridge server to ./skillbridge.yaml, creating the file if needed.

Examples:
  $ skillbridge init http://localhost:8080/api/v1
  $ skillbridge init skillbridge.example.com     # https://skillbridge.example.com/api/v1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			return runInit(filepath.Join(currentDir, config.ConfigFileName), args[0], cmd.OutOrStdout())
		},
	}
}

func runInit(configPath, rawURL string, out io.Writer) error {
	serverURL, err := config.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	var cfg *config.Config
	isNewConfig := false

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintf(out, "Found existing %s\n", config.ConfigFileName)
	} else {
		cfg = &config.Config{}
		isNewConfig = true
	}

	server, added := cfg.AddServer(serverURL)
	if !added {
		fmt.Fprintf(out, "Server %s already exists in %s as %s\n", serverURL, config.ConfigFileName, server.Alias)
		return nil
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(out, "✓ Created ./%s with server %s (%s)\n", config.ConfigFileName, serverURL, server.Alias)
	} else {
		fmt.Fprintf(out, "✓ Added server %s (%s) to ./%s\n", serverURL, server.Alias, config.ConfigFileName)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Run 'skillbridge register student|trainer|admin' to create an account")
	fmt.Fprintln(out, "  2. Run 'skillbridge login' to authenticate")
	return nil
}
