package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/cli/config"
	"github.com/skillbridge-dev/skillbridge/internal/cli/serverselect"
	"github.com/skillbridge-dev/skillbridge/internal/cli/userconfig"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Select the server to use for commands",
		Long: `Select the server to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ skillbridge select-server                               # Interactive selection
  $ skillbridge select-server http://localhost:8080/api/v1  # Select by URL
  $ skillbridge select-server production                    # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}

			cfg, err := config.LoadFromCurrentDir()
			if err != nil {
				return fmt.Errorf("failed to load config: %w\nRun 'skillbridge init <url>' to create a configuration file", err)
			}
			return runSelectServer(cfg, urlOrAlias, serverselect.PromptServerSelection, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runSelectServer(cfg *config.Config, urlOrAlias string, prompt serverselect.Prompter, out io.Writer) error {
	var (
		server *config.Server
		err    error
	)

	if urlOrAlias != "" {
		server, err = cfg.GetServerByURLOrAlias(urlOrAlias)
	} else {
		server, err = prompt(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Fprintf(out, "Selected server: %s (%s)\n", server.Alias, server.URL)
	return nil
}
