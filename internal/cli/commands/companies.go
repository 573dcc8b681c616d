package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/api"
)

// NewCompaniesCmd creates the companies command group
func NewCompaniesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "Browse hiring companies",
	}

	var page, size int
	var domain string
	list := &cobra.Command{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List companies",
		Annotations: gated(AnyRole),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			var companies []api.Company
			if domain != "" {
				companies, err = env.Client.CompaniesByDomain(cmd.Context(), domain)
			} else {
				companies, err = env.Client.ListCompanies(cmd.Context(), page, size)
			}
			if err != nil {
				return describeError("failed to list companies", err)
			}

			out := cmd.OutOrStdout()
			if len(companies) == 0 {
				fmt.Fprintln(out, "No companies found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDOMAIN\tHIRING")
			fmt.Fprintln(w, "──\t────\t──────\t──────")
			for _, c := range companies {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Domain, c.HiringType)
			}
			w.Flush()
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 0, "Page number (0-based)")
	list.Flags().IntVar(&size, "size", 20, "Page size")
	list.Flags().StringVar(&domain, "domain", "", "Only companies in this domain")

	cmd.AddCommand(list)
	return cmd
}

// NewCollegesCmd creates the colleges command group. Listing colleges needs
// no login since registration asks for a college id.
func NewCollegesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colleges",
		Short: "Browse registered colleges",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List colleges",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			colleges, err := env.Client.ListColleges(cmd.Context())
			if err != nil {
				return describeError("failed to list colleges", err)
			}

			out := cmd.OutOrStdout()
			if len(colleges) == 0 {
				fmt.Fprintln(out, "No colleges found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDOMAIN")
			fmt.Fprintln(w, "──\t────\t──────")
			for _, c := range colleges {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Domain)
			}
			w.Flush()
			return nil
		},
	})
	return cmd
}
