package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/models"
)

// NewStudentsCmd creates the students command group
func NewStudentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Browse students",
	}

	var page, size int
	var skill string
	list := &cobra.Command{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List students",
		Annotations: gated(string(models.RoleAdmin)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			var students []api.Student
			if skill != "" {
				students, err = env.Client.StudentsBySkill(cmd.Context(), skill)
			} else {
				students, err = env.Client.ListStudents(cmd.Context(), page, size)
			}
			if err != nil {
				return describeError("failed to list students", err)
			}
			printStudents(cmd.OutOrStdout(), students)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 0, "Page number (0-based)")
	list.Flags().IntVar(&size, "size", 20, "Page size")
	list.Flags().StringVar(&skill, "skill", "", "Only students with this skill")

	get := &cobra.Command{
		Use:         "get <student-id>",
		Short:       "Show a student with batch history",
		Args:        cobra.ExactArgs(1),
		Annotations: gated(AnyRole),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runStudentGet(cmd.Context(), env.Client, cmd.OutOrStdout(), args[0])
		},
	}

	profile := &cobra.Command{
		Use:         "profile",
		Short:       "Show your student profile and batch recommendations",
		Annotations: gated(string(models.RoleStudent)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runStudentProfile(cmd.Context(), env, cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(list, get, profile)
	return cmd
}

func printStudents(out io.Writer, students []api.Student) {
	if len(students) == 0 {
		fmt.Fprintln(out, "No students found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tDEPARTMENT\tYEAR")
	fmt.Fprintln(w, "──\t────\t─────\t──────────\t────")
	for _, s := range students {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Name, s.Email, s.Department, s.Year)
	}
	w.Flush()
}

func printStudent(out io.Writer, s *api.Student) {
	fmt.Fprintf(out, "%s <%s> (%s)\n", s.Name, s.Email, s.ID)
	if s.Department != "" {
		fmt.Fprintf(out, "  Department: %s, year %d\n", s.Department, s.Year)
	}
	if s.CGPA > 0 {
		fmt.Fprintf(out, "  CGPA: %.2f\n", s.CGPA)
	}
	if s.GithubLink != "" {
		fmt.Fprintf(out, "  GitHub: %s\n", s.GithubLink)
	}
}

func runStudentGet(ctx context.Context, client *api.Client, out io.Writer, id string) error {
	student, err := client.GetStudent(ctx, id)
	if err != nil {
		return describeError("failed to load student", err)
	}
	history, err := client.BatchHistory(ctx, id)
	if err != nil {
		return describeError("failed to load batch history", err)
	}

	printStudent(out, student)
	if len(history) > 0 {
		fmt.Fprintln(out, "\nBatch history:")
		for _, h := range history {
			name := ""
			if h.Batch != nil {
				name = h.Batch.Name
			}
			fmt.Fprintf(out, "  - %s [%s] %s\n", name, h.Status, h.StartDate)
		}
	}
	return nil
}

func runStudentProfile(ctx context.Context, env *Env, out io.Writer) error {
	student, err := env.Client.CurrentStudentProfile(ctx)
	if err != nil {
		return describeError("failed to load profile", err)
	}
	printStudent(out, student)

	recs, err := env.Client.RecommendBatches(ctx, env.Profile.ID)
	if err != nil {
		return describeError("failed to load recommendations", err)
	}
	if len(recs) > 0 {
		fmt.Fprintln(out, "\nRecommended batches:")
		for _, r := range recs {
			fmt.Fprintf(out, "  - %s (score %.1f)", r.BatchName, r.TotalScore)
			if len(r.MatchReasons) > 0 {
				fmt.Fprintf(out, ": %s", strings.Join(r.MatchReasons, "; "))
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}

// NewTrainersCmd creates the trainers command group
func NewTrainersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainers",
		Short: "Browse trainers",
	}

	var page, size int
	list := &cobra.Command{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List trainers",
		Annotations: gated(string(models.RoleAdmin)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			trainers, err := env.Client.ListTrainers(cmd.Context(), page, size)
			if err != nil {
				return describeError("failed to list trainers", err)
			}
			if len(trainers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trainers found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSPECIALIZATION")
			fmt.Fprintln(w, "──\t────\t─────\t──────────────")
			for _, t := range trainers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Email, t.Specialization)
			}
			w.Flush()
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 0, "Page number (0-based)")
	list.Flags().IntVar(&size, "size", 20, "Page size")

	batches := &cobra.Command{
		Use:         "batches [trainer-id]",
		Short:       "List a trainer's batches (defaults to your own)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: gated(AnyRole),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			assigned, err := env.Client.TrainerBatches(cmd.Context(), profileID(env, args))
			if err != nil {
				return describeError("failed to list trainer batches", err)
			}
			if len(assigned) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batches found.")
				return nil
			}
			printBatches(cmd.OutOrStdout(), assigned)
			return nil
		},
	}

	students := &cobra.Command{
		Use:         "students [trainer-id]",
		Short:       "List the students a trainer teaches (defaults to your own)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: gated(AnyRole),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			taught, err := env.Client.TrainerStudents(cmd.Context(), profileID(env, args))
			if err != nil {
				return describeError("failed to list trainer students", err)
			}
			printStudents(cmd.OutOrStdout(), taught)
			return nil
		},
	}

	cmd.AddCommand(list, batches, students)
	return cmd
}
