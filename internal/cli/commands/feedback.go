package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/models"
)

// NewFeedbackCmd creates the feedback command group
func NewFeedbackCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Give and review feedback",
	}

	cmd.AddCommand(newGiveTrainerFeedbackCmd(app))
	cmd.AddCommand(newGiveStudentFeedbackCmd(app))
	cmd.AddCommand(newFeedbackSummaryCmd(app))
	cmd.AddCommand(newTopTrainersCmd(app))
	return cmd
}

// give-trainer: a student rates a trainer
func newGiveTrainerFeedbackCmd(app *App) *cobra.Command {
	var req api.StudentFeedbackRequest

	cmd := &cobra.Command{
		Use:         "give-trainer",
		Short:       "Rate a trainer of one of your batches",
		Annotations: gated(string(models.RoleStudent)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runGiveTrainerFeedback(cmd.Context(), env, cmd.OutOrStdout(), req)
		},
	}

	cmd.Flags().StringVar(&req.TrainerID, "trainer", "", "Trainer ID")
	cmd.Flags().StringVar(&req.BatchID, "batch", "", "Batch ID")
	cmd.Flags().IntVar(&req.Rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "Comment")
	return cmd
}

func runGiveTrainerFeedback(ctx context.Context, env *Env, out io.Writer, req api.StudentFeedbackRequest) error {
	fb, err := env.Client.AddStudentFeedback(ctx, env.Profile.ID, req)
	if err != nil {
		return describeError("failed to submit feedback", err)
	}
	fmt.Fprintf(out, "✓ Feedback submitted (%s)\n", fb.ID)
	return nil
}

// give-student: a trainer rates a student
func newGiveStudentFeedbackCmd(app *App) *cobra.Command {
	var req api.TrainerFeedbackRequest

	cmd := &cobra.Command{
		Use:         "give-student",
		Short:       "Rate a student in one of your batches",
		Annotations: gated(string(models.RoleTrainer)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			fb, err := env.Client.AddTrainerFeedback(cmd.Context(), env.Profile.ID, req)
			if err != nil {
				return describeError("failed to submit feedback", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Feedback submitted (%s)\n", fb.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.StudentID, "student", "", "Student ID")
	cmd.Flags().StringVar(&req.BatchID, "batch", "", "Batch ID")
	cmd.Flags().IntVar(&req.Rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&req.Content, "content", "", "Feedback text")
	return cmd
}

func newFeedbackSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "summary <batch-id>",
		Short:       "Show the feedback summary of a batch",
		Args:        cobra.ExactArgs(1),
		Annotations: gated(string(models.RoleAdmin)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			s, err := env.Client.FeedbackSummaryForBatch(cmd.Context(), args[0])
			if err != nil {
				return describeError("failed to load feedback summary", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %s\n", s.BatchID)
			fmt.Fprintf(out, "  Trainer rating: %.2f (%d reviews)\n", s.AverageTrainerRating, s.StudentFeedbackCount)
			fmt.Fprintf(out, "  Student rating: %.2f (%d reviews)\n", s.AverageStudentRating, s.TrainerFeedbackCount)
			return nil
		},
	}
}

func newTopTrainersCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:         "top-trainers",
		Short:       "Rank trainers by average rating",
		Annotations: gated(AnyRole),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runTopTrainers(cmd.Context(), env.Client, cmd.OutOrStdout(), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "Number of trainers to show")
	return cmd
}

func runTopTrainers(ctx context.Context, client *api.Client, out io.Writer, limit int) error {
	top, err := client.TopTrainers(ctx, limit)
	if err != nil {
		return describeError("failed to load top trainers", err)
	}
	if len(top) == 0 {
		fmt.Fprintln(out, "No rated trainers yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tRATING\tREVIEWS")
	fmt.Fprintln(w, "─\t────\t──────\t───────")
	for i, t := range top {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\n", i+1, t.Name, t.AverageRating, t.FeedbackCount)
	}
	w.Flush()
	return nil
}
