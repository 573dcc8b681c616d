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

// NewBatchesCmd creates the batches command group
func NewBatchesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Manage training batches",
	}

	cmd.AddCommand(newBatchesListCmd(app))
	cmd.AddCommand(newBatchesGetCmd(app))
	cmd.AddCommand(newBatchesCreateCmd(app))
	cmd.AddCommand(newBatchesDeleteCmd(app))
	cmd.AddCommand(newBatchesMemberCmd(app, "add-student", "Add a student to a batch"))
	cmd.AddCommand(newBatchesMemberCmd(app, "remove-student", "Remove a student from a batch"))
	cmd.AddCommand(newBatchesAssignTrainerCmd(app))
	return cmd
}

func newBatchesListCmd(app *App) *cobra.Command {
	var page, size int
	var status string

	cmd := &cobra.Command{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List batches",
		Annotations: gated(AnyRole),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runBatchesList(cmd.Context(), env.Client, cmd.OutOrStdout(), status, page, size)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (0-based)")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	cmd.Flags().StringVar(&status, "status", "", "Only batches with this status")
	return cmd
}

func runBatchesList(ctx context.Context, client *api.Client, out io.Writer, status string, page, size int) error {
	var (
		batches []api.Batch
		err     error
	)
	if status != "" {
		batches, err = client.ListBatchesByStatus(ctx, status)
	} else {
		batches, err = client.ListBatches(ctx, page, size)
	}
	if err != nil {
		return describeError("failed to list batches", err)
	}

	if len(batches) == 0 {
		fmt.Fprintln(out, "No batches found.")
		return nil
	}
	printBatches(out, batches)
	return nil
}

func printBatches(out io.Writer, batches []api.Batch) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tWEEKS")
	fmt.Fprintln(w, "──\t────\t──────\t─────")
	for _, b := range batches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", b.ID, b.Name, b.Status, b.DurationWeeks)
	}
	w.Flush()
}

func newBatchesGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "get <batch-id>",
		Short:       "Show a batch with its syllabus and trainers",
		Args:        cobra.ExactArgs(1),
		Annotations: gated(AnyRole),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			return runBatchesGet(cmd.Context(), env.Client, cmd.OutOrStdout(), args[0])
		},
	}
}

func runBatchesGet(ctx context.Context, client *api.Client, out io.Writer, id string) error {
	batch, err := client.GetBatch(ctx, id)
	if err != nil {
		return describeError("failed to load batch", err)
	}
	trainers, err := client.BatchTrainers(ctx, id)
	if err != nil {
		return describeError("failed to load batch trainers", err)
	}

	fmt.Fprintf(out, "%s (%s)\n", batch.Name, batch.ID)
	if batch.Description != "" {
		fmt.Fprintf(out, "  %s\n", batch.Description)
	}
	fmt.Fprintf(out, "  Status: %s\n", batch.Status)
	fmt.Fprintf(out, "  Duration: %d weeks\n", batch.DurationWeeks)

	if batch.Syllabus != nil {
		fmt.Fprintf(out, "\nSyllabus: %s\n", batch.Syllabus.Title)
		for i, topic := range batch.Syllabus.Topics {
			fmt.Fprintf(out, "  %d. %s\n", i+1, topic.Name)
		}
	}

	if len(trainers) > 0 {
		fmt.Fprintln(out, "\nTrainers:")
		for _, t := range trainers {
			fmt.Fprintf(out, "  - %s <%s>\n", t.Name, t.Email)
		}
	}
	return nil
}

func newBatchesCreateCmd(app *App) *cobra.Command {
	var batch api.Batch

	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Create a batch",
		Annotations: gated(string(models.RoleAdmin)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			created, err := env.Client.CreateBatch(cmd.Context(), batch)
			if err != nil {
				return describeError("failed to create batch", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created batch %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&batch.Name, "name", "", "Batch name")
	cmd.Flags().StringVar(&batch.Description, "description", "", "Batch description")
	cmd.Flags().IntVar(&batch.DurationWeeks, "weeks", 0, "Duration in weeks")
	cmd.Flags().StringVar(&batch.Status, "status", "", "Initial status")
	return cmd
}

func newBatchesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "delete <batch-id>",
		Short:       "Delete a batch",
		Args:        cobra.ExactArgs(1),
		Annotations: gated(string(models.RoleAdmin)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			if err := env.Client.DeleteBatch(cmd.Context(), args[0]); err != nil {
				return describeError("failed to delete batch", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted batch %s\n", args[0])
			return nil
		},
	}
}

func newBatchesMemberCmd(app *App, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:         use + " <batch-id> <student-id>",
		Short:       short,
		Args:        cobra.ExactArgs(2),
		Annotations: gated(string(models.RoleAdmin)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			batchID, studentID := args[0], args[1]

			if use == "add-student" {
				err = env.Client.AddStudentToBatch(cmd.Context(), batchID, studentID)
			} else {
				err = env.Client.RemoveStudentFromBatch(cmd.Context(), batchID, studentID)
			}
			if err != nil {
				return describeError("failed to update batch", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: student %s, batch %s\n", short, studentID, batchID)
			return nil
		},
	}
}

func newBatchesAssignTrainerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "assign-trainer <batch-id> <trainer-id>",
		Short:       "Assign a trainer to a batch",
		Args:        cobra.ExactArgs(2),
		Annotations: gated(string(models.RoleAdmin)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			if err := env.Client.AssignTrainer(cmd.Context(), args[1], args[0]); err != nil {
				return describeError("failed to assign trainer", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Assigned trainer %s to batch %s\n", args[1], args[0])
			return nil
		},
	}
}
