package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/models"
)

// NewProgressCmd creates the progress command group
func NewProgressCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Track syllabus progress",
	}

	var update api.ProgressUpdate
	updateCmd := &cobra.Command{
		Use:         "update",
		Short:       "Record a student's progress on a syllabus topic",
		Annotations: gated(string(models.RoleTrainer)),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Env(cmd)
			if err != nil {
				return err
			}
			p, err := env.Client.UpdateProgress(cmd.Context(), env.Profile.ID, update)
			if err != nil {
				return describeError("failed to update progress", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Progress recorded: %s\n", p.Status)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&update.StudentID, "student", "", "Student ID")
	updateCmd.Flags().StringVar(&update.BatchID, "batch", "", "Batch ID")
	updateCmd.Flags().StringVar(&update.TopicID, "topic", "", "Syllabus topic ID")
	updateCmd.Flags().StringVar(&update.Status, "status", api.ProgressInProgress,
		fmt.Sprintf("One of %s, %s, %s", api.ProgressNotStarted, api.ProgressInProgress, api.ProgressCompleted))
	updateCmd.Flags().StringVar(&update.Feedback, "note", "", "Optional note for the student")

	cmd.AddCommand(updateCmd)
	return cmd
}
