package progression

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/internal/interviews/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <progression-id>",
	Short: "Delete a progression and clean up its calendar events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteProgressionHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		progressionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid progression id: %w", err)
		}

		err = app.DeleteProgressionHandler.Handle(cmd.Context(), commands.DeleteProgressionCommand{
			ProgressionID: progressionID,
		})
		if err != nil {
			return fmt.Errorf("failed to delete progression: %w", err)
		}

		fmt.Printf("Progression %s deleted\n", progressionID)
		return nil
	},
}
