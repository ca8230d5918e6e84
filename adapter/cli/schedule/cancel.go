package schedule

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/internal/interviews/application/commands"
)

var (
	cancelRound  int
	cancelReason string
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <progression-id>",
	Short: "Cancel a round's booking",
	Long: `Remove a round's calendar event and clear its booking. The round can
be booked again later; the progression's status is not changed.

Examples:
  hiresync schedule cancel 6b1f... --round 2
  hiresync schedule cancel 6b1f... --round 2 --reason "candidate withdrew the date"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelRoundHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		progressionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid progression id: %w", err)
		}

		result, err := app.CancelRoundHandler.Handle(cmd.Context(), commands.CancelRoundCommand{
			ProgressionID: progressionID,
			RoundIndex:    cancelRound - 1,
			Reason:        cancelReason,
		})
		if err != nil {
			return fmt.Errorf("failed to cancel round: %w", err)
		}

		fmt.Printf("Round %d booking cancelled\n", result.RoundNumber)
		if !result.EventDeleted {
			fmt.Println("  note: the calendar event could not be removed, clean it up manually")
		}
		return nil
	},
}

func init() {
	cancelCmd.Flags().IntVarP(&cancelRound, "round", "r", 1, "round number to cancel (1-based)")
	cancelCmd.Flags().StringVar(&cancelReason, "reason", "", "why the booking is being cancelled")
}
