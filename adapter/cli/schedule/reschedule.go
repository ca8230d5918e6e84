package schedule

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/internal/interviews/application/commands"
)

var (
	rescheduleRound  int
	rescheduleAt     string
	rescheduleReason string
)

var rescheduleCmd = &cobra.Command{
	Use:   "reschedule <progression-id>",
	Short: "Move a booked round to a new time",
	Long: `Cancel a round's calendar event and book it again at the requested
time. The old event is removed best-effort; the round is marked as
rescheduled either way.

Examples:
  hiresync schedule reschedule 6b1f... --round 2 --at "2026-09-05T11:00"
  hiresync schedule reschedule 6b1f... --round 2 --at "2026-09-05T11:00" --reason "interviewer travel"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RescheduleRoundHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		progressionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid progression id: %w", err)
		}
		if rescheduleAt == "" {
			return fmt.Errorf("--at is required")
		}
		newTime, err := parseLocalTime(rescheduleAt)
		if err != nil {
			return err
		}

		result, err := app.RescheduleRoundHandler.Handle(cmd.Context(), commands.RescheduleRoundCommand{
			ProgressionID: progressionID,
			RoundIndex:    rescheduleRound - 1,
			NewTime:       newTime,
			Reason:        rescheduleReason,
		})
		if err != nil {
			return fmt.Errorf("failed to reschedule round: %w", err)
		}

		printResult(result)
		return nil
	},
}

func init() {
	rescheduleCmd.Flags().IntVarP(&rescheduleRound, "round", "r", 1, "round number to reschedule (1-based)")
	rescheduleCmd.Flags().StringVar(&rescheduleAt, "at", "", "new start time (required)")
	rescheduleCmd.Flags().StringVar(&rescheduleReason, "reason", "", "why the round is being moved")
	_ = rescheduleCmd.MarkFlagRequired("at")
}
