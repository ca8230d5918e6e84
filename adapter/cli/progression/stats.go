package progression

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/internal/interviews/application/queries"
)

var statsJob string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show pipeline statistics",
	Long: `Summarize the interview pipeline: progressions by status, completed
rounds, active and degraded bookings.

Examples:
  hiresync progression stats
  hiresync progression stats --job 6b1f...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TrackingStatsHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		query := queries.TrackingStatsQuery{}
		if statsJob != "" {
			jobID, err := uuid.Parse(statsJob)
			if err != nil {
				return fmt.Errorf("invalid job id: %w", err)
			}
			query.JobID = &jobID
		}

		stats, err := app.TrackingStatsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}

		fmt.Printf("Progressions: %d\n", stats.Total)
		for status, count := range stats.ByStatus {
			fmt.Printf("  %-12s %d\n", status, count)
		}
		fmt.Printf("Rounds completed:   %d\n", stats.RoundsCompleted)
		fmt.Printf("Active bookings:    %d\n", stats.ActiveBookings)
		fmt.Printf("Degraded bookings:  %d\n", stats.DegradedBookings)
		fmt.Printf("Rescheduled rounds: %d\n", stats.RescheduledRounds)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsJob, "job", "", "limit stats to one job")
}
