package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/internal/availability/domain"
)

var (
	availabilityDuration int
	availabilityDays     int
	availabilityLimit    int
)

var availabilityCmd = &cobra.Command{
	Use:   "availability <email> [email...]",
	Short: "Find common free slots for a set of calendars",
	Long: `Intersect the availability of two or more calendars and print the
slots everyone can make within the search window.

Examples:
  hiresync availability ana@example.com sam@example.com
  hiresync availability ana@example.com sam@example.com -d 30 --days 14`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Resolver == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		now := time.Now().UTC()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		window := domain.Interval{
			Start: start,
			End:   start.AddDate(0, 0, availabilityDays),
		}
		duration := time.Duration(availabilityDuration) * time.Minute

		slots, err := app.Resolver.FindAllCommonSlots(cmd.Context(), args, duration, window)
		if err != nil {
			return fmt.Errorf("failed to resolve availability: %w", err)
		}

		if len(slots) == 0 {
			fmt.Println("No common slots found.")
			return nil
		}

		shown := len(slots)
		if availabilityLimit > 0 && shown > availabilityLimit {
			shown = availabilityLimit
		}
		fmt.Printf("Common slots (%d of %d):\n", shown, len(slots))
		for _, slot := range slots[:shown] {
			fmt.Printf("  %s - %s\n", slot.Start.Format("Mon, Jan 2 15:04"), slot.End.Format("15:04 MST"))
		}
		return nil
	},
}

func init() {
	availabilityCmd.Flags().IntVarP(&availabilityDuration, "duration", "d", 60, "slot duration in minutes")
	availabilityCmd.Flags().IntVar(&availabilityDays, "days", 7, "search window in days, starting tomorrow")
	availabilityCmd.Flags().IntVar(&availabilityLimit, "limit", 10, "maximum slots to print (0 for all)")
	rootCmd.AddCommand(availabilityCmd)
}
