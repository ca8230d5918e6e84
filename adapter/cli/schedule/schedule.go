package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "Book, reschedule, and cancel interview rounds",
	Long:  `Manage the calendar bookings of a progression's interview rounds.`,
}

func init() {
	Cmd.AddCommand(bookCmd)
	Cmd.AddCommand(rescheduleCmd)
	Cmd.AddCommand(cancelCmd)
}
