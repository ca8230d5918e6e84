package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/internal/interviews/application/commands"
	"github.com/hiresync/hiresync/internal/interviews/application/queries"
)

var (
	bookRound int
	bookAt    string
)

var bookCmd = &cobra.Command{
	Use:   "book <progression-id>",
	Short: "Book the next round of a progression",
	Long: `Book a calendar slot for a progression's round. Without --at the
engine searches the interviewer's and candidate's calendars for the
earliest common slot; with --at it books the given time directly.

Examples:
  hiresync schedule book 6b1f...
  hiresync schedule book 6b1f... --round 2
  hiresync schedule book 6b1f... --at "2026-09-03T14:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.BookRoundHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		progressionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid progression id: %w", err)
		}

		roundIndex := bookRound - 1
		if bookRound == 0 {
			// Default to the progression's current round.
			view, err := app.GetProgressionHandler.Handle(cmd.Context(), queries.GetProgressionQuery{ProgressionID: progressionID})
			if err != nil {
				return fmt.Errorf("failed to load progression: %w", err)
			}
			roundIndex = view.NextRoundIndex
		}

		bookCommand := commands.BookRoundCommand{
			ProgressionID: progressionID,
			RoundIndex:    roundIndex,
		}
		if bookAt != "" {
			parsed, err := parseLocalTime(bookAt)
			if err != nil {
				return err
			}
			bookCommand.PreferredTime = &parsed
		}

		result, err := app.BookRoundHandler.Handle(cmd.Context(), bookCommand)
		if err != nil {
			return fmt.Errorf("failed to book round: %w", err)
		}

		printResult(result)
		return nil
	},
}

func parseLocalTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339 or YYYY-MM-DDTHH:MM)", raw)
}

func printResult(b *commands.BookRoundResult) {
	switch b.Outcome {
	case commands.OutcomeBooked:
		fmt.Printf("Round %d (%s) booked with %s\n", b.RoundNumber, b.RoundType, b.InterviewerName)
		fmt.Printf("  when: %s - %s\n", b.StartTime.Format("Mon, Jan 2 15:04"), b.EndTime.Format("15:04 MST"))
		fmt.Printf("  link: %s\n", b.MeetingLink)
		if b.Degraded {
			fmt.Println("  note: calendar unavailable, meeting link generated locally")
		}
		if b.FallbackSlot {
			fmt.Println("  note: no common slot found, defaulted to next business day")
		}
	case commands.OutcomeAlreadyScheduled:
		fmt.Printf("Round %d is already scheduled at %s\n", b.RoundNumber, b.StartTime.Format("Mon, Jan 2 15:04"))
		fmt.Printf("  link: %s\n", b.MeetingLink)
	case commands.OutcomeNoSlot:
		fmt.Printf("Round %d: no common slot found in the search window\n", b.RoundNumber)
	case commands.OutcomeBlocked:
		fmt.Printf("Round %d: progression is closed (%s)\n", b.RoundNumber, b.Reason)
	}
}

func init() {
	bookCmd.Flags().IntVarP(&bookRound, "round", "r", 0, "round number to book (1-based, defaults to the current round)")
	bookCmd.Flags().StringVar(&bookAt, "at", "", "book this exact start time instead of searching")
}
