package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/internal/interviews/application/commands"
)

var (
	shortlistTop    int
	shortlistRounds int
	shortlistPinned []string
)

var shortlistCmd = &cobra.Command{
	Use:   "shortlist <job-id>",
	Short: "Shortlist a job's top candidates and start their interviews",
	Long: `Rank a job's candidates by fit score, take the top K, and start an
interview progression for each. Round 1 is booked immediately for every
new progression; a candidate already in the pipeline for the job is
reused, never duplicated.

Examples:
  hiresync shortlist 6b1f... --top 3
  hiresync shortlist 6b1f... --top 5 --rounds 4
  hiresync shortlist 6b1f... --top 3 --pin <id>,<id>,<id>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ShortlistHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		jobID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}

		pinned := make([]uuid.UUID, 0, len(shortlistPinned))
		for _, raw := range shortlistPinned {
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := uuid.Parse(part)
				if err != nil {
					return fmt.Errorf("invalid pinned interviewer id %q: %w", part, err)
				}
				pinned = append(pinned, id)
			}
		}

		result, err := app.ShortlistHandler.Handle(cmd.Context(), commands.ShortlistCandidatesCommand{
			JobID:              jobID,
			TopK:               shortlistTop,
			RoundsTotal:        shortlistRounds,
			PinnedInterviewers: pinned,
		})
		if err != nil {
			return fmt.Errorf("failed to shortlist candidates: %w", err)
		}

		fmt.Printf("Shortlisted %d candidate(s) for %s\n", len(result.Ranked), result.JobRole)
		fmt.Printf("  rounds: %d", result.RoundsTotal)
		if result.Clamped {
			fmt.Printf(" (adjusted from %d)", shortlistRounds)
		}
		fmt.Println()
		for i, ranked := range result.Ranked {
			fmt.Printf("  %d. %s <%s> fit=%d\n", i+1, ranked.Name, ranked.Email, ranked.FitScore)
		}
		if len(result.Reused) > 0 {
			fmt.Printf("Reused %d existing progression(s)\n", len(result.Reused))
		}
		for _, booking := range result.Bookings {
			printBooking(&booking)
		}

		return nil
	},
}

func printBooking(b *commands.BookRoundResult) {
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
	case commands.OutcomeNoSlot:
		fmt.Printf("Round %d: no common slot found\n", b.RoundNumber)
	case commands.OutcomeBlocked:
		fmt.Printf("Round %d: progression is closed (%s)\n", b.RoundNumber, b.Reason)
	}
}

func init() {
	shortlistCmd.Flags().IntVarP(&shortlistTop, "top", "t", 3, "number of candidates to shortlist")
	shortlistCmd.Flags().IntVarP(&shortlistRounds, "rounds", "r", 3, "interview rounds per candidate (2-4)")
	shortlistCmd.Flags().StringSliceVar(&shortlistPinned, "pin", nil, "pinned interviewer ids, in round order")
	rootCmd.AddCommand(shortlistCmd)
}
