package feedback

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/internal/interviews/application/commands"
	"github.com/hiresync/hiresync/internal/interviews/domain"
)

var (
	submitRound   int
	submitRating  int
	submitVerdict string
	submitNotes   string
)

var submitCmd = &cobra.Command{
	Use:   "submit <progression-id>",
	Short: "Submit feedback for a round",
	Long: `Record the interviewer's decision on a round. A "yes" verdict on the
current round advances the candidate and books the next round; a "no"
verdict rejects them.

Examples:
  hiresync feedback submit 6b1f... --round 1 --verdict yes --rating 4
  hiresync feedback submit 6b1f... --round 2 --verdict no --rating 2 --notes "lacks system design depth"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SubmitFeedbackHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		progressionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid progression id: %w", err)
		}

		result, err := app.SubmitFeedbackHandler.Handle(cmd.Context(), commands.SubmitFeedbackCommand{
			ProgressionID: progressionID,
			RoundIndex:    submitRound - 1,
			Feedback:      submitNotes,
			Rating:        submitRating,
			Verdict:       domain.Verdict(submitVerdict),
		})
		if err != nil {
			return fmt.Errorf("failed to submit feedback: %w", err)
		}

		fmt.Printf("Feedback recorded for round %d\n", result.RoundNumber)
		fmt.Printf("  status: %s (%d round(s) completed)\n", result.Status, result.CompletedRounds)

		if result.Advanced {
			fmt.Printf("Candidate advanced to round %d\n", result.NextRoundIndex+1)
			if next := result.NextBooking; next != nil {
				switch next.Outcome {
				case commands.OutcomeBooked:
					fmt.Printf("  booked with %s at %s\n", next.InterviewerName, next.StartTime.Format("Mon, Jan 2 15:04"))
					fmt.Printf("  link: %s\n", next.MeetingLink)
				case commands.OutcomeNoSlot:
					fmt.Println("  no common slot found, book it manually")
				}
			} else {
				fmt.Println("  next round not booked, book it with: hiresync schedule book")
			}
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().IntVarP(&submitRound, "round", "r", 1, "round number the feedback is for (1-based)")
	submitCmd.Flags().IntVar(&submitRating, "rating", 3, "rating 1-5")
	submitCmd.Flags().StringVar(&submitVerdict, "verdict", "", "verdict: yes, no, or pending (required)")
	submitCmd.Flags().StringVar(&submitNotes, "notes", "", "free-form feedback")
	_ = submitCmd.MarkFlagRequired("verdict")
}
