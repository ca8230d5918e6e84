package progression

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/internal/interviews/application/queries"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <progression-id>",
	Short: "Show a progression with all its rounds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetProgressionHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		progressionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid progression id: %w", err)
		}

		view, err := app.GetProgressionHandler.Handle(cmd.Context(), queries.GetProgressionQuery{
			ProgressionID: progressionID,
		})
		if err != nil {
			return fmt.Errorf("failed to load progression: %w", err)
		}

		if showJSON {
			out, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		printProgression(view)
		return nil
	},
}

func printProgression(view *queries.ProgressionView) {
	fmt.Printf("%s <%s> for %s\n", view.CandidateName, view.CandidateEmail, view.JobRole)
	fmt.Printf("  id:     %s\n", view.ID)
	fmt.Printf("  status: %s (%d/%d rounds completed)\n", view.Status, view.CompletedRounds, view.RoundsTotal)
	fmt.Println(strings.Repeat("-", 60))

	for _, round := range view.Rounds {
		marker := " "
		switch {
		case round.Decision != nil:
			marker = "x"
		case round.Booking != nil:
			marker = "o"
		}
		fmt.Printf("  [%s] round %d (%s) - %s, %s\n",
			marker, round.RoundNumber, round.RoundType, round.InterviewerName, round.Department)
		if round.Booking != nil {
			fmt.Printf("      %s - %s  %s\n",
				round.Booking.StartTime.Format("Mon, Jan 2 15:04"),
				round.Booking.EndTime.Format("15:04"),
				round.Booking.MeetingLink)
			if round.Booking.Degraded {
				fmt.Println("      (degraded booking)")
			}
		}
		if round.Rescheduled {
			reason := round.RescheduleReason
			if reason == "" {
				reason = "no reason given"
			}
			fmt.Printf("      rescheduled: %s\n", reason)
		}
		if round.Decision != nil {
			fmt.Printf("      verdict: %s (rating %d/5)\n", round.Decision.Verdict, round.Decision.Rating)
			if round.Decision.Feedback != "" {
				fmt.Printf("      notes: %s\n", round.Decision.Feedback)
			}
		}
	}
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}
