package talent

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
)

var interviewersCmd = &cobra.Command{
	Use:   "interviewers",
	Short: "List the interviewer pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.InterviewerStore == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		interviewers, err := app.InterviewerStore.GetAllInterviewers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list interviewers: %w", err)
		}
		if len(interviewers) == 0 {
			fmt.Println("No interviewers found.")
			return nil
		}

		fmt.Printf("Interviewers (%d):\n", len(interviewers))
		for _, interviewer := range interviewers {
			fmt.Printf("  %s  %-20s %-14s %s\n",
				interviewer.ID.String()[:8], interviewer.Name, interviewer.Department,
				strings.Join(interviewer.Expertise, ", "))
		}
		return nil
	},
}
