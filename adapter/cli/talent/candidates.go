package talent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates <job-id>",
	Short: "List a job's candidates by fit score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CandidateStore == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		jobID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}

		candidates, err := app.CandidateStore.GetCandidatesByJob(cmd.Context(), jobID)
		if err != nil {
			return fmt.Errorf("failed to list candidates: %w", err)
		}
		if len(candidates) == 0 {
			fmt.Println("No candidates found.")
			return nil
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].FitScore > candidates[j].FitScore
		})

		fmt.Printf("Candidates (%d):\n", len(candidates))
		for _, candidate := range candidates {
			fmt.Printf("  %s  %-22s fit=%-3d %.1fy  %s\n",
				candidate.ID.String()[:8], candidate.Name, candidate.FitScore,
				candidate.ExperienceYears, strings.Join(candidate.Skills, ", "))
		}
		return nil
	},
}
