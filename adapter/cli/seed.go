package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/internal/talent/infrastructure/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load jobs, candidates, and interviewers from a YAML file",
	Long: `Load talent data from a YAML seed file. Entries without an id get a
generated one; entries with an id are upserted, so re-running a seed is
safe.

Example:
  hiresync seed testdata/pipeline.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.JobStore == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		file, err := seed.Load(args[0])
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}

		err = seed.Apply(cmd.Context(), file, seed.Stores{
			Jobs:         app.JobStore,
			Candidates:   app.CandidateStore,
			Interviewers: app.InterviewerStore,
		})
		if err != nil {
			return fmt.Errorf("failed to apply seed file: %w", err)
		}

		fmt.Printf("Seeded %d job(s), %d candidate(s), %d interviewer(s)\n",
			len(file.Jobs), len(file.Candidates), len(file.Interviewers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
