package progression

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hiresync/hiresync/adapter/cli"
	"github.com/hiresync/hiresync/internal/interviews/application/queries"
	"github.com/hiresync/hiresync/internal/interviews/domain"
)

var (
	listJob    string
	listStatus string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List progressions",
	Long: `List interview progressions, optionally filtered by job or status.

Examples:
  hiresync progression list
  hiresync progression list --job 6b1f...
  hiresync progression list --status in_progress`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListProgressionsHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		query := queries.ListProgressionsQuery{}
		if listJob != "" {
			jobID, err := uuid.Parse(listJob)
			if err != nil {
				return fmt.Errorf("invalid job id: %w", err)
			}
			query.JobID = &jobID
		}
		if listStatus != "" {
			status := domain.Status(listStatus)
			if !status.IsValid() {
				return fmt.Errorf("invalid status %q", listStatus)
			}
			query.Status = &status
		}

		views, err := app.ListProgressionsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list progressions: %w", err)
		}

		if len(views) == 0 {
			fmt.Println("No progressions found.")
			return nil
		}

		fmt.Printf("Progressions (%d):\n", len(views))
		fmt.Println(strings.Repeat("-", 60))
		for _, view := range views {
			fmt.Printf("  %s  %-22s %-12s %d/%d rounds\n",
				view.ID.String()[:8], view.CandidateName, view.Status,
				view.CompletedRounds, view.RoundsTotal)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listJob, "job", "", "filter by job id")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
}
