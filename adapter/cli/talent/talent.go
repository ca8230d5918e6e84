package talent

import (
	"github.com/spf13/cobra"
)

// Cmd is the talent command group
var Cmd = &cobra.Command{
	Use:   "talent",
	Short: "Inspect jobs, candidates, and interviewers",
	Long:  `Browse the talent records the scheduling engine works with.`,
}

func init() {
	Cmd.AddCommand(candidatesCmd)
	Cmd.AddCommand(interviewersCmd)
}
