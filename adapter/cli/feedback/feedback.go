package feedback

import (
	"github.com/spf13/cobra"
)

// Cmd is the feedback command group
var Cmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record interviewer feedback",
	Long:  `Submit interviewer decisions on completed rounds.`,
}

func init() {
	Cmd.AddCommand(submitCmd)
}
