package progression

import (
	"github.com/spf13/cobra"
)

// Cmd is the progression command group
var Cmd = &cobra.Command{
	Use:   "progression",
	Short: "Inspect and manage interview progressions",
	Long:  `Show, list, and delete interview progressions, and view pipeline stats.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(statsCmd)
	Cmd.AddCommand(deleteCmd)
}
