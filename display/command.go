// Package display renders command results for the terminal: pterm tables and
// status lines for people, indented JSON for scripts.
package display

import (
	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether a command should emit JSON, honoring a
// local --json flag before the root's persistent one
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}

	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json")
	return globalFlag
}
