package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/qntx-core/display"
	"github.com/teranos/qntx-core/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show qntx version information",
		Long:  `Display version, build time, commit hash, sync protocol and platform information for the qntx binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()

			if display.ShouldOutputJSON(cmd) {
				return display.OutputJSON(cmd.OutOrStdout(), info)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, info.String())
			fmt.Fprintf(w, "Platform: %s\n", info.Platform)
			fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
}
