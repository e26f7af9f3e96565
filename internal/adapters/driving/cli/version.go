package cli

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the ledgerlens version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("ledgerlens %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
