package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sketchpair/sketchpair/src/version"
)

// the version command (used by cobra)
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sketchpair",
	Long:  `Print the version number of sketchpair`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
