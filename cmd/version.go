package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via ldflags at build time
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Shows the nbcomplete version",
	Long:  "Shows the nbcomplete version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("version:", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
