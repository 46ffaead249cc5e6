package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-derive the global index and all cloud indexes from the object store.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()
		cat := openCatalog(config)

		err := cat.Rebuild()
		if err != nil {
			fatal("rebuild failed", err)
		}

		idx := cat.Index()
		fmt.Printf("rebuilt index: %d objects across %d clouds\n", idx.TotalObjects, idx.TotalClouds)
	},
}
