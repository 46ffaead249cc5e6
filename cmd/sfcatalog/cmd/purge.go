package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var purgeSuffixes []string
var purgeCustom bool

func init() {
	purgeCmd.Flags().StringSliceVar(&purgeSuffixes, "suffix", nil,
		"purge objects with this exact name suffix (repeatable; defaults to the configured exclusion suffixes)")
	purgeCmd.Flags().BoolVar(&purgeCustom, "custom", false, "also purge custom objects")
	rootCmd.AddCommand(purgeCmd)
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove excluded objects from the store and repair every index.",
	Long: `Remove excluded objects from the store and repair every index.

Matching is against the exclusion policy: exact, case-sensitive name
suffixes plus optionally the custom-object marker. Files are deleted
first, then the global index and all cloud indexes are rebuilt from the
store, so an interrupted purge is fixed by a plain rebuild.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()
		cat := openCatalog(config)

		filter := buildFilter(config)
		filter.ExcludeCustom = purgeCustom
		if len(purgeSuffixes) > 0 {
			filter.ExcludedSuffixes = purgeSuffixes
		}
		result, err := cat.Purge(func(name string) bool {
			return filter.Excludes(name)
		})
		if err != nil {
			fatal("purge failed", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Files deleted", "Index entries removed", "Cloud indexes adjusted"})
		t.AppendRow(table.Row{result.FilesDeleted, result.IndexEntriesRemoved, result.CloudIndexesAdjusted})
		t.Render()

		fmt.Println("purge complete")
	},
}
