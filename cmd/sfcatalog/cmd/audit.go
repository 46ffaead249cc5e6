package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var auditFix bool

func init() {
	auditCmd.Flags().BoolVar(&auditFix, "fix", false, "rebuild the indexes when drift is found")
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Cross-check the object store against the global index and cloud indexes.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()
		cat := openCatalog(config)

		report, err := cat.Audit()
		if err != nil {
			fatal("audit failed", err)
		}

		fmt.Printf(
			"%d stored objects, %d indexed objects, %d cloud indexes\n",
			report.StoredObjects, report.IndexedObjects, report.CloudIndexes,
		)
		if report.Clean() {
			fmt.Println("catalog is consistent")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Finding", "Name", "Detail", "Suggestion"})
		for _, finding := range report.Findings {
			t.AppendRow(table.Row{finding.Kind, finding.Name, finding.Detail, finding.Suggest})
		}
		t.Render()

		if !auditFix {
			fmt.Printf("%d findings; run with --fix to rebuild\n", len(report.Findings))
			os.Exit(1)
		}

		err = cat.Rebuild()
		if err != nil {
			fatal("rebuild failed", err)
		}
		fmt.Println("indexes rebuilt")
	},
}
