package cmd

import (
	"fmt"
	"time"

	"sfcatalog/catalog/pipeline"
	"sfcatalog/lib/osutil"
	"sfcatalog/lib/scrapers/describe"
	"sfcatalog/lib/telemetry"

	"github.com/spf13/cobra"
)

var describeFresh bool

func init() {
	describeCmd.Flags().BoolVar(&describeFresh, "fresh", false, "ignore any progress checkpoint and start over")
	rootCmd.AddCommand(describeCmd)
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Enrich the catalog from a live org's describe API.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := osutil.SignalContext()

		config := loadConfig()
		if config.Describe.LoginURL == "" || config.Describe.Username == "" {
			fatal("describe source not configured",
				fmt.Errorf("config is missing describe.login_url or describe.username"))
		}

		client := describe.NewClient(config.Describe.ClientOptions)
		// fail fast on a dead session before planning anything
		err := client.Login(ctx)
		if err != nil {
			fatal("login to the describe API failed", err)
		}

		cloud := config.Describe.Cloud
		if cloud == "" {
			cloud = "Core Salesforce"
		}

		cat := openCatalog(config)
		telemetry.InstrumentPerfStats(ctx)

		summary, err := pipeline.Run(ctx, cat, pipeline.DescribeSource{Client: client, Cloud: cloud}, buildFilter(config), pipeline.Options{
			ChunkSize:       config.Fetch.ChunkSize,
			ChunkDelay:      time.Duration(config.Fetch.ChunkDelaySeconds) * time.Second,
			CheckpointEvery: config.Fetch.CheckpointEvery,
			Resume:          !describeFresh,
		})
		if err != nil {
			fatal("describe run failed", err)
		}

		fmt.Printf(
			"planned %d, fetched %d, rejected %d, errored %d\n",
			summary.Planned, summary.Fetched, summary.Rejected, summary.Errored,
		)
	},
}
