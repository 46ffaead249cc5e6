package cmd

import (
	"fmt"
	"time"

	"sfcatalog/catalog/pipeline"
	"sfcatalog/lib/osutil"
	"sfcatalog/lib/restyutil"
	"sfcatalog/lib/scrapers/objectref"
	"sfcatalog/lib/telemetry"

	"github.com/spf13/cobra"
)

var scrapeFresh bool

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeFresh, "fresh", false, "ignore any progress checkpoint and start over")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the configured object-reference doc sets into the catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := osutil.SignalContext()

		config := loadConfig()
		if len(config.Docs) == 0 {
			fatal("no doc sets configured", fmt.Errorf("config has an empty docs list"))
		}

		cache := openCache(config)
		defer pruneCache(ctx, cache)

		var debug restyutil.InstrumentOutput
		if config.Fetch.HttpDumpDir != "" {
			debug = restyutil.NewFilesystemOutput(config.Fetch.HttpDumpDir)
		}
		client := objectref.NewClient(objectref.ClientOptions{
			Sets:  config.Docs,
			Cache: cache,
			Debug: debug,
		})

		cat := openCatalog(config)
		telemetry.InstrumentPerfStats(ctx)

		summary, err := pipeline.Run(ctx, cat, pipeline.DocsSource{Client: client}, buildFilter(config), pipeline.Options{
			ChunkSize:       config.Fetch.ChunkSize,
			ChunkDelay:      time.Duration(config.Fetch.ChunkDelaySeconds) * time.Second,
			CheckpointEvery: config.Fetch.CheckpointEvery,
			Resume:          !scrapeFresh,
		})
		if err != nil {
			fatal("scrape run failed", err)
		}

		fmt.Printf(
			"planned %d, fetched %d, rejected %d, errored %d\n",
			summary.Planned, summary.Fetched, summary.Rejected, summary.Errored,
		)
	},
}
