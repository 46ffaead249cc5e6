package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"sfcatalog/catalog"
	"sfcatalog/lib/configutil"
	"sfcatalog/lib/fetchcache"
	"sfcatalog/lib/scrapers/describe"
	"sfcatalog/lib/scrapers/objectref"
	"sfcatalog/lib/telemetry"

	"github.com/spf13/cobra"
)

var configPath string
var verbose bool

type OutputConfig struct {
	// Root is the catalog directory holding index.json, objects/ and
	// clouds/.
	Root    string `json:"root"`
	Version string `json:"version"`
}

type FilterConfig struct {
	ExcludeCustom   *bool    `json:"exclude_custom"`
	ExcludeSuffixes []string `json:"exclude_suffixes"`
}

type FetchConfig struct {
	ChunkSize         int    `json:"chunk_size"`
	ChunkDelaySeconds int    `json:"chunk_delay_seconds"`
	CheckpointEvery   int    `json:"checkpoint_every"`
	CacheDB           string `json:"cache_db"`
	CacheMaxAgeHours  int    `json:"cache_max_age_hours"`
	HttpDumpDir       string `json:"http_dump_dir"`
}

type DescribeConfig struct {
	describe.ClientOptions
	// Cloud files described objects under this cloud/module.
	Cloud string `json:"cloud"`
}

type Config struct {
	Output   OutputConfig        `json:"output"`
	Filter   FilterConfig        `json:"filter"`
	Fetch    FetchConfig         `json:"fetch"`
	Docs     []objectref.DocSet  `json:"docs"`
	Describe DescribeConfig      `json:"describe"`
}

var rootCmd = &cobra.Command{
	Use:   "sfcatalog",
	Short: "sfcatalog builds and maintains a browsable JSON catalog of Salesforce object definitions.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		_, err := telemetry.SetupFromEnv(cmd.Context(), "sfcatalog")
		if err != nil && !os.IsNotExist(err) {
			slog.Warn("telemetry setup failed", "err", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "catalog.json5", "path to the catalog configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

func loadConfig() Config {
	config, err := configutil.ReadConfig[Config](configPath)
	if err != nil {
		fatal(fmt.Sprintf("failed to read config %s", configPath), err)
	}
	if config.Output.Root == "" {
		config.Output.Root = "data"
	}
	return config
}

func openCatalog(config Config) *catalog.Catalog {
	cat, err := catalog.Open(config.Output.Root, config.Output.Version)
	if err != nil {
		fatal("failed to open catalog", err)
	}
	return cat
}

func buildFilter(config Config) catalog.Filter {
	filter := catalog.DefaultFilter()
	if config.Filter.ExcludeCustom != nil {
		filter.ExcludeCustom = *config.Filter.ExcludeCustom
	}
	if config.Filter.ExcludeSuffixes != nil {
		filter.ExcludedSuffixes = config.Filter.ExcludeSuffixes
	}
	return filter
}

func openCache(config Config) *fetchcache.Cache {
	if config.Fetch.CacheDB == "" {
		return nil
	}
	maxAge := time.Duration(config.Fetch.CacheMaxAgeHours) * time.Hour
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	cache, err := fetchcache.Open(config.Fetch.CacheDB, maxAge)
	if err != nil {
		fatal("failed to open fetch cache", err)
	}
	return cache
}

func pruneCache(ctx context.Context, cache *fetchcache.Cache) {
	if cache == nil {
		return
	}
	pruned, err := cache.Prune(ctx)
	if err != nil {
		slog.Warn("failed to prune fetch cache", "err", err)
	} else if pruned > 0 {
		slog.Info("pruned stale cache entries", "count", pruned)
	}
	cache.Close()
}
