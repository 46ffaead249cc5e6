package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
)

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8420, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog directory read-only over HTTP for browsing.",
	Run: func(cmd *cobra.Command, args []string) {
		config := loadConfig()

		mux := http.NewServeMux()
		mux.Handle("GET /", http.FileServer(http.Dir(config.Output.Root)))

		slog.Info("serving catalog", "root", config.Output.Root, "port", servePort)
		err := http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", servePort), mux)
		if err != nil {
			fatal(fmt.Sprintf("failed to listen on port %d", servePort), err)
		}
	},
}
