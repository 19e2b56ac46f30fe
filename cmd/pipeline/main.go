package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-analytics-pipeline/internal/config"
	"go-analytics-pipeline/internal/logger"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "pipeline",
		Short: "COVID-19 analytics pipeline",
		Long: `pipeline runs the warehouse report queries, publishes each result as a
JSON artifact and refreshes the analytics dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML settings file")

	root.AddCommand(
		newProcessCmd(),
		newUpdateDashboardCmd(),
		newMockCmd(),
		newServeCmd(),
		newRunsCmd(),
	)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the settings and configures the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Init("info")
		return nil, err
	}
	logger.Init(cfg.Log.Level)
	return cfg, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errFailed makes the process exit non-zero after a failure document has
// already been printed.
var errFailed = errors.New("run failed")
