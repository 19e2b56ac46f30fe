package main

import (
	"errors"

	"github.com/spf13/cobra"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/store"
)

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded process and dashboard runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.History.DBPath == "" {
				return apperror.Config("history.db_path", errors.New("is required to list runs"))
			}

			history, err := store.Open(cmd.Context(), cfg.History.DBPath)
			if err != nil {
				return err
			}
			defer history.Close()

			runs, err := history.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}
