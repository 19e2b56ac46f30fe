package main

import (
	"github.com/spf13/cobra"

	"go-analytics-pipeline/internal/metrics"
	"go-analytics-pipeline/internal/mockdata"
	"go-analytics-pipeline/internal/service"
)

func newMockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mock",
		Short: "Run the pipeline offline against generated data",
		Long: `mock generates the three reports locally, writes them to mock.output_dir
and writes the dashboard layout to mock.dashboard_dir. No cloud service is
contacted, so only gcp.project_id and gcp.dataset_id need to be set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			report := service.RunMock(cmd.Context(), cfg, mockdata.New(), metrics.New())
			if err := printJSON(cmd, report); err != nil {
				return err
			}
			if !report.Result.Succeeded() {
				return errFailed
			}
			return nil
		},
	}
}
