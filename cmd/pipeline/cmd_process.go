package main

import (
	"time"

	"github.com/spf13/cobra"

	"go-analytics-pipeline/internal/model"
	"go-analytics-pipeline/internal/service"
)

func newProcessCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run every report query and publish the results",
		Example: `  pipeline process
  pipeline process --local`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			result := func() model.PipelineResult {
				cfg, err := loadConfig()
				if err != nil {
					return model.PipelineFailure(time.Now(), err)
				}

				var opts []service.BuildOption
				if local {
					opts = append(opts, service.PublishLocally())
				}
				svc, err := service.Build(ctx, cfg, opts...)
				if err != nil {
					return model.PipelineFailure(time.Now(), err)
				}
				defer svc.Close()

				return svc.Process(ctx)
			}()

			if err := printJSON(cmd, result); err != nil {
				return err
			}
			if !result.Succeeded() {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Publish artifacts to storage.local_dir instead of the bucket")
	return cmd
}

func newUpdateDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-dashboard",
		Short: "Refresh the dashboard from the published artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			result := func() model.RefreshResult {
				cfg, err := loadConfig()
				if err != nil {
					return model.RefreshFailure(time.Now(), err)
				}
				svc, err := service.Build(ctx, cfg)
				if err != nil {
					return model.RefreshFailure(time.Now(), err)
				}
				defer svc.Close()

				return svc.UpdateDashboard(ctx)
			}()

			if err := printJSON(cmd, result); err != nil {
				return err
			}
			if !result.Succeeded() {
				return errFailed
			}
			return nil
		},
	}
}
