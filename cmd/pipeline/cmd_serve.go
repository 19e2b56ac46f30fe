package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go-analytics-pipeline/internal/server"
	"go-analytics-pipeline/pkg/utils"
)

func newServeCmd() *cobra.Command {
	var addr, dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local visualization page and mock artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.StaticAddr
			}
			if dir == "" {
				dir = cfg.Server.StaticDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.NewStaticServer(addr, dir)
			errCh := make(chan error, 1)
			go func() {
				slog.Info("static server listening", "addr", addr, "dir", dir, "index", server.IndexFile)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(cfg.Server.ShutdownTimeout, 10*time.Second))
			defer cancel()
			slog.Info("static server stopping")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.static_addr)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to serve (defaults to server.static_dir)")
	return cmd
}
