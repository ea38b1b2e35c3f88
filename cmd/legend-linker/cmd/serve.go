package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/legend-linker/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdin/stdout",
		Long: `Run the MCP (JSON-RPC 2.0) tool server. Requests are read one per line
from stdin and responses written to stdout. Configure it in your MCP
client as a stdio server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, closeOCR, err := a.controller(true)
			if err != nil {
				return err
			}
			defer closeOCR()

			srv := server.New(ctrl, server.Options{
				Version:      a.info.Version,
				PDFOutputDir: a.cfg.PDF.OutputDir,
				Logger:       a.logger,
			})
			a.logger.Info("server starting", "version", a.info.Version, "work_dir", a.cfg.WorkDir)

			runErr := srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())

			if path := a.cfg.Server.MetricsFile; path != "" {
				if err := srv.Metrics().WriteToTextfile(path); err != nil {
					a.logger.Error("writing metrics failed", "path", path, "error", err)
				} else {
					a.logger.Info("metrics written", "path", path)
				}
			}
			return runErr
		},
	}

	cmd.Flags().String("metrics-file", "", "write Prometheus metrics to this file on exit")
	_ = a.loader.BindPFlag("server.metrics_file", cmd.Flags().Lookup("metrics-file"))
	return cmd
}
