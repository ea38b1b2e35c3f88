package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/legend-linker/internal/ocr/tesseract"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "legend-linker %s\n", a.info.Version)
			_, _ = fmt.Fprintf(w, "  Build time: %s\n", a.info.BuildTime)
			_, _ = fmt.Fprintf(w, "  Git commit: %s\n", a.info.GitCommit)

			info := tesseract.Available(a.cfg.OCR)
			if info.Available {
				_, _ = fmt.Fprintf(w, "  Tesseract:  %s (%s)\n", info.Version, info.Language)
			} else {
				_, _ = fmt.Fprintf(w, "  Tesseract:  unavailable\n")
			}
			return nil
		},
	}
}
