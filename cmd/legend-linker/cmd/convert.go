package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/legend-linker/internal/pdf"
)

func newConvertCommand(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "convert <pdf>",
		Short: "Extract the first page of a PDF as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := outDir
			if dir == "" {
				dir = a.cfg.PDF.OutputDir
			}
			path, err := pdf.FirstPageImage(args[0], dir)
			if err != nil {
				return err
			}
			a.logger.Info("pdf converted", "pdf", args[0], "image", path)
			return writeJSON(cmd, map[string]string{"pdf": args[0], "image": path})
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default from pdf.output_dir)")
	return cmd
}
