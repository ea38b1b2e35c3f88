// Package cmd implements the legend-linker command line.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ironsheep/legend-linker/internal/config"
	"github.com/ironsheep/legend-linker/internal/detection"
	"github.com/ironsheep/legend-linker/internal/ocr"
	"github.com/ironsheep/legend-linker/internal/ocr/tesseract"
	"github.com/ironsheep/legend-linker/internal/workflow"
)

// BuildInfo is stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// app holds what the subcommands share once flags are parsed.
type app struct {
	info    BuildInfo
	loader  *config.Loader
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds a fresh command tree. Each call gets its own
// configuration loader, so tests can execute commands independently.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{info: info, loader: config.NewLoader()}

	root := &cobra.Command{
		Use:   "legend-linker",
		Short: "Link blueprint legend symbols to their text labels",
		Long: `legend-linker finds the symbols in a blueprint legend, reads the text
next to them and records which label belongs to which symbol.

It runs as an MCP server over stdin/stdout for interactive use, or as a
set of one-shot commands for scripting.

Examples:
  legend-linker serve
  legend-linker detect plan.png --legend 100,50,300,250
  legend-linker convert plan.pdf
  legend-linker export-icons --session work/session.json`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.GitCommit, info.BuildTime),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/legend-linker, /etc/legend-linker)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("work-dir", ".", "directory for legend, link and session files")

	_ = a.loader.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.loader.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = a.loader.BindPFlag("work_dir", pf.Lookup("work-dir"))

	root.AddCommand(
		newServeCommand(a),
		newDetectCommand(a),
		newConvertCommand(a),
		newSessionCommand(a),
		newExportCommand(a),
		newConfigCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setup loads the configuration and installs the logger. Logs go to
// stderr; stdout is reserved for command output and the MCP protocol.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(a.logger)
	if used := a.loader.ConfigFileUsed(); used != "" {
		a.logger.Debug("configuration loaded", "file", used)
	}
	return nil
}

// controller builds a workflow controller from the loaded configuration.
// When withOCR is set a Tesseract engine is created; the returned closer
// releases it.
func (a *app) controller(withOCR bool) (*workflow.Controller, func(), error) {
	closer := func() {}

	var recognizer *ocr.Recognizer
	if withOCR {
		engine, err := tesseract.New(a.cfg.OCR)
		if err != nil {
			return nil, closer, fmt.Errorf("starting tesseract: %w", err)
		}
		closer = func() {
			if err := engine.Close(); err != nil {
				a.logger.Warn("closing tesseract failed", "error", err)
			}
		}
		recognizer = ocr.NewRecognizer(engine, a.cfg.OCR, a.logger)
	}

	detector := detection.NewDetector(nil, a.cfg.Detection, a.logger)
	ctrl := workflow.New(workflow.Options{
		WorkDir:     a.cfg.WorkDir,
		SessionFile: a.cfg.SessionFile,
		IconsDir:    a.cfg.Export.IconsDir,
		Overlay:     a.cfg.Overlay,
	}, detector, recognizer, nil, a.logger)
	return ctrl, closer, nil
}
