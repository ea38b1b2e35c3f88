package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/legend-linker/internal/session"
)

func newSessionCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect saved sessions",
	}

	show := &cobra.Command{
		Use:   "show [file]",
		Short: "Print a summary of a session file",
		Long: `Print a summary of a session file. Without an argument the configured
session file in the work directory is read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.controller(false)
			if err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			if err := ctrl.LoadSession(path); err != nil {
				return err
			}
			return writeJSON(cmd, ctrl.Summary())
		},
	}

	links := &cobra.Command{
		Use:   "links [file]",
		Short: "Print the saved symbol links",
		Long: `Print the links file written alongside the session. Without an argument
symbol_links/links.json in the work directory is read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := session.LinksPath(a.cfg.WorkDir)
			if len(args) == 1 {
				path = args[0]
			}
			items, err := session.LoadLinks(path)
			if err != nil {
				return err
			}
			a.logger.Debug("links loaded", "path", path, "count", len(items))
			return writeJSON(cmd, items)
		},
	}

	cmd.AddCommand(show, links)
	return cmd
}
