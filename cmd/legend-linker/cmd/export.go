package cmd

import (
	"github.com/spf13/cobra"
)

type exportOutput struct {
	Icons []string `json:"icons"`
	Tasks []string `json:"tasks"`
}

func newExportCommand(a *app) *cobra.Command {
	var (
		sessionFile string
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "export-icons",
		Short: "Export linked symbols as icons and print their work items",
		Long: `Load a session, save one PNG per linked symbol into the icons directory
and generate a work item for each link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, err := a.controller(false)
			if err != nil {
				return err
			}
			if err := ctrl.LoadSession(sessionFile); err != nil {
				return err
			}
			icons, err := ctrl.ExportIcons()
			if err != nil {
				return err
			}
			out := exportOutput{Icons: icons, Tasks: ctrl.GenerateTasks()}
			if save {
				if err := ctrl.Save(); err != nil {
					return err
				}
			}
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&sessionFile, "session", "", "session file (default from session_file in the work directory)")
	cmd.Flags().BoolVar(&save, "save", false, "store the generated work items back in the session")
	cmd.Flags().String("icons-dir", "", "icons directory, relative to the work directory unless absolute")
	_ = a.loader.BindPFlag("export.icons_dir", cmd.Flags().Lookup("icons-dir"))
	return cmd
}
