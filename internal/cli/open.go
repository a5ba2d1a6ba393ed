package cli

import (
        "github.com/spf13/cobra"
)

func newOpenCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "open [page]",
                Short: "Open a page in the interactive TUI (default: the home page)",
                Args:  cobra.MaximumNArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        name := app.cfg.HomePage
                        if len(args) == 1 {
                                name = args[0]
                        }
                        return runTUI(cmd, app, name)
                },
        }
        return cmd
}
