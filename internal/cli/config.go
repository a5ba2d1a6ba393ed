package cli

import (
        "strings"

        "mondrian-cli/internal/config"

        "github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "config",
                Short: "Inspect or initialize configuration",
        }
        cmd.AddCommand(newConfigShowCmd(app))
        cmd.AddCommand(newConfigInitCmd(app))
        return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "show",
                Short: "Show the resolved configuration (file, .env, environment, flags)",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        path := strings.TrimSpace(app.ConfigPath)
                        if path == "" {
                                p, err := config.ConfigPath()
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                path = p
                        }
                        return writeOut(cmd, app, map[string]any{"data": map[string]any{
                                "path":   path,
                                "config": app.cfg,
                        }})
                },
        }
        return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
        var path string

        cmd := &cobra.Command{
                Use:   "init",
                Short: "Write the resolved configuration to the config file",
                Args:  cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        // --config must name an existing file, so the target is a separate flag.
                        path = strings.TrimSpace(path)
                        if path == "" {
                                p, err := config.ConfigPath()
                                if err != nil {
                                        return writeErr(cmd, err)
                                }
                                path = p
                        }
                        if err := config.Save(path, app.cfg); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
                },
        }

        cmd.Flags().StringVar(&path, "path", "", "Where to write (default ~/.mondrian/config.yaml)")
        return cmd
}
