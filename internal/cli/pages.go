package cli

import (
        "strings"

        "mondrian-cli/internal/page"

        "github.com/spf13/cobra"
)

func newPagesCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "pages",
                Short: "Page commands",
        }
        cmd.AddCommand(newPagesShowCmd(app))
        cmd.AddCommand(newPagesCreateCmd(app))
        return cmd
}

func newPagesShowCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "show <page>",
                Short: "Show a page with its boxes in position order",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        ctx, cancel := app.requestContext(cmd)
                        defer cancel()

                        s, err := app.loadSession(ctx, args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, map[string]any{"data": s.Snapshot()})
                },
        }
        return cmd
}

func newPagesCreateCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "create <name>",
                Short: "Create an empty page",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        ctx, cancel := app.requestContext(cmd)
                        defer cancel()

                        name := strings.TrimSpace(args[0])
                        s := page.NewSession(app.client, name, app.log)
                        s.OpenCreation()
                        s.SetCreationDraft(name)
                        key, ok := s.SubmitCreation(ctx)
                        if !ok {
                                return writeErr(cmd, createPageError{name: name, msg: s.Creation.ErrorMsg()})
                        }
                        if err := s.Load(ctx); err != nil {
                                return writeErr(cmd, errNotFound("page", key.Name, err))
                        }
                        app.log.Info("page created", "name", key.Name, "id", s.Page().ID)
                        return writeOut(cmd, app, map[string]any{"data": s.Snapshot()})
                },
        }
        return cmd
}
