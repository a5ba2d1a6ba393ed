package cli

import (
        "errors"
        "fmt"
        "strconv"
        "strings"

        "mondrian-cli/internal/page"

        "github.com/spf13/cobra"
)

func newBoxesCmd(app *App) *cobra.Command {
        cmd := &cobra.Command{
                Use:   "boxes",
                Short: "Box commands (add, edit, move, delete)",
        }
        cmd.AddCommand(newBoxesAddCmd(app))
        cmd.AddCommand(newBoxesEditCmd(app))
        cmd.AddCommand(newBoxesMoveCmd(app))
        cmd.AddCommand(newBoxesDeleteCmd(app))
        return cmd
}

func parseBoxID(s string) (int, error) {
        id, err := strconv.Atoi(strings.TrimSpace(s))
        if err != nil || id <= 0 {
                return 0, fmt.Errorf("invalid box id: %q", s)
        }
        return id, nil
}

// boxResult is the payload of box mutations: the affected box plus the page's
// boxes after the change.
func boxResult(s *page.Session, id int) map[string]any {
        out := map[string]any{"page": s.Snapshot()}
        if b, ok := s.Box(id); ok {
                out["box"] = b
        }
        if s.OutOfSync() {
                out["outOfSync"] = true
        }
        return map[string]any{"data": out}
}

func newBoxesAddCmd(app *App) *cobra.Command {
        var content string

        cmd := &cobra.Command{
                Use:   "add <page>",
                Short: "Add a box at the top of a page",
                Args:  cobra.ExactArgs(1),
                RunE: func(cmd *cobra.Command, args []string) error {
                        ctx, cancel := app.requestContext(cmd)
                        defer cancel()

                        s, err := app.loadSession(ctx, args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        b, err := s.AddBox(ctx)
                        if err != nil && b.ID == 0 {
                                return writeErr(cmd, err)
                        }
                        // A failed positions write still leaves the created box.
                        if cmd.Flags().Changed("content") {
                                _ = s.SetDraft(content)
                                if _, serr := s.Save(ctx); serr != nil {
                                        if err == nil {
                                                return writeErr(cmd, serr)
                                        }
                                        err = errors.Join(err, serr)
                                }
                        }
                        out := boxResult(s, b.ID)
                        if err != nil {
                                _ = writeOut(cmd, app, out)
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, out)
                },
        }

        cmd.Flags().StringVar(&content, "content", "", "Initial markdown content")
        return cmd
}

func newBoxesEditCmd(app *App) *cobra.Command {
        var content string

        cmd := &cobra.Command{
                Use:   "edit <page> <box-id>",
                Short: "Replace a box's content",
                Args:  cobra.ExactArgs(2),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id, err := parseBoxID(args[1])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        ctx, cancel := app.requestContext(cmd)
                        defer cancel()

                        s, err := app.loadSession(ctx, args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if err := s.Edit(id); err != nil {
                                return writeErr(cmd, errNotFound("box", args[1], err))
                        }
                        _ = s.SetDraft(content)
                        if _, err := s.Save(ctx); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, boxResult(s, id))
                },
        }

        cmd.Flags().StringVar(&content, "content", "", "New markdown content")
        _ = cmd.MarkFlagRequired("content")
        return cmd
}

func newBoxesMoveCmd(app *App) *cobra.Command {
        var to int

        cmd := &cobra.Command{
                Use:   "move <page> <box-id>",
                Short: "Move a box to a 1-based position (clamped) and renumber",
                Args:  cobra.ExactArgs(2),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id, err := parseBoxID(args[1])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        ctx, cancel := app.requestContext(cmd)
                        defer cancel()

                        s, err := app.loadSession(ctx, args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if _, ok := s.Box(id); !ok {
                                return writeErr(cmd, errNotFound("box", args[1], page.ErrBoxNotFound))
                        }
                        if err := s.Reposition(ctx, id, to); err != nil {
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, boxResult(s, id))
                },
        }

        cmd.Flags().IntVar(&to, "to", 1, "Target position (1 = top)")
        _ = cmd.MarkFlagRequired("to")
        return cmd
}

func newBoxesDeleteCmd(app *App) *cobra.Command {
        var yes bool

        cmd := &cobra.Command{
                Use:   "delete <page> <box-id>",
                Short: "Delete a box and renumber the rest",
                Args:  cobra.ExactArgs(2),
                RunE: func(cmd *cobra.Command, args []string) error {
                        id, err := parseBoxID(args[1])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if !yes {
                                return writeErr(cmd, errConfirmDelete)
                        }
                        ctx, cancel := app.requestContext(cmd)
                        defer cancel()

                        s, err := app.loadSession(ctx, args[0])
                        if err != nil {
                                return writeErr(cmd, err)
                        }
                        if _, ok := s.Box(id); !ok {
                                return writeErr(cmd, errNotFound("box", args[1], page.ErrBoxNotFound))
                        }
                        // --yes stands in for the second confirming request.
                        if _, err := s.Delete(ctx, id); err != nil {
                                return writeErr(cmd, err)
                        }
                        deleted, err := s.Delete(ctx, id)
                        if err != nil && !deleted {
                                return writeErr(cmd, err)
                        }
                        out := boxResult(s, id)
                        out["data"].(map[string]any)["deleted"] = id
                        if err != nil {
                                _ = writeOut(cmd, app, out)
                                return writeErr(cmd, err)
                        }
                        return writeOut(cmd, app, out)
                },
        }

        cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
        return cmd
}
