// Package tui is the interactive page view: boxes rendered as markdown cards
// with inline editing, reordering and a two-step delete.
package tui

import (
	"context"

	"mondrian-cli/internal/page"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows sess full-screen until the user quits. The first load starts
// immediately.
func Run(ctx context.Context, sess *page.Session, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	applyColorProfilePreference()
	m := newAppModel(ctx, sess, opts)
	m.mdStyle = applyThemePreference(opts.Theme)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
