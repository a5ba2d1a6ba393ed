package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePane_PadsAndCuts(t *testing.T) {
	got := normalizePane("short\nthis line is far too long", 10, 3)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	for i, ln := range lines {
		assert.Equal(t, 10, xansi.StringWidth(ln), "line %d: %q", i, ln)
	}
	assert.True(t, strings.HasSuffix(lines[1], "…"), "expected ellipsis on cut line: %q", lines[1])
}

func TestScrollWindow_KeepsFocusVisible(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = string(rune('a' + i%26))
	}

	assert.Equal(t, lines[0], scrollWindow(lines, 10, 0, 3)[0], "focus at top should not scroll")

	got := scrollWindow(lines, 10, 20, 24)
	require.Len(t, got, 10)
	// The window starts a third of the way above the focus.
	assert.Equal(t, lines[20-10/3], got[0])

	got = scrollWindow(lines, 10, 28, 30)
	assert.Equal(t, lines[29], got[len(got)-1])

	assert.Len(t, scrollWindow(lines[:5], 10, 0, 5), 5)
}

func TestRenderMarkdown(t *testing.T) {
	assert.Empty(t, renderMarkdown("   ", 40, "dark"))

	got := renderMarkdown("# Title\n\nsome *body* text", 40, "light")
	plain := xansi.Strip(got)
	assert.Contains(t, plain, "Title")
	assert.Contains(t, plain, "body")
	assert.False(t, strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n"), "expected trimmed output: %q", got)
}

func TestMarkdownStyleConfig_DropsDocumentMargin(t *testing.T) {
	for _, style := range []string{"light", "dark"} {
		cfg := markdownStyleConfig(style)
		require.NotNil(t, cfg.Document.Margin, style)
		assert.Zero(t, *cfg.Document.Margin, style)
		assert.NotNil(t, cfg.Text.Color, style)
	}
}

func TestApplyThemePreference(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	assert.Equal(t, "light", applyThemePreference("light"))
	assert.Equal(t, "dark", applyThemePreference("dark"))

	t.Setenv("COLORFGBG", "0;15")
	assert.Equal(t, "light", applyThemePreference("auto"))
}
