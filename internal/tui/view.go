package tui

import (
	"fmt"
	"strings"

	"mondrian-cli/internal/model"
	"mondrian-cli/internal/page"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	w, h := m.width, m.height
	if w <= 0 || h <= 0 {
		return ""
	}

	header := normalizePane(m.viewHeader(), w, 1)
	footer := normalizePane(m.viewFooter(), w, 2)
	bodyH := h - 3
	if bodyH < 1 {
		bodyH = 1
	}

	var body string
	switch m.modal {
	case modalNewPage, modalGoTo, modalMoveTo, modalConfirmDelete:
		body = lipgloss.Place(w, bodyH, lipgloss.Center, lipgloss.Center, m.viewModal())
	default:
		body = m.viewBody(w, bodyH)
	}
	return strings.Join([]string{header, normalizePane(body, w, bodyH), footer}, "\n")
}

func (m appModel) viewHeader() string {
	title := styleTitle().Render(m.sess.Name())
	var meta string
	switch m.sess.State() {
	case page.StateLoaded:
		n := len(m.sess.Boxes())
		meta = fmt.Sprintf("%d box", n)
		if n != 1 {
			meta += "es"
		}
	default:
		meta = m.sess.State().String()
	}
	if m.busy {
		meta += " · saving…"
	}
	return title + " " + styleMuted().Render(meta)
}

func (m appModel) viewFooter() string {
	status := ""
	switch {
	case m.status == "":
	case m.statusKind == statusError:
		status = styleError().Render(m.status)
	default:
		status = lipgloss.NewStyle().Foreground(colorChromeMutedFg).Render(m.status)
	}
	return status + "\n" + styleMuted().Render(m.helpLine())
}

func (m appModel) helpLine() string {
	var bindings []key.Binding
	switch m.modal {
	case modalEditBox:
		bindings = []key.Binding{m.keys.Save, m.keys.Cancel}
	case modalNone:
		bindings = m.keys.pageHelp()
		if m.sess.State() != page.StateLoaded {
			bindings = []key.Binding{m.keys.NewPage, m.keys.GoTo, m.keys.Reload, m.keys.Quit}
		}
	default:
		return "enter: confirm   esc: cancel"
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "   ")
}

func (m appModel) viewBody(w, h int) string {
	switch m.sess.State() {
	case page.StateLoading:
		return styleMuted().Render("Loading " + m.sess.Name() + "…")
	case page.StateNotFound:
		return strings.Join([]string{
			fmt.Sprintf("Page %q does not exist.", m.sess.Name()),
			"",
			styleMuted().Render("n: create a page   g: go to another page   r: retry"),
		}, "\n")
	}

	boxes := m.sess.Boxes()
	if len(boxes) == 0 {
		return styleMuted().Render("This page is empty. a: add a box")
	}

	var lines []string
	focusStart, focusEnd := 0, 0
	for _, b := range boxes {
		card := m.renderBox(b, w)
		if b.ID == m.selected {
			focusStart = len(lines)
			focusEnd = focusStart + lipgloss.Height(card)
		}
		lines = append(lines, strings.Split(card, "\n")...)
	}
	return strings.Join(scrollWindow(lines, h, focusStart, focusEnd), "\n")
}

func (m appModel) renderBox(b model.Box, w int) string {
	innerW := w - 4
	if innerW < 10 {
		innerW = 10
	}

	border := colorCardBorder
	switch {
	case m.sess.PendingDelete() == b.ID:
		border = colorDangerBorder
	case b.ID == m.selected:
		border = colorSelectedBorder
	}

	label := styleMuted().Render(fmt.Sprintf("#%d", b.Position))

	var content string
	if e := m.sess.Editing(); e != nil && e.BoxID == b.ID && m.modal == modalEditBox {
		content = m.textarea.View()
	} else {
		content = m.renderContent(b.Content, innerW)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(w - 2).
		Render(label + "\n" + content)
}

func (m appModel) renderContent(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return styleMuted().Render("(empty)")
	}
	if m.opts.Markdown {
		return renderMarkdown(content, width, m.mdStyle)
	}
	return lipgloss.NewStyle().Width(width).Render(content)
}

func (m appModel) viewModal() string {
	bodyW := modalBodyWidth(m.width)
	switch m.modal {
	case modalConfirmDelete:
		b, _ := m.sess.Box(m.sess.PendingDelete())
		preview := strings.TrimSpace(strings.SplitN(strings.TrimSpace(b.Content), "\n", 2)[0])
		if preview == "" {
			preview = "(empty)"
		}
		body := fmt.Sprintf("Delete box #%d?\n%s", b.Position, styleMuted().Render(preview))
		return renderConfirmModal(m.width, "Delete box", body, "Delete", "Cancel", m.confirmFocus)

	case modalNewPage:
		parts := []string{renderInputLine(bodyW-2, m.input.View())}
		if msg := m.sess.Creation.ErrorMsg(); msg != "" {
			parts = append(parts, "", styleError().Render(msg))
		}
		parts = append(parts, "", styleMuted().Render("enter: create   esc: cancel"))
		return renderModalBox(m.width, "New page", strings.Join(parts, "\n"))

	case modalGoTo:
		return renderModalBox(m.width, "Go to page", strings.Join([]string{
			renderInputLine(bodyW-2, m.input.View()),
			"",
			styleMuted().Render("enter: open   esc: cancel"),
		}, "\n"))

	case modalMoveTo:
		return renderModalBox(m.width, "Move box to position", strings.Join([]string{
			renderInputLine(bodyW-2, m.input.View()),
			"",
			styleMuted().Render(fmt.Sprintf("1 = top, %d = bottom   enter: move   esc: cancel", len(m.sess.Boxes()))),
		}, "\n"))
	}
	return ""
}
