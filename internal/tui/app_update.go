package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mondrian-cli/internal/page"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeEditor()
		m.input.Width = modalBodyWidth(m.width) - 4
		return m, nil

	case pageLoadedMsg:
		return m.applyLoad(msg)

	case opDoneMsg:
		return m.applyOp(msg)

	case tea.KeyMsg:
		switch m.modal {
		case modalEditBox:
			return m.updateEditBox(msg)
		case modalConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modalNewPage:
			return m.updateNewPage(msg)
		case modalGoTo:
			return m.updateGoTo(msg)
		case modalMoveTo:
			return m.updateMoveTo(msg)
		default:
			return m.updatePage(msg)
		}
	}
	return m, nil
}

func (m appModel) applyLoad(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.sess.ApplyLoad(msg.key, msg.page, msg.err) {
		return m, nil
	}
	// Loads discard box-scoped state; the page creation form survives.
	if m.modal != modalNewPage && m.modal != modalGoTo {
		m.closeModal()
	}
	m.syncSelection()
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Page %q not found", msg.key.Name), statusError)
		return m, nil
	}
	m.clearStatus()
	return m, nil
}

func (m appModel) applyOp(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.opSeq {
		return m, nil
	}
	m.busy = false
	if msg.load == nil && msg.sess.Key() != m.sess.Key() {
		m.log.Debug("discarding op for previous page", "op", msg.op, "seq", msg.seq)
		return m, nil
	}
	m.sess = msg.sess
	if msg.focus != 0 {
		m.selected = msg.focus
	}
	m.syncSelection()

	if msg.err != nil {
		m.log.Warn("op failed", "op", msg.op, "page", m.sess.Name(), "error", msg.err)
		m.setStatus(msg.err.Error(), statusError)
	} else {
		m.clearStatus()
	}

	var cmd tea.Cmd
	switch msg.op {
	case "add":
		if e := m.sess.Editing(); e != nil {
			m.openEditor(e.Content)
		}
	case "save":
		if m.sess.Editing() == nil {
			m.closeModal()
			m.setStatusIfClear("Saved")
		}
	case "delete":
		m.closeModal()
		m.setStatusIfClear("Deleted")
	case "move":
		if m.modal == modalMoveTo {
			m.closeModal()
		}
	case "create":
		if msg.load != nil {
			m.closeModal()
			cmd = m.loadCmd(*msg.load)
		}
	}

	if m.sess.OutOfSync() {
		hint := "Box positions may be out of sync with the server (r: reload)"
		if m.status != "" {
			hint = m.status + " · " + hint
		}
		m.setStatus(hint, statusError)
	}
	return m, cmd
}

func (m *appModel) setStatusIfClear(s string) {
	if m.status == "" {
		m.setStatus(s, statusInfo)
	}
}

// ready reports whether box actions may run: the page is loaded and no op is
// in flight (its result would replace the session).
func (m *appModel) ready() bool {
	if m.sess.State() != page.StateLoaded {
		m.setStatus(page.ErrNotLoaded.Error(), statusError)
		return false
	}
	if m.busy {
		m.setStatus(page.ErrBusy.Error(), statusInfo)
		return false
	}
	return true
}

func (m appModel) updatePage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.sess.DisarmDelete()
		m.clearStatus()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.busy {
			m.setStatus(page.ErrBusy.Error(), statusInfo)
			return m, nil
		}
		k := m.sess.Reload()
		m.setStatus("Reloading…", statusInfo)
		return m, m.loadCmd(k)

	case key.Matches(msg, m.keys.NewPage):
		// The op result replaces the session, form included.
		if m.busy {
			m.setStatus(page.ErrBusy.Error(), statusInfo)
			return m, nil
		}
		m.sess.OpenCreation()
		m.openInput(modalNewPage, "page name", "")
		return m, nil

	case key.Matches(msg, m.keys.GoTo):
		m.openInput(modalGoTo, "page name", m.sess.Name())
		return m, nil
	}

	if !m.ready() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Add):
		return m, m.runOp("add", func(ctx context.Context, s *page.Session) (int, *page.LoadKey, error) {
			b, err := s.AddBox(ctx)
			return b.ID, nil, err
		})

	case key.Matches(msg, m.keys.Edit):
		b, ok := m.sess.Box(m.selected)
		if !ok {
			return m, nil
		}
		if err := m.sess.Edit(b.ID); err != nil {
			m.setStatus(err.Error(), statusError)
			return m, nil
		}
		m.clearStatus()
		m.openEditor(b.Content)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.selected == 0 {
			return m, nil
		}
		// Arming is local: the first request never reaches the store.
		if _, err := m.sess.Delete(m.ctx, m.selected); err != nil {
			m.setStatus(err.Error(), statusError)
			return m, nil
		}
		m.modal = modalConfirmDelete
		m.confirmFocus = confirmFocusConfirm
		return m, nil

	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		id := m.selected
		if id == 0 {
			return m, nil
		}
		up := key.Matches(msg, m.keys.MoveUp)
		return m, m.runOp("move", func(ctx context.Context, s *page.Session) (int, *page.LoadKey, error) {
			if up {
				return id, nil, s.MoveUp(ctx, id)
			}
			return id, nil, s.MoveDown(ctx, id)
		})

	case key.Matches(msg, m.keys.MoveTo):
		b, ok := m.sess.Box(m.selected)
		if !ok {
			return m, nil
		}
		m.openInput(modalMoveTo, fmt.Sprintf("position 1-%d", len(m.sess.Boxes())), strconv.Itoa(b.Position))
		return m, nil
	}
	return m, nil
}

func (m appModel) updateEditBox(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		e := m.sess.Editing()
		if e == nil {
			m.closeModal()
			return m, nil
		}
		_ = m.sess.SetDraft(m.textarea.Value())
		id := e.BoxID
		return m, m.runOp("save", func(ctx context.Context, s *page.Session) (int, *page.LoadKey, error) {
			_, err := s.Save(ctx)
			return id, nil, err
		})

	case key.Matches(msg, m.keys.Cancel):
		if m.busy {
			// The save in flight decides whether the session survives.
			m.setStatus(page.ErrBusy.Error(), statusInfo)
			return m, nil
		}
		m.sess.Cancel()
		m.closeModal()
		m.clearStatus()
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := false
	switch msg.String() {
	case "d":
		confirm = true
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = m.confirmFocus.toggle()
		return m, nil
	case "enter":
		confirm = m.confirmFocus == confirmFocusConfirm
	}

	if !confirm {
		m.sess.DisarmDelete()
		m.closeModal()
		return m, nil
	}
	id := m.sess.PendingDelete()
	return m, m.runOp("delete", func(ctx context.Context, s *page.Session) (int, *page.LoadKey, error) {
		_, err := s.Delete(ctx, id)
		return 0, nil, err
	})
}

func (m appModel) updateNewPage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.sess.CancelCreation()
		m.closeModal()
		return m, nil
	case "enter":
		m.sess.SetCreationDraft(m.input.Value())
		return m, m.runOp("create", func(ctx context.Context, s *page.Session) (int, *page.LoadKey, error) {
			k, ok := s.SubmitCreation(ctx)
			if !ok {
				return 0, nil, nil
			}
			return 0, &k, nil
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.sess.SetCreationDraft(m.input.Value())
	return m, cmd
}

func (m appModel) updateGoTo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.closeModal()
		return m, nil
	case "enter":
		name := strings.Trim(strings.TrimSpace(m.input.Value()), "/")
		if name == "" {
			return m, nil
		}
		if m.busy {
			m.setStatus(page.ErrBusy.Error(), statusInfo)
			return m, nil
		}
		m.closeModal()
		m.selected = 0
		k := m.sess.Navigate(name)
		m.clearStatus()
		return m, m.loadCmd(k)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateMoveTo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.closeModal()
		return m, nil
	case "enter":
		pos, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.setStatus("Position must be a number", statusError)
			return m, nil
		}
		id := m.selected
		return m, m.runOp("move", func(ctx context.Context, s *page.Session) (int, *page.LoadKey, error) {
			return id, nil, s.Reposition(ctx, id, pos)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
