package tui

import (
	"context"
	"log/slog"
	"time"

	"mondrian-cli/internal/model"
	"mondrian-cli/internal/page"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures the interactive page view.
type Options struct {
	// Theme is "light", "dark" or "auto"/"".
	Theme string
	// Markdown renders box content with glamour when true.
	Markdown bool
	// Timeout bounds each remote request; zero means no bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// appModel owns the session. Remote work runs in commands against a clone of
// it; the clone replaces the session when the command reports back.
type appModel struct {
	ctx  context.Context
	sess *page.Session
	opts Options
	log  *slog.Logger
	keys keyMap

	mdStyle string

	width  int
	height int

	// selected is the id of the highlighted box (0 when none).
	selected int

	modal        modalKind
	confirmFocus confirmModalFocus
	textarea     textarea.Model
	input        textinput.Model

	busy  bool
	opSeq int

	status     string
	statusKind statusKind
}

func newAppModel(ctx context.Context, sess *page.Session, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	m := appModel{
		ctx:     ctx,
		sess:    sess,
		opts:    opts,
		log:     log,
		keys:    defaultKeyMap(),
		mdStyle: "dark",
		width:   80,
		height:  24,
	}

	m.input = textinput.New()
	m.input.CharLimit = 200
	m.input.Width = 40

	m.textarea = textarea.New()
	m.textarea.Placeholder = "Write markdown…"
	m.textarea.CharLimit = 0
	m.textarea.ShowLineNumbers = false
	m.textarea.SetWidth(72)
	m.textarea.SetHeight(8)

	return m
}

func (m appModel) Init() tea.Cmd {
	return m.loadCmd(m.sess.Key())
}

func (m appModel) requestContext(requests int) (context.Context, context.CancelFunc) {
	if m.opts.Timeout <= 0 {
		return context.WithCancel(m.ctx)
	}
	return context.WithTimeout(m.ctx, time.Duration(requests)*m.opts.Timeout)
}

// loadCmd fetches the page for key. The session itself is untouched until the
// result is applied in Update.
func (m appModel) loadCmd(key page.LoadKey) tea.Cmd {
	store := m.sess.Store()
	ctx, cancel := m.requestContext(1)
	return func() tea.Msg {
		defer cancel()
		p, err := page.Fetch(ctx, store, key)
		return pageLoadedMsg{key: key, page: p, err: err}
	}
}

// runOp starts a remote mutation against a clone of the session. Only one op
// may be in flight; callers get nil (and a status message) while busy.
func (m *appModel) runOp(op string, fn func(ctx context.Context, s *page.Session) (int, *page.LoadKey, error)) tea.Cmd {
	if m.busy {
		m.setStatus(page.ErrBusy.Error(), statusInfo)
		return nil
	}
	m.busy = true
	m.opSeq++
	seq := m.opSeq
	work := m.sess.Clone()
	ctx, cancel := m.requestContext(2)
	m.log.Debug("op start", "op", op, "seq", seq, "page", work.Name())
	return func() tea.Msg {
		defer cancel()
		focus, load, err := fn(ctx, work)
		return opDoneMsg{seq: seq, op: op, sess: work, focus: focus, err: err, load: load}
	}
}

func (m *appModel) setStatus(s string, kind statusKind) {
	m.status = s
	m.statusKind = kind
}

func (m *appModel) clearStatus() {
	m.status = ""
	m.statusKind = statusInfo
}

func (m appModel) selectedIndex(boxes []model.Box) int {
	for i, b := range boxes {
		if b.ID == m.selected {
			return i
		}
	}
	return -1
}

// syncSelection keeps the selection on an existing box, preferring the edited
// one.
func (m *appModel) syncSelection() {
	boxes := m.sess.Boxes()
	if e := m.sess.Editing(); e != nil {
		m.selected = e.BoxID
		return
	}
	if m.selectedIndex(boxes) >= 0 {
		return
	}
	m.selected = 0
	if len(boxes) > 0 {
		m.selected = boxes[0].ID
	}
}

func (m *appModel) moveSelection(delta int) {
	boxes := m.sess.Boxes()
	if len(boxes) == 0 {
		return
	}
	i := m.selectedIndex(boxes)
	if i < 0 {
		i = 0
	} else {
		i += delta
	}
	if i < 0 {
		i = 0
	}
	if i >= len(boxes) {
		i = len(boxes) - 1
	}
	m.selected = boxes[i].ID
}

func (m *appModel) openEditor(content string) {
	m.modal = modalEditBox
	m.textarea.SetValue(content)
	m.textarea.CursorEnd()
	m.resizeEditor()
	m.textarea.Focus()
}

func (m *appModel) openInput(kind modalKind, placeholder, value string) {
	m.modal = kind
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Width = modalBodyWidth(m.width) - 4
	m.input.Focus()
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.textarea.Blur()
	m.input.Blur()
}

func (m *appModel) resizeEditor() {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	m.textarea.SetWidth(w)
	h := m.height / 3
	if h < 3 {
		h = 3
	}
	m.textarea.SetHeight(h)
}
