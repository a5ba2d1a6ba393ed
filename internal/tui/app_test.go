package tui

import (
	"context"
	"strconv"
	"testing"

	"mondrian-cli/internal/api"
	"mondrian-cli/internal/apitest"
	"mondrian-cli/internal/model"
	"mondrian-cli/internal/page"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, contents ...string) (appModel, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	srv.SeedPage(t, "home", contents...)
	client, err := api.New(srv.URL)
	require.NoError(t, err)
	m := newAppModel(context.Background(), page.NewSession(client, "home", nil), Options{})
	m = run(t, m, m.Init())
	srv.ResetRequests()
	return m, srv
}

// run executes cmd and feeds page and op results back into the model until
// no further work is scheduled.
func run(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case pageLoadedMsg, opDoneMsg:
		default:
			return m
		}
		var mAny tea.Model
		mAny, cmd = m.Update(msg)
		m = mAny.(appModel)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends k and returns the model with the command it scheduled.
func press(m appModel, k string) (appModel, tea.Cmd) {
	mAny, cmd := m.Update(keyMsg(k))
	return mAny.(appModel), cmd
}

// pressRun sends k and runs whatever it scheduled.
func pressRun(t *testing.T, m appModel, k string) appModel {
	t.Helper()
	m, cmd := press(m, k)
	return run(t, m, cmd)
}

// typeText sends s one rune at a time. Input commands (cursor blink) are
// dropped.
func typeText(m appModel, s string) appModel {
	for _, r := range s {
		m, _ = press(m, string(r))
	}
	return m
}

func serverContents(t *testing.T, srv *apitest.Server, name string) []string {
	t.Helper()
	p, ok := srv.Page(t, name)
	require.True(t, ok, "page %q missing on server", name)
	out := make([]string, 0, len(p.Boxes))
	for i, b := range p.Boxes {
		require.Equal(t, i+1, b.Position, "server positions not contiguous: %+v", p.Boxes)
		out = append(out, b.Content)
	}
	return out
}

func sessionContents(m appModel) []string {
	boxes := m.sess.Boxes()
	out := make([]string, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, b.Content)
	}
	return out
}

func boxByContent(t *testing.T, m appModel, content string) model.Box {
	t.Helper()
	for _, b := range m.sess.Boxes() {
		if b.Content == content {
			return b
		}
	}
	require.FailNowf(t, "box missing", "no box with content %q", content)
	return model.Box{}
}

func TestInitialLoad_SelectsFirstBox(t *testing.T) {
	m, _ := newTestModel(t, "Alpha", "Beta")

	require.Equal(t, page.StateLoaded, m.sess.State())
	assert.Equal(t, boxByContent(t, m, "Alpha").ID, m.selected)
	v := m.View()
	assert.Contains(t, v, "Alpha")
	assert.Contains(t, v, "Beta")
}

func TestReload_StaleResultIsDiscarded(t *testing.T) {
	m, _ := newTestModel(t, "A")

	m, first := press(m, "r")
	m, second := press(m, "r")
	require.NotNil(t, first)
	require.NotNil(t, second)

	m = run(t, m, first)
	assert.Equal(t, page.StateLoading, m.sess.State(), "stale load applied")
	m = run(t, m, second)
	assert.Equal(t, page.StateLoaded, m.sess.State())
}

func TestEditSave_WritesOnlyTargetBox(t *testing.T) {
	m, srv := newTestModel(t, "A", "B")

	m = pressRun(t, m, "j")
	m = pressRun(t, m, "e")
	require.Equal(t, modalEditBox, m.modal)
	assert.Equal(t, "B", m.textarea.Value())

	m.textarea.SetValue("B2")
	m = pressRun(t, m, "ctrl+s")
	assert.Equal(t, modalNone, m.modal)
	assert.Nil(t, m.sess.Editing())
	assert.Equal(t, []string{"A", "B2"}, serverContents(t, srv, "home"))
	assert.Empty(t, srv.RequestsMatching("PUT", "/boxes"), "save should not rewrite positions")
}

func TestEditSave_FailureKeepsEditor(t *testing.T) {
	m, srv := newTestModel(t, "A")
	id := boxByContent(t, m, "A").ID
	srv.Fail("PUT", "/boxes/"+strconv.Itoa(id), 500)

	m = pressRun(t, m, "e")
	m.textarea.SetValue("changed")
	m = pressRun(t, m, "ctrl+s")

	assert.Equal(t, modalEditBox, m.modal)
	e := m.sess.Editing()
	require.NotNil(t, e)
	assert.Equal(t, "changed", e.Content)
	assert.Equal(t, statusError, m.statusKind)
	assert.NotEmpty(t, m.status)
	assert.Equal(t, []string{"A"}, sessionContents(m))
}

func TestEditCancel_LeavesContent(t *testing.T) {
	m, srv := newTestModel(t, "A")

	m = pressRun(t, m, "e")
	m.textarea.SetValue("discard me")
	m = pressRun(t, m, "esc")

	assert.Equal(t, modalNone, m.modal)
	assert.Nil(t, m.sess.Editing())
	assert.Equal(t, []string{"A"}, sessionContents(m))
	assert.Empty(t, srv.Requests(), "cancel should not touch the server")
}

func TestAddBox_PrependsAndOpensEditor(t *testing.T) {
	m, srv := newTestModel(t, "A", "B")

	m = pressRun(t, m, "a")
	require.Equal(t, modalEditBox, m.modal)
	boxes := m.sess.Boxes()
	require.Len(t, boxes, 3)
	assert.Empty(t, boxes[0].Content)
	assert.Equal(t, 1, boxes[0].Position)
	assert.Equal(t, boxes[0].ID, m.selected)
	assert.Equal(t, []string{"", "A", "B"}, serverContents(t, srv, "home"))
}

func TestDelete_NeedsSecondPress(t *testing.T) {
	m, srv := newTestModel(t, "A", "B", "C")
	m = pressRun(t, m, "j")
	target := boxByContent(t, m, "B").ID

	m = pressRun(t, m, "d")
	require.Equal(t, modalConfirmDelete, m.modal)
	assert.Equal(t, target, m.sess.PendingDelete())
	assert.Empty(t, srv.Requests(), "arming must not reach the server")

	m = pressRun(t, m, "d")
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, []string{"A", "C"}, serverContents(t, srv, "home"))
	_, ok := m.sess.Box(target)
	assert.False(t, ok, "deleted box still in session")
}

func TestDelete_EscDisarms(t *testing.T) {
	m, srv := newTestModel(t, "A")

	m = pressRun(t, m, "d")
	m = pressRun(t, m, "esc")
	assert.Equal(t, modalNone, m.modal)
	assert.Zero(t, m.sess.PendingDelete())

	// A fresh d only re-arms.
	m = pressRun(t, m, "d")
	assert.NotZero(t, m.sess.PendingDelete())
	for _, r := range srv.Requests() {
		assert.NotEqual(t, "DELETE", r.Method)
	}
}

func TestDelete_CancelButton(t *testing.T) {
	m, _ := newTestModel(t, "A")

	m = pressRun(t, m, "d")
	m = pressRun(t, m, "tab")
	require.Equal(t, confirmFocusCancel, m.confirmFocus)
	m = pressRun(t, m, "enter")
	assert.Equal(t, modalNone, m.modal)
	assert.Zero(t, m.sess.PendingDelete())
	assert.Len(t, m.sess.Boxes(), 1)
}

func TestMove_StepAndToPosition(t *testing.T) {
	m, srv := newTestModel(t, "A", "B", "C")

	m = pressRun(t, m, "J")
	assert.Equal(t, []string{"B", "A", "C"}, sessionContents(m))

	m = pressRun(t, m, "j")
	m = pressRun(t, m, "j")
	require.Equal(t, boxByContent(t, m, "C").ID, m.selected)
	m = pressRun(t, m, "m")
	require.Equal(t, modalMoveTo, m.modal)
	m.input.SetValue("1")
	m = pressRun(t, m, "enter")
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, []string{"C", "B", "A"}, serverContents(t, srv, "home"))
}

func TestMove_FailureRollsBack(t *testing.T) {
	m, srv := newTestModel(t, "A", "B")
	srv.Fail("PUT", "/boxes", 500)

	m = pressRun(t, m, "J")
	assert.Equal(t, []string{"A", "B"}, sessionContents(m))
	assert.Equal(t, statusError, m.statusKind)
}

func TestBusy_RefusesSecondOp(t *testing.T) {
	m, _ := newTestModel(t, "A", "B")

	m, first := press(m, "J")
	require.NotNil(t, first)
	require.True(t, m.busy)
	m, second := press(m, "K")
	assert.Nil(t, second)
	assert.Equal(t, page.ErrBusy.Error(), m.status)

	m = run(t, m, first)
	assert.False(t, m.busy)
	assert.Equal(t, []string{"B", "A"}, sessionContents(m))
}

func TestNewPage_ErrorThenSuccess(t *testing.T) {
	m, srv := newTestModel(t, "A")

	m = pressRun(t, m, "n")
	require.Equal(t, modalNewPage, m.modal)
	require.True(t, m.sess.Creation.Open())
	m.input.SetValue("home")
	m = pressRun(t, m, "enter")
	assert.Equal(t, modalNewPage, m.modal, "form stays open on error")
	assert.Equal(t, "Page already exists", m.sess.Creation.ErrorMsg())
	assert.Contains(t, m.View(), "Page already exists")

	m.input.SetValue("journal")
	m = pressRun(t, m, "enter")
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, "journal", m.sess.Name())
	assert.Equal(t, page.StateLoaded, m.sess.State())
	_, ok := srv.Page(t, "journal")
	assert.True(t, ok)
}

func TestNewPage_RefusedWhileOpInFlight(t *testing.T) {
	m, srv := newTestModel(t, "A", "B")

	m, move := press(m, "J")
	require.NotNil(t, move)
	m, cmd := press(m, "n")
	assert.Nil(t, cmd)
	assert.Equal(t, modalNone, m.modal)
	assert.False(t, m.sess.Creation.Open())
	assert.Equal(t, page.ErrBusy.Error(), m.status)

	m = run(t, m, move)
	require.False(t, m.busy)

	m = pressRun(t, m, "n")
	require.Equal(t, modalNewPage, m.modal)
	m = typeText(m, "journal")
	assert.Equal(t, "journal", m.sess.Creation.Draft())

	m = pressRun(t, m, "enter")
	assert.Equal(t, modalNone, m.modal)
	assert.Equal(t, "journal", m.sess.Name())
	assert.Equal(t, page.StateLoaded, m.sess.State())

	posts := srv.RequestsMatching("POST", "/pages")
	require.Len(t, posts, 1)
	assert.Contains(t, posts[0].Body, `"journal"`)
}

func TestNewPage_EscCancels(t *testing.T) {
	m, _ := newTestModel(t, "A")
	m = pressRun(t, m, "n")
	m = typeText(m, "draft")
	require.Equal(t, "draft", m.sess.Creation.Draft())

	m = pressRun(t, m, "esc")
	assert.Equal(t, modalNone, m.modal)
	assert.False(t, m.sess.Creation.Open())
	assert.Empty(t, m.sess.Creation.Draft())
}

func TestGoTo_MissingPage(t *testing.T) {
	m, _ := newTestModel(t, "A")

	m = pressRun(t, m, "g")
	m.input.SetValue("/nope")
	m = pressRun(t, m, "enter")
	assert.Equal(t, "nope", m.sess.Name())
	assert.Equal(t, page.StateNotFound, m.sess.State())
	assert.Contains(t, m.View(), "does not exist")

	// Box actions are refused until a page is loaded.
	m, cmd := press(m, "a")
	assert.Nil(t, cmd)
	assert.Equal(t, page.ErrNotLoaded.Error(), m.status)
}

func TestOutOfSync_ShownInStatus(t *testing.T) {
	m, srv := newTestModel(t, "A")
	srv.Fail("PUT", "/boxes", 500)

	m = pressRun(t, m, "a")
	require.True(t, m.sess.OutOfSync())
	assert.Contains(t, m.status, "out of sync")

	m = pressRun(t, m, "esc")
	m = pressRun(t, m, "r")
	assert.False(t, m.sess.OutOfSync(), "reload should clear out-of-sync")
}
