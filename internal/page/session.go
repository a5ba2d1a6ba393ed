// Package page holds the state of a single wiki page view: the loader
// lifecycle, the ordered box list, the edit session, the page-creation form and
// the delete confirmation token. A Session is owned by one goroutine at a time.
package page

import (
        "context"
        "errors"
        "fmt"
        "log/slog"
        "strings"

        "mondrian-cli/internal/api"
        "mondrian-cli/internal/model"
)

type State int

const (
        StateLoading State = iota
        StateLoaded
        StateNotFound
)

func (s State) String() string {
        switch s {
        case StateLoading:
                return "loading"
        case StateLoaded:
                return "loaded"
        case StateNotFound:
                return "notFound"
        default:
                return "unknown"
        }
}

var (
        ErrNotLoaded   = errors.New("page is not loaded")
        ErrBoxNotFound = errors.New("box not found")
        ErrNoEdit      = errors.New("no box is being edited")
        ErrBusy        = errors.New("another operation is in progress")
)

// LoadKey identifies one load request. A load result is applied only when its
// key still matches the session.
type LoadKey struct {
        Name   string
        Reload int
}

// EditSession is the box currently in edit mode and its unsaved content.
type EditSession struct {
        BoxID   int
        Content string
}

type Session struct {
        store api.Store
        log   *slog.Logger

        name   string
        reload int
        state  State
        page   model.Page
        boxes  []model.Box

        edit        *EditSession
        deleteFor   int
        outOfSync   bool
        lastLoadErr error

        Creation Creation
}

func NewSession(store api.Store, name string, log *slog.Logger) *Session {
        if log == nil {
                log = slog.Default()
        }
        return &Session{
                store: store,
                log:   log,
                name:  strings.TrimSpace(name),
                state: StateLoading,
        }
}

func (s *Session) Name() string { return s.name }
func (s *Session) State() State { return s.state }
func (s *Session) Page() model.Page { return s.page }
func (s *Session) OutOfSync() bool { return s.outOfSync }
func (s *Session) LoadError() error { return s.lastLoadErr }
func (s *Session) Key() LoadKey { return LoadKey{Name: s.name, Reload: s.reload} }
func (s *Session) Store() api.Store { return s.store }
func (s *Session) PendingDelete() int { return s.deleteFor }
func (s *Session) Editing() *EditSession {
        if s.edit == nil {
                return nil
        }
        e := *s.edit
        return &e
}

// Boxes returns a copy of the ordered box collection.
func (s *Session) Boxes() []model.Box { return model.CloneBoxes(s.boxes) }

func (s *Session) Box(id int) (model.Box, bool) {
        i := indexOfBox(s.boxes, id)
        if i < 0 {
                return model.Box{}, false
        }
        return s.boxes[i], true
}

// Clone returns a deep copy sharing only the store and logger.
func (s *Session) Clone() *Session {
        c := *s
        c.page = s.page.Clone()
        c.boxes = model.CloneBoxes(s.boxes)
        if s.edit != nil {
                e := *s.edit
                c.edit = &e
        }
        return &c
}

// Navigate switches to another page name and re-enters the loading state.
// All page-scoped state is discarded.
func (s *Session) Navigate(name string) LoadKey {
        s.name = strings.TrimSpace(name)
        s.reset()
        return s.Key()
}

// Reload bumps the reload counter and re-enters the loading state.
func (s *Session) Reload() LoadKey {
        s.reload++
        s.reset()
        return s.Key()
}

func (s *Session) reset() {
        s.state = StateLoading
        s.page = model.Page{}
        s.boxes = nil
        s.edit = nil
        s.deleteFor = 0
        s.outOfSync = false
        s.lastLoadErr = nil
}

// Fetch performs the remote request for key without touching the session.
func Fetch(ctx context.Context, store api.Store, key LoadKey) (model.Page, error) {
        if strings.TrimSpace(key.Name) == "" {
                return model.Page{}, errors.New("empty page name")
        }
        return store.GetPage(ctx, key.Name)
}

// ApplyLoad commits a load result. It reports false and changes nothing when
// key is stale.
func (s *Session) ApplyLoad(key LoadKey, p model.Page, err error) bool {
        if key != s.Key() {
                s.log.Debug("discarding stale page load", "name", key.Name, "reload", key.Reload, "current", s.name)
                return false
        }
        s.edit = nil
        s.deleteFor = 0
        s.outOfSync = false
        if err != nil {
                s.log.Info("page not found", "name", key.Name, "error", err)
                s.state = StateNotFound
                s.page = model.Page{}
                s.boxes = nil
                s.lastLoadErr = err
                return true
        }
        s.page = p.Clone()
        s.boxes = model.CloneBoxes(p.Boxes)
        if s.boxes == nil {
                s.boxes = []model.Box{}
        }
        model.SortBoxesByPosition(s.boxes)
        s.page.Boxes = nil
        s.state = StateLoaded
        s.lastLoadErr = nil
        return true
}

// Load fetches the current page and applies the result.
func (s *Session) Load(ctx context.Context) error {
        key := s.Key()
        s.state = StateLoading
        p, err := Fetch(ctx, s.store, key)
        s.ApplyLoad(key, p, err)
        return err
}

func (s *Session) requireLoaded() error {
        if s.state != StateLoaded {
                return ErrNotLoaded
        }
        return nil
}

// persistPositions renumbers boxes and writes them with one bulk update.
func (s *Session) persistPositions(ctx context.Context, boxes []model.Box) ([]model.Box, error) {
        boxes = Renumber(boxes)
        if err := s.store.UpdateBoxes(ctx, boxes); err != nil {
                return boxes, fmt.Errorf("update box positions: %w", err)
        }
        return boxes, nil
}

// AddBox creates an empty box, prepends it, renumbers and opens an edit
// session on it.
func (s *Session) AddBox(ctx context.Context) (model.Box, error) {
        if err := s.requireLoaded(); err != nil {
                return model.Box{}, err
        }
        s.deleteFor = 0
        created, err := s.store.CreateBox(ctx, model.NewBox{Content: "", Position: 1, PageID: s.page.ID})
        if err != nil {
                return model.Box{}, fmt.Errorf("create box: %w", err)
        }
        if created.PageID == 0 {
                created.PageID = s.page.ID
        }
        boxes, perr := s.persistPositions(ctx, prependBox(s.boxes, created))
        s.boxes = boxes
        created = s.boxes[0]
        s.edit = &EditSession{BoxID: created.ID, Content: created.Content}
        if perr != nil {
                s.outOfSync = true
                return created, perr
        }
        return created, nil
}

// Edit switches box id into edit mode with a working copy of its content.
func (s *Session) Edit(id int) error {
        if err := s.requireLoaded(); err != nil {
                return err
        }
        b, ok := s.Box(id)
        if !ok {
                return fmt.Errorf("%w: %d", ErrBoxNotFound, id)
        }
        s.deleteFor = 0
        s.edit = &EditSession{BoxID: b.ID, Content: b.Content}
        return nil
}

// SetDraft updates the working copy of the active edit session only.
func (s *Session) SetDraft(content string) error {
        if s.edit == nil {
                return ErrNoEdit
        }
        s.edit.Content = content
        return nil
}

// Save writes the working copy to the store and, on success, commits it and
// ends the edit session. On failure the session is kept so the user can retry.
func (s *Session) Save(ctx context.Context) (model.Box, error) {
        if err := s.requireLoaded(); err != nil {
                return model.Box{}, err
        }
        if s.edit == nil {
                return model.Box{}, ErrNoEdit
        }
        s.deleteFor = 0
        i := indexOfBox(s.boxes, s.edit.BoxID)
        if i < 0 {
                return model.Box{}, fmt.Errorf("%w: %d", ErrBoxNotFound, s.edit.BoxID)
        }
        updated := s.boxes[i]
        updated.Content = s.edit.Content
        if err := s.store.UpdateBox(ctx, updated); err != nil {
                return model.Box{}, fmt.Errorf("update box %d: %w", updated.ID, err)
        }
        boxes := model.CloneBoxes(s.boxes)
        boxes[i] = updated
        s.boxes = boxes
        s.edit = nil
        return updated, nil
}

func (s *Session) Cancel() {
        s.edit = nil
        s.deleteFor = 0
}

// DisarmDelete clears a pending delete confirmation.
func (s *Session) DisarmDelete() { s.deleteFor = 0 }

// Delete removes box id on the second consecutive request for the same box.
// The first request (or a request for a different box than the pending one)
// only arms the confirmation and reports deleted=false.
func (s *Session) Delete(ctx context.Context, id int) (deleted bool, err error) {
        if err := s.requireLoaded(); err != nil {
                return false, err
        }
        i := indexOfBox(s.boxes, id)
        if i < 0 {
                return false, fmt.Errorf("%w: %d", ErrBoxNotFound, id)
        }
        if s.deleteFor != id {
                s.deleteFor = id
                return false, nil
        }
        s.deleteFor = 0
        if err := s.store.DeleteBox(ctx, id); err != nil {
                return false, fmt.Errorf("delete box %d: %w", id, err)
        }
        s.edit = nil
        boxes, perr := s.persistPositions(ctx, removeBox(s.boxes, i))
        s.boxes = boxes
        if perr != nil {
                s.outOfSync = true
                return true, perr
        }
        return true, nil
}

// Reposition moves box id to the 1-based position (clamped to 1..N) and
// renumbers. On a failed write the previous order is restored.
func (s *Session) Reposition(ctx context.Context, id int, position int) error {
        if err := s.requireLoaded(); err != nil {
                return err
        }
        from := indexOfBox(s.boxes, id)
        if from < 0 {
                return fmt.Errorf("%w: %d", ErrBoxNotFound, id)
        }
        s.deleteFor = 0
        to := clampPosition(position, len(s.boxes)) - 1
        boxes, err := s.persistPositions(ctx, moveBox(s.boxes, from, to))
        if err != nil {
                return err
        }
        s.boxes = boxes
        return nil
}

// MoveUp and MoveDown are Reposition by one step.
func (s *Session) MoveUp(ctx context.Context, id int) error {
        return s.step(ctx, id, -1)
}

func (s *Session) MoveDown(ctx context.Context, id int) error {
        return s.step(ctx, id, 1)
}

func (s *Session) step(ctx context.Context, id int, delta int) error {
        if err := s.requireLoaded(); err != nil {
                return err
        }
        i := indexOfBox(s.boxes, id)
        if i < 0 {
                return fmt.Errorf("%w: %d", ErrBoxNotFound, id)
        }
        target := i + 1 + delta
        if target < 1 || target > len(s.boxes) {
                return nil
        }
        return s.Reposition(ctx, id, target)
}
