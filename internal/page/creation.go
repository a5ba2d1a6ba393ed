package page

import (
        "context"
        "strings"

        "mondrian-cli/internal/model"
)

// Creation is the new-page form: closed, or open with a draft name and the
// error message of the last failed submit.
type Creation struct {
        open  bool
        draft string
        err   string
}

func (c Creation) Open() bool { return c.open }
func (c Creation) Draft() string { return c.draft }
func (c Creation) ErrorMsg() string { return c.err }

// OpenCreation opens the new-page form with an empty draft.
func (s *Session) OpenCreation() {
        s.Creation = Creation{open: true}
}

func (s *Session) SetCreationDraft(name string) {
        if !s.Creation.open {
                return
        }
        s.Creation.draft = name
}

// CancelCreation clears the draft and error and closes the form.
func (s *Session) CancelCreation() {
        s.Creation = Creation{}
}

// SubmitCreation sends the draft name to the store. A server-reported error
// (or a transport failure) keeps the form open with the message; success
// closes the form and navigates to the new page, returning the key to load.
// With the form closed nothing is sent.
func (s *Session) SubmitCreation(ctx context.Context) (LoadKey, bool) {
        if !s.Creation.open {
                return LoadKey{}, false
        }
        name := s.Creation.draft
        resp, err := s.store.CreatePage(ctx, name)
        if err != nil {
                s.log.Warn("create page failed", "name", name, "error", err)
                s.Creation.open = true
                s.Creation.err = err.Error()
                return LoadKey{}, false
        }
        if msg := strings.TrimSpace(resp.Error); msg != "" {
                s.Creation.open = true
                s.Creation.err = resp.Error
                return LoadKey{}, false
        }
        target := name
        if strings.TrimSpace(resp.Name) != "" {
                target = resp.Name
        }
        s.CancelCreation()
        s.Navigate(target)
        return s.Reload(), true
}

// Snapshot returns the loaded page with its current boxes.
func (s *Session) Snapshot() model.Page {
        p := s.page.Clone()
        p.Boxes = model.CloneBoxes(s.boxes)
        if p.Boxes == nil {
                p.Boxes = []model.Box{}
        }
        return p
}
