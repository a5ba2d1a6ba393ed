package tui

import (
	"mondrian-cli/internal/model"
	"mondrian-cli/internal/page"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalEditBox
	modalConfirmDelete
	modalNewPage
	modalGoTo
	modalMoveTo
)

func (k modalKind) String() string {
	switch k {
	case modalEditBox:
		return "editBox"
	case modalConfirmDelete:
		return "confirmDelete"
	case modalNewPage:
		return "newPage"
	case modalGoTo:
		return "goTo"
	case modalMoveTo:
		return "moveTo"
	default:
		return "none"
	}
}

// pageLoadedMsg carries a fetch result for key. Results whose key no longer
// matches the session are dropped.
type pageLoadedMsg struct {
	key  page.LoadKey
	page model.Page
	err  error
}

// opDoneMsg carries the session a mutation ran against. seq pairs it with the
// op that is in flight.
type opDoneMsg struct {
	seq   int
	op    string
	sess  *page.Session
	focus int
	err   error
	// load is set when the op navigated (page creation).
	load *page.LoadKey
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusError
)
