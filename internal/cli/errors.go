package cli

import (
        "errors"
        "fmt"
)

type notFoundError struct {
        kind string
        id   string
        err  error
}

func (e notFoundError) Error() string {
        return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func (e notFoundError) Unwrap() error { return e.err }

func errNotFound(kind, id string, cause error) error {
        return notFoundError{kind: kind, id: id, err: cause}
}

// errConfirmDelete is returned by `boxes delete` without --yes. The TUI asks
// twice instead; scripts must opt in explicitly.
var errConfirmDelete = errors.New("refusing to delete without --yes")

type createPageError struct {
        name string
        msg  string
}

func (e createPageError) Error() string {
        return fmt.Sprintf("create page %s: %s", e.name, e.msg)
}
