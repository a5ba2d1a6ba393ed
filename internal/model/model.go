package model

import "sort"

// Box is a single editable content block of a page. Position is 1-based.
//
// JSON field names follow the remote store's wire format, which mixes
// lower-case fields with the upper-case foreign key "PageId".
type Box struct {
        ID       int    `json:"id" yaml:"id"`
        Content  string `json:"content" yaml:"content"`
        Position int    `json:"position" yaml:"position"`
        PageID   int    `json:"PageId" yaml:"pageId"`
}

type Page struct {
        ID    int    `json:"id" yaml:"id"`
        Name  string `json:"name" yaml:"name"`
        Boxes []Box  `json:"Boxes" yaml:"boxes"`
}

// NewBox is the create-request body for a box; the server assigns the id.
type NewBox struct {
        Content  string `json:"content"`
        Position int    `json:"position"`
        PageID   int    `json:"PageId"`
}

type NewPage struct {
        Name string `json:"name"`
}

// CreatePageResponse is the body returned by the page create endpoint: either a
// page record or an error message.
type CreatePageResponse struct {
        Page
        Error string `json:"error,omitempty"`
}

// SortBoxesByPosition orders boxes by position, then id, in place.
func SortBoxesByPosition(boxes []Box) {
        sort.SliceStable(boxes, func(i, j int) bool {
                if boxes[i].Position != boxes[j].Position {
                        return boxes[i].Position < boxes[j].Position
                }
                return boxes[i].ID < boxes[j].ID
        })
}

// CloneBoxes returns a copy of boxes that shares no backing array.
func CloneBoxes(boxes []Box) []Box {
        if boxes == nil {
                return nil
        }
        out := make([]Box, len(boxes))
        copy(out, boxes)
        return out
}

func (p Page) Clone() Page {
        p.Boxes = CloneBoxes(p.Boxes)
        return p
}
