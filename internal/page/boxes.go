package page

import "mondrian-cli/internal/model"

// Renumber assigns position = index+1 to every box, in the current order.
// It never looks at the previous positions.
func Renumber(boxes []model.Box) []model.Box {
        for i := range boxes {
                boxes[i].Position = i + 1
        }
        return boxes
}

// Contiguous reports whether positions are exactly 1..N in slice order.
func Contiguous(boxes []model.Box) bool {
        for i, b := range boxes {
                if b.Position != i+1 {
                        return false
                }
        }
        return true
}

func indexOfBox(boxes []model.Box, id int) int {
        for i := range boxes {
                if boxes[i].ID == id {
                        return i
                }
        }
        return -1
}

// moveBox returns a new slice with the box at from reinserted at index to.
// Both indexes must be in range.
func moveBox(boxes []model.Box, from, to int) []model.Box {
        out := make([]model.Box, 0, len(boxes))
        moved := boxes[from]
        for i, b := range boxes {
                if i != from {
                        out = append(out, b)
                }
        }
        out = append(out, model.Box{})
        copy(out[to+1:], out[to:])
        out[to] = moved
        return out
}

func removeBox(boxes []model.Box, idx int) []model.Box {
        out := make([]model.Box, 0, len(boxes)-1)
        out = append(out, boxes[:idx]...)
        return append(out, boxes[idx+1:]...)
}

func prependBox(boxes []model.Box, b model.Box) []model.Box {
        out := make([]model.Box, 0, len(boxes)+1)
        out = append(out, b)
        return append(out, boxes...)
}

// clampPosition limits a requested 1-based position to 1..n.
func clampPosition(pos, n int) int {
        if pos < 1 {
                return 1
        }
        if pos > n {
                return n
        }
        return pos
}
