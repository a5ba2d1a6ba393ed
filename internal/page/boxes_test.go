package page

import (
        "testing"

        "mondrian-cli/internal/model"

        "github.com/stretchr/testify/assert"
)

func ids(boxes []model.Box) []int {
        out := make([]int, 0, len(boxes))
        for _, b := range boxes {
                out = append(out, b.ID)
        }
        return out
}

func TestRenumber(t *testing.T) {
        boxes := []model.Box{{ID: 7, Position: 9}, {ID: 3, Position: 9}, {ID: 1, Position: -2}}
        Renumber(boxes)
        assert.Equal(t, []int{1, 2, 3}, positions(boxes))
        assert.Equal(t, []int{7, 3, 1}, ids(boxes))
        assert.True(t, Contiguous(boxes))
        assert.False(t, Contiguous([]model.Box{{Position: 1}, {Position: 3}}))
        assert.True(t, Contiguous(nil))
        assert.Empty(t, Renumber(nil))
}

func TestMoveBox(t *testing.T) {
        boxes := []model.Box{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

        tests := []struct {
                name     string
                from, to int
                want     []int
        }{
                {name: "down", from: 0, to: 2, want: []int{2, 3, 1, 4}},
                {name: "up", from: 3, to: 1, want: []int{1, 4, 2, 3}},
                {name: "to top", from: 2, to: 0, want: []int{3, 1, 2, 4}},
                {name: "to bottom", from: 0, to: 3, want: []int{2, 3, 4, 1}},
                {name: "same index", from: 1, to: 1, want: []int{1, 2, 3, 4}},
        }
        for _, tt := range tests {
                t.Run(tt.name, func(t *testing.T) {
                        assert.Equal(t, tt.want, ids(moveBox(boxes, tt.from, tt.to)))
                })
        }
        // The input is never modified.
        assert.Equal(t, []int{1, 2, 3, 4}, ids(boxes))

        assert.Equal(t, []int{9}, ids(moveBox([]model.Box{{ID: 9}}, 0, 0)))
}

func TestRemoveBox(t *testing.T) {
        boxes := []model.Box{{ID: 1}, {ID: 2}, {ID: 3}}
        assert.Equal(t, []int{2, 3}, ids(removeBox(boxes, 0)))
        assert.Equal(t, []int{1, 3}, ids(removeBox(boxes, 1)))
        assert.Equal(t, []int{1, 2}, ids(removeBox(boxes, 2)))
        assert.Equal(t, []int{1, 2, 3}, ids(boxes))

        assert.Empty(t, removeBox([]model.Box{{ID: 9}}, 0))
}

func TestPrependBox(t *testing.T) {
        assert.Equal(t, []int{5}, ids(prependBox(nil, model.Box{ID: 5})))
        assert.Equal(t, []int{5, 1, 2}, ids(prependBox([]model.Box{{ID: 1}, {ID: 2}}, model.Box{ID: 5})))
}

func TestIndexOfBox(t *testing.T) {
        boxes := []model.Box{{ID: 4}, {ID: 8}}
        assert.Equal(t, 1, indexOfBox(boxes, 8))
        assert.Equal(t, -1, indexOfBox(boxes, 5))
        assert.Equal(t, -1, indexOfBox(nil, 4))
}

func TestClampPosition(t *testing.T) {
        tests := []struct {
                pos, n, want int
        }{
                {pos: 2, n: 3, want: 2},
                {pos: 0, n: 3, want: 1},
                {pos: -5, n: 3, want: 1},
                {pos: 99, n: 3, want: 3},
                {pos: 1, n: 1, want: 1},
                {pos: 7, n: 1, want: 1},
        }
        for _, tt := range tests {
                assert.Equal(t, tt.want, clampPosition(tt.pos, tt.n), "clampPosition(%d, %d)", tt.pos, tt.n)
        }
}
