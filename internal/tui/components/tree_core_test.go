package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artpar/postbox/internal/tree"
)

func TestMoveCursor(t *testing.T) {
	tests := []struct {
		name     string
		cursor   int
		delta    int
		count    int
		expected int
	}{
		{"move down from start", 0, 1, 10, 1},
		{"move up in middle", 5, -1, 10, 4},
		{"clamp at end", 9, 1, 10, 9},
		{"clamp at start", 0, -1, 10, 0},
		{"large jump down", 5, 100, 10, 9},
		{"large jump up", 5, -100, 10, 0},
		{"empty list", 0, 1, 0, 0},
		{"single item list", 0, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MoveCursor(tt.cursor, tt.delta, tt.count))
		})
	}
}

func TestAdjustOffset(t *testing.T) {
	tests := []struct {
		name     string
		cursor   int
		offset   int
		height   int
		expected int
	}{
		{"cursor visible", 3, 0, 10, 0},
		{"cursor above viewport", 2, 5, 10, 2},
		{"cursor below viewport", 15, 0, 10, 6},
		{"cursor at last visible row", 9, 0, 10, 0},
		{"zero height", 4, 0, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AdjustOffset(tt.cursor, tt.offset, tt.height))
		})
	}
}

func TestHoverTarget(t *testing.T) {
	items := tree.Flatten([]*tree.Node{folder("A", request("X")), request("Y")})

	tests := []struct {
		name string
		over string
		dir  tree.Direction
		want string
		ok   bool
	}{
		{"down from first", "A", tree.Down, "X", true},
		{"down from middle", "X", tree.Down, "Y", true},
		{"up from last", "Y", tree.Up, "X", true},
		{"up from first", "A", tree.Up, "", false},
		{"down from last", "Y", tree.Down, "", false},
		{"unknown row", "nope", tree.Down, "", false},
		{"sideways", "X", tree.Left, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HoverTarget(items, tt.over, tt.dir, 30)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRowRects(t *testing.T) {
	items := tree.Flatten([]*tree.Node{folder("A", request("X"))})
	rows := RowRects(items, 20)
	assert.Equal(t, []tree.Droppable{
		{ID: "A", Rect: tree.Rect{Y: 0, Width: 20, Height: 1}},
		{ID: "X", Rect: tree.Rect{Y: 1, Width: 20, Height: 1}},
	}, rows)
}

func TestIndexOfID(t *testing.T) {
	items := tree.Flatten([]*tree.Node{request("X"), request("Y")})
	assert.Equal(t, 1, IndexOfID(items, "Y", 7))
	assert.Equal(t, 7, IndexOfID(items, "Z", 7))
}
