package components

import "github.com/artpar/postbox/internal/tree"

// Pure helpers for list navigation. They take values and return values.

// MoveCursor computes a new cursor position clamped to the list bounds.
func MoveCursor(cursor, delta, itemCount int) int {
	if itemCount == 0 {
		return 0
	}
	return min(max(cursor+delta, 0), itemCount-1)
}

// AdjustOffset returns the scroll offset that keeps cursor visible.
func AdjustOffset(cursor, offset, visibleHeight int) int {
	if visibleHeight < 1 {
		visibleHeight = 1
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visibleHeight {
		return cursor - visibleHeight + 1
	}
	return offset
}

// RowRects lays items out as one-line droppable rows of the given width.
func RowRects(items []tree.FlattenedItem, width int) []tree.Droppable {
	out := make([]tree.Droppable, len(items))
	for i, it := range items {
		out[i] = tree.Droppable{
			ID:   it.ID(),
			Rect: tree.Rect{Y: float64(i), Width: float64(width), Height: 1},
		}
	}
	return out
}

// HoverTarget returns the row adjacent to overID in direction dir, using
// the rendered row rectangles. ok is false at either end of the list.
func HoverTarget(items []tree.FlattenedItem, overID string, dir tree.Direction, width int) (string, bool) {
	rows := RowRects(items, width)
	i := tree.IndexOf(items, overID)
	if i < 0 {
		return "", false
	}
	return tree.NextOver(dir, rows[i].Rect, rows)
}

// IndexOfID returns the index of id in items, or fallback when absent.
func IndexOfID(items []tree.FlattenedItem, id string, fallback int) int {
	if i := tree.IndexOf(items, id); i >= 0 {
		return i
	}
	return fallback
}
