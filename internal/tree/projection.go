package tree

import (
	"fmt"
	"math"
	"slices"
)

// Projection is the uncommitted depth and parent of a dragged item at its
// current hover position.
type Projection struct {
	Depth    int
	MaxDepth int
	MinDepth int
	// ParentID is empty when the item would land at the top level.
	ParentID string
}

// ArrayMove returns a copy of items with the element at from moved to to.
// Out of range indices return an unmodified copy.
func ArrayMove(items []FlattenedItem, from, to int) []FlattenedItem {
	out := slices.Clone(items)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

// IndexOf returns the position of id in items, or -1.
func IndexOf(items []FlattenedItem, id string) int {
	return slices.IndexFunc(items, func(it FlattenedItem) bool { return it.ID() == id })
}

// DragDepth converts a horizontal pointer offset into whole indentation levels.
func DragDepth(offset float64, indentation int) int {
	if indentation <= 0 {
		return 0
	}
	return int(math.Round(offset / float64(indentation)))
}

// GetProjection computes where the active item would land if dropped over
// overID with the given horizontal offset. The list is never modified; the
// reorder is simulated on a copy. ok is false when either id is absent.
func GetProjection(items []FlattenedItem, activeID, overID string, offset float64, indentation int) (Projection, bool) {
	activeIndex := IndexOf(items, activeID)
	overIndex := IndexOf(items, overID)
	if activeIndex < 0 || overIndex < 0 {
		return Projection{}, false
	}

	active := items[activeIndex]
	moved := ArrayMove(items, activeIndex, overIndex)

	var previous, next *FlattenedItem
	if overIndex > 0 {
		previous = &moved[overIndex-1]
	}
	if overIndex+1 < len(moved) {
		next = &moved[overIndex+1]
	}

	maxDepth := 0
	if previous != nil {
		maxDepth = previous.Depth + 1
	}
	minDepth := 0
	if next != nil {
		minDepth = next.Depth
	}

	depth := active.Depth + DragDepth(offset, indentation)
	if depth >= maxDepth {
		depth = maxDepth
	} else if depth < minDepth {
		depth = minDepth
	}

	return Projection{
		Depth:    depth,
		MaxDepth: maxDepth,
		MinDepth: minDepth,
		ParentID: projectedParent(moved, overIndex, depth, previous),
	}, true
}

func projectedParent(moved []FlattenedItem, overIndex, depth int, previous *FlattenedItem) string {
	if depth == 0 || previous == nil {
		return ""
	}
	if depth == previous.Depth {
		return previous.ParentID
	}
	if depth > previous.Depth {
		return previous.ID()
	}
	for i := overIndex - 1; i >= 0; i-- {
		if moved[i].Depth == depth {
			return moved[i].ParentID
		}
	}
	return ""
}

// CommitMove applies a projection to the tree: the active node moves to the
// position of overID under projection.ParentID. The move is rejected with
// ErrInvalidParent, leaving nodes unchanged, when the parent is a request,
// the active node itself, or one of its descendants.
func CommitMove(nodes []*Node, activeID, overID string, p Projection) ([]*Node, error) {
	items := Flatten(nodes)
	activeIndex := IndexOf(items, activeID)
	overIndex := IndexOf(items, overID)
	if activeIndex < 0 {
		return nodes, fmt.Errorf("%w: %s", ErrPathNotFound, activeID)
	}
	if overIndex < 0 {
		return nodes, fmt.Errorf("%w: %s", ErrPathNotFound, overID)
	}

	if p.ParentID != "" {
		parentIndex := IndexOf(items, p.ParentID)
		if parentIndex < 0 {
			return nodes, fmt.Errorf("%w: parent %s", ErrOrphanedItem, p.ParentID)
		}
		parent := items[parentIndex]
		if !parent.Node.IsFolder() {
			return nodes, fmt.Errorf("%w: %q is a request", ErrInvalidParent, parent.Node.Name)
		}
		if slices.Contains(parent.Path, activeID) {
			return nodes, fmt.Errorf("%w: %q is inside the moved folder", ErrInvalidParent, parent.Node.Name)
		}
	}

	items[activeIndex].Depth = p.Depth
	items[activeIndex].ParentID = p.ParentID
	rebuilt, err := RebuildStrict(ArrayMove(items, activeIndex, overIndex))
	if err != nil {
		return nodes, err
	}
	return rebuilt, nil
}
