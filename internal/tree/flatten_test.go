package tree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemIDs(items []FlattenedItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	return ids
}

func TestFlatten(t *testing.T) {
	items := Flatten(deep())

	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H"}, itemIDs(items))
	for i, it := range items {
		assert.Equal(t, i, it.Index)
	}
	assert.Equal(t, Path{"A", "B", "D"}, items[3].Path)
	assert.Equal(t, "B", items[3].ParentID)
	assert.Equal(t, 2, items[3].Depth)
}

func TestFlatten_DepthMatchesParent(t *testing.T) {
	items := Flatten(deep())
	byID := map[string]FlattenedItem{}
	for _, it := range items {
		byID[it.ID()] = it
	}
	for _, it := range items {
		if it.ParentID == "" {
			assert.Equal(t, 0, it.Depth, it.ID())
			continue
		}
		assert.Equal(t, byID[it.ParentID].Depth+1, it.Depth, it.ID())
		assert.Len(t, it.Path, it.Depth+1)
	}
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(nil))
	assert.Empty(t, Rebuild(nil))
}

func TestRebuild_RoundTrip(t *testing.T) {
	trees := map[string][]*Node{
		"sample": sample(),
		"deep":   deep(),
		"empty folders": {
			folder("A", folder("B"), request("C")),
			folder("D"),
		},
	}
	for name, nodes := range trees {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, nodes, Rebuild(Flatten(nodes)))

			strict, err := RebuildStrict(Flatten(nodes))
			require.NoError(t, err)
			assert.Equal(t, nodes, strict)
		})
	}
}

func TestRebuild_DoesNotShareChildren(t *testing.T) {
	nodes := deep()
	rebuilt := Rebuild(Flatten(nodes))
	rebuilt[0].Children = nil
	assert.Len(t, nodes[0].Children, 2)
}

func TestRebuild_MissingParent(t *testing.T) {
	items := []FlattenedItem{
		{Node: folder("A"), Depth: 0},
		{Node: request("X"), ParentID: "ghost", Depth: 1},
	}

	t.Run("lenient moves orphan to root", func(t *testing.T) {
		assert.Equal(t, []string{"A", "X"}, topIDs(Rebuild(items)))
	})

	t.Run("strict reports orphan", func(t *testing.T) {
		_, err := RebuildStrict(items)
		assert.True(t, errors.Is(err, ErrOrphanedItem))
	})
}

func TestRebuild_RequestParent(t *testing.T) {
	items := []FlattenedItem{
		{Node: request("R")},
		{Node: request("X"), ParentID: "R", Depth: 1},
	}

	assert.Equal(t, []string{"R", "X"}, topIDs(Rebuild(items)))

	_, err := RebuildStrict(items)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestRebuild_Cycle(t *testing.T) {
	items := []FlattenedItem{
		{Node: folder("P1"), ParentID: "P2"},
		{Node: folder("P2"), ParentID: "P1"},
	}

	assert.Equal(t, []string{"P1", "P2"}, topIDs(Rebuild(items)))

	_, err := RebuildStrict(items)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestRebuild_ParentAfterChild(t *testing.T) {
	items := []FlattenedItem{
		{Node: request("X"), ParentID: "A"},
		{Node: request("Y")},
		{Node: folder("A")},
	}
	result := Rebuild(items)
	assert.Equal(t, []string{"Y", "A"}, topIDs(result))
	assert.Equal(t, []string{"X"}, topIDs(result[1].Children))
}

func TestRemoveCollapsedSubtrees(t *testing.T) {
	tests := []struct {
		name      string
		collapsed []string
		want      []string
	}{
		{"nothing collapsed", nil, []string{"A", "B", "C", "D", "E", "F", "G", "H"}},
		{"top folder hides all descendants", []string{"A"}, []string{"A", "F", "G", "H"}},
		{"nested folder", []string{"B"}, []string{"A", "B", "E", "F", "G", "H"}},
		{"nested inside collapsed", []string{"A", "B"}, []string{"A", "F", "G", "H"}},
		{"several", []string{"A", "F"}, []string{"A", "F", "H"}},
		{"request id is harmless", []string{"H"}, []string{"A", "B", "C", "D", "E", "F", "G", "H"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Flatten(deep())
			result := RemoveCollapsedSubtrees(items, tt.collapsed...)
			assert.Equal(t, tt.want, itemIDs(result))
			assert.Len(t, items, 8)
		})
	}
}

func TestCountDescendants(t *testing.T) {
	nodes := deep()
	assert.Equal(t, 4, CountDescendants(nodes, "A"))
	assert.Equal(t, 2, CountDescendants(nodes, "B"))
	assert.Equal(t, 1, CountDescendants(nodes, "F"))
	assert.Equal(t, 0, CountDescendants(nodes, "H"))
	assert.Equal(t, 0, CountDescendants(nodes, "missing"))
}
