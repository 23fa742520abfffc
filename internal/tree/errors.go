package tree

import "errors"

var (
	// ErrPathNotFound is returned when a path does not resolve to a node.
	ErrPathNotFound = errors.New("path not found")

	// ErrInvalidParent is returned when a node would be placed under a
	// request, under itself, or under one of its own descendants.
	ErrInvalidParent = errors.New("invalid parent")

	// ErrOrphanedItem is returned by strict rebuilds when an item names a
	// parent that is not part of the list.
	ErrOrphanedItem = errors.New("orphaned item")

	// ErrDuplicateID is returned when an insert would reuse an existing id.
	ErrDuplicateID = errors.New("duplicate node id")
)
