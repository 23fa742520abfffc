// Package storage persists the workspace state in a key-value store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/artpar/postbox/internal/workspace"
)

// StateKey is the key holding the whole persisted workspace graph.
const StateKey = "postbox-state"

var (
	ErrNotFound   = errors.New("key not found")
	ErrClosed     = errors.New("store is closed")
	ErrInvalidKey = errors.New("invalid key")
)

// KV is a minimal key-value document store.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Load reads the workspace state. A store that has never been saved to
// yields workspace.DefaultState.
func Load(ctx context.Context, kv KV) (*workspace.State, error) {
	data, err := kv.Get(ctx, StateKey)
	if errors.Is(err, ErrNotFound) {
		return workspace.DefaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	var state workspace.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if len(state.Projects) == 0 {
		return workspace.DefaultState(), nil
	}
	return &state, nil
}

// Save writes the workspace state as a single JSON document.
func Save(ctx context.Context, kv KV, state *workspace.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := kv.Set(ctx, StateKey, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// ValidKey reports whether key is usable by every backend: non-empty and
// made only of letters, digits, '-', '_' and '.', not starting with '.'.
func ValidKey(key string) bool {
	if key == "" || key[0] == '.' {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
