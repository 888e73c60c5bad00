// Package store persists the clipboard history aggregate in a single SQLite file.
package store

import (
	"context"

	"github.com/rcliao/clipstack/internal/model"
)

// FileName is the aggregate's file name inside the history directory.
const FileName = "history.db"

// Store defines how the history aggregate is loaded and flushed.
type Store interface {
	// Load returns the persisted aggregate, or an empty one if nothing was saved yet.
	Load(ctx context.Context) (model.Snapshot, error)

	// Save replaces the persisted aggregate as one unit.
	Save(ctx context.Context, snap model.Snapshot) error

	// Close closes the store.
	Close() error
}
