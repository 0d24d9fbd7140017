// Package store implements the artifact persistence contract consumed by
// agent loops around Pollen: save opaque content under a generated id, get
// it back by id. Tool code never touches this package directly.
package store

import (
	"context"
	"errors"
)

// ErrNotFound indicates no artifact exists for the requested id.
var ErrNotFound = errors.New("store: artifact not found")

// SavedArtifact identifies one stored object.
type SavedArtifact struct {
	ID          string `json:"id"`
	StoragePath string `json:"storage_path"`
}

// ArtifactStore is the save/get persistence contract.
type ArtifactStore interface {
	Save(ctx context.Context, content []byte, filename string) (SavedArtifact, error)
	Get(ctx context.Context, id string) ([]byte, error)
}
