// Package store persists scene documents for the serve API: an in-memory
// store for single-process use and a MongoDB-backed store for deployments.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/RainBoltz/v-network-graph/pkg/scene"
)

// ErrNotFound is returned when a requested scene does not exist.
var ErrNotFound = errors.New("scene not found")

// Record is a stored scene with its identity and timestamps.
type Record struct {
	ID        string       `json:"id" bson:"_id"`
	Name      string       `json:"name,omitempty" bson:"name,omitempty"`
	Scene     *scene.Scene `json:"scene" bson:"scene"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// Summary is the listing view of a record, without the scene body.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is a scene document store.
type Store interface {
	// Put inserts or replaces a record by ID, maintaining timestamps.
	Put(ctx context.Context, rec *Record) error
	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns summaries of all records.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes the record, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases underlying connections.
	Close(ctx context.Context) error
}
