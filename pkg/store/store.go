// Package store persists stations so they can be analysed again later.
//
// Stations are stored as their canonical JSON encoding together with a few
// summary fields, so a stored record never shares memory with a live
// [network.Network]. Two backends are provided:
//
//   - [MemoryStore]: a process-local map, the default for the HTTP server
//   - [MongoStore]: a MongoDB collection shared between server instances
package store

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/railcdl/pkg/errors"
	rio "github.com/matzehuels/railcdl/pkg/io"
	"github.com/matzehuels/railcdl/pkg/network"
)

// Store saves and retrieves stations.
type Store interface {
	// Save stores a snapshot of g under a fresh ID.
	Save(ctx context.Context, g *network.Network) (*Record, error)

	// Get returns the record with the given ID, including its data.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns every record, newest first, without data.
	List(ctx context.Context) ([]Record, error)

	// Delete removes a record.
	Delete(ctx context.Context, id string) error

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}

// Record is a stored station.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	Edges     int       `json:"edges" bson:"edges"`

	// Data is the canonical JSON encoding of the station.
	Data []byte `json:"-" bson:"data,omitempty"`
}

// Network decodes the stored station.
func (r *Record) Network() (*network.Network, error) {
	if len(r.Data) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "record %s has no station data", r.ID)
	}
	return rio.ReadJSON(bytes.NewReader(r.Data))
}

// NotFound returns the error reported for a missing station ID.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeStationNotFound, "station %s not found", id)
}

// newRecord snapshots g into a record with a fresh ID.
func newRecord(g *network.Network) (*Record, error) {
	var buf bytes.Buffer
	if err := rio.WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return &Record{
		ID:        uuid.NewString(),
		Name:      g.Name,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Data:      buf.Bytes(),
	}, nil
}
