// Package cache stores analysis results and rendered diagrams between runs.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//
// # Keys
//
// Entries are addressed by content: a [Keyer] derives keys from the hash of
// the serialized station plus the options that influence the result. The
// same station analysed with the same threshold and branch policy always
// maps to the same key, so edits to the station invalidate naturally.
//
//	k := cache.NewDefaultKeyer()
//	key := k.AnalysisKey(cache.Hash(stationJSON), cache.AnalysisKeyOpts{Threshold: 500})
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached entries. Keys are content-addressed, so a
// long TTL only costs storage.
const (
	TTLAnalysis = 7 * 24 * time.Hour
	TTLRender   = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Keyer derives cache keys for each kind of cached artifact.
type Keyer interface {
	// AnalysisKey addresses the analysis report of a station.
	AnalysisKey(stationHash string, opts AnalysisKeyOpts) string

	// RenderKey addresses a rendered diagram of an analysed station.
	RenderKey(stationHash string, opts RenderKeyOpts) string
}

// AnalysisKeyOpts are the inputs besides the station that change a report.
type AnalysisKeyOpts struct {
	Threshold float64 `json:"threshold"`
	Branch    string  `json:"branch"`
}

// RenderKeyOpts are the inputs besides the station that change a diagram.
type RenderKeyOpts struct {
	Analysis   AnalysisKeyOpts `json:"analysis"`
	Format     string          `json:"format"`
	Engine     string          `json:"engine"`
	Detailed   bool            `json:"detailed"`
	EdgeLabels bool            `json:"edge_labels"`
	Positions  bool            `json:"positions"`
}

// DefaultKeyer produces unprefixed, versioned keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// keyVersion is bumped when cached payload formats change.
const keyVersion = "v1"

// AnalysisKey implements Keyer.
func (DefaultKeyer) AnalysisKey(stationHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis:"+keyVersion, stationHash, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(stationHash string, opts RenderKeyOpts) string {
	return hashKey("render:"+keyVersion, stationHash, opts)
}
