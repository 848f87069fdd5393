// Package cache stores rendered artifacts keyed by the content of the
// document they were rendered from.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [MemoryCache]: an in-process LRU, for the HTTP server
//   - [RedisCache]: a shared Redis instance, for several servers
//
// All backends honour a per-entry TTL; zero means no expiry.
//
// # Keys
//
// A [Keyer] derives keys from a document digest ([Hash] of the raw document
// bytes) plus the render options, so editing either the document or the
// options misses the cache:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(cache.Hash(data), cache.ArtifactKeyOpts{Format: "html"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Template   string  `json:"template,omitempty"` // digest of the page template
	Stylesheet string  `json:"stylesheet,omitempty"`
	Scale      int     `json:"scale,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	PNGScale   float64 `json:"png_scale,omitempty"`
	Indent     bool    `json:"indent,omitempty"`
	Undirected bool    `json:"undirected,omitempty"`
	Overwrite  bool    `json:"overwrite,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// DocumentKey is the key of a decoded and validated document.
	DocumentKey(digest string) string

	// ArtifactKey is the key of one rendering of a document.
	ArtifactKey(digest string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey returns "document:<digest>".
func (DefaultKeyer) DocumentKey(digest string) string {
	return "document:" + digest
}

// ArtifactKey hashes the digest together with the options.
func (DefaultKeyer) ArtifactKey(digest string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", digest, opts)
}

var _ Keyer = DefaultKeyer{}
