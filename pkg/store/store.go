// Package store keeps published network snapshots.
//
// Backends:
//   - [Memory]: in-process, for tests and single-shot runs
//   - [Mongo]: a MongoDB collection, written by `railgen publish`
//
// Snapshots are immutable once stored: publishing the same ID twice fails
// with DUPLICATE_KEY. Publishing an unchanged network (same digest) is
// allowed and produces a new version.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/snapshot"
)

// Store is a snapshot repository.
type Store interface {
	// Publish stores snap. The ID must be unused.
	Publish(ctx context.Context, snap *snapshot.Snapshot) error

	// Get returns the snapshot with id, or NOT_FOUND.
	Get(ctx context.Context, id string) (*snapshot.Snapshot, error)

	// Latest returns the most recent snapshot of the named network, or
	// NOT_FOUND.
	Latest(ctx context.Context, name string) (*snapshot.Snapshot, error)

	// List returns up to limit snapshots of the named network, newest
	// first. An empty name lists every network; limit <= 0 means no limit.
	List(ctx context.Context, name string, limit int) ([]*snapshot.Snapshot, error)

	// Close releases the backend.
	Close(ctx context.Context) error
}

// Memory is a Store held in a map.
type Memory struct {
	mu    sync.RWMutex
	snaps map[string]*snapshot.Snapshot
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]*snapshot.Snapshot)}
}

func (m *Memory) Publish(_ context.Context, snap *snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snaps[snap.ID]; ok {
		return rgerrors.New(rgerrors.ErrCodeDuplicateKey, "snapshot %s already published", snap.ID)
	}
	cp := *snap
	m.snaps[snap.ID] = &cp
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*snapshot.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) Latest(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	list, _ := m.List(ctx, name, 1)
	if len(list) == 0 {
		return nil, rgerrors.New(rgerrors.ErrCodeNotFound, "no snapshots of %q", name)
	}
	return list[0], nil
}

func (m *Memory) List(_ context.Context, name string, limit int) ([]*snapshot.Snapshot, error) {
	m.mu.RLock()
	var out []*snapshot.Snapshot
	for _, s := range m.snaps {
		if name == "" || s.Name == name {
			cp := *s
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, newestFirst)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close(context.Context) error { return nil }

func newestFirst(a, b *snapshot.Snapshot) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func notFound(id string) error {
	return rgerrors.New(rgerrors.ErrCodeNotFound, "snapshot %s not found", id)
}

var _ Store = (*Memory)(nil)
