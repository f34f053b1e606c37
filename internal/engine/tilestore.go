package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// Persistence is the TileStore's view of the dual-store gateway.
// Implemented by persist.Gateway in production.
type Persistence interface {
	// Load returns the record to hydrate from. Never fails: degraded
	// loads yield an empty record.
	Load(ctx context.Context) *tile.Record
	// Save pushes the record to both stores, fire-and-forget.
	Save(rec *tile.Record)
	// DeleteTile removes the per-id secondary record, fire-and-forget.
	DeleteTile(id string)
}

// TileStore owns the canonical ordered slot array.
//
// Lifecycle: construct with New, call Hydrate exactly once during startup,
// then mutate freely. Mutations issued before hydration completes block
// until it does (the hydration gate).
type TileStore struct {
	gateway Persistence
	logger  *slog.Logger
	menu    *MenuCoordinator

	ready    chan struct{}
	loadOnce sync.Once

	mu  sync.Mutex
	rec *tile.Record
}

// StoreOption configures a TileStore.
type StoreOption func(*TileStore)

// WithLogger sets the logger used for degraded-path reporting.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *TileStore) { s.logger = l }
}

// WithMenu attaches a menu coordinator. When attached, editing or clearing
// the tile whose menu is open closes that menu before the mutation returns
// (the single-menu lifecycle contract).
func WithMenu(m *MenuCoordinator) StoreOption {
	return func(s *TileStore) { s.menu = m }
}

// New creates a TileStore over the given persistence gateway.
func New(gateway Persistence, opts ...StoreOption) *TileStore {
	s := &TileStore{
		gateway: gateway,
		logger:  slog.Default(),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the stored record and opens the mutation gate.
//
// Idempotent: only the first call loads; later calls return the already
// hydrated state. Hydrate never fails - a degraded load hydrates an empty
// record (see Persistence.Load).
func (s *TileStore) Hydrate(ctx context.Context) {
	s.loadOnce.Do(func() {
		rec := s.gateway.Load(ctx)
		rec.Normalize()
		s.mu.Lock()
		s.rec = rec
		s.mu.Unlock()
		close(s.ready)

		s.logger.Info("dashboard hydrated",
			"occupied", rec.Occupied(),
			"capacity", tile.Capacity)
	})
	<-s.ready
}

// Snapshot returns a deep clone of the current record.
// Blocks until hydration.
func (s *TileStore) Snapshot() *tile.Record {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

// Commit places a tile into a slot, inserting or overwriting
// unconditionally. Blocks until hydration. cfg must not be nil - emptying
// a slot is Clear's job.
//
// Any open menu for the slot's previous occupant (or for the committed tile
// itself, on overwrite) is closed before Commit returns.
func (s *TileStore) Commit(index int, cfg *tile.TileConfig) error {
	if index < 0 || index >= tile.Capacity {
		return indexError(index)
	}
	<-s.ready

	s.mu.Lock()
	next := s.rec.Clone()
	prev := next.Tiles[index]
	next.Tiles[index] = cfg.Clone()
	s.rec = next
	s.mu.Unlock()

	if prev != nil {
		s.closeMenuFor(prev.ID)
	}
	s.closeMenuFor(cfg.ID)

	s.logger.Debug("tile committed", "slot", index, "tile_id", cfg.ID)
	s.gateway.Save(next)
	return nil
}

// Clear empties a slot. Blocks until hydration.
//
// Clearing an already-empty slot is a no-op: no persistence write, no
// delete call, so double-clear is idempotent. Clearing an occupied slot
// persists the record and issues a delete of the tile's per-id secondary
// record against the durable store.
func (s *TileStore) Clear(index int) error {
	if index < 0 || index >= tile.Capacity {
		return indexError(index)
	}
	<-s.ready

	s.mu.Lock()
	if s.rec.Tiles[index] == nil {
		s.mu.Unlock()
		return nil
	}
	next := s.rec.Clone()
	removed := next.Tiles[index]
	next.Tiles[index] = nil
	s.rec = next
	s.mu.Unlock()

	s.closeMenuFor(removed.ID)

	s.logger.Debug("tile cleared", "slot", index, "tile_id", removed.ID)
	s.gateway.Save(next)
	s.gateway.DeleteTile(removed.ID)
	return nil
}

// Reorder replaces the entire slot array in a single assignment.
// Blocks until hydration.
//
// The caller (the reorder reconciler) is responsible for supplying exactly
// tile.Capacity entries; a short or long array is padded or truncated here
// so the capacity invariant holds even under a malformed caller.
func (s *TileStore) Reorder(newOrder []*tile.TileConfig) {
	<-s.ready

	next := &tile.Record{Tiles: make([]*tile.TileConfig, len(newOrder))}
	for i, t := range newOrder {
		next.Tiles[i] = t.Clone()
	}
	next.Normalize()

	s.mu.Lock()
	s.rec = next
	s.mu.Unlock()

	s.logger.Debug("slots reordered", "occupied", next.Occupied())
	s.gateway.Save(next)
}

func (s *TileStore) closeMenuFor(tileID string) {
	if s.menu != nil {
		s.menu.CloseFor(tileID)
	}
}
