// Package dialdeck assembles the tile dashboard core: a fixed-capacity
// slot array persisted to a durable SQLite store and a quota-limited
// mirror blob, drag reordering with debounced commits, and two independent
// folder-navigation stacks over a host-supplied tree source.
//
// The host embeds the dashboard like this:
//
//	dash, err := dialdeck.Open(ctx, cfg, adapter)
//	if err != nil { ... }
//	defer dash.Close()
//
//	dash.Picker.Enter(ctx, folderID)     // browse in the picker overlay
//	dash.BindAt(ctx, 5, nodeID, c, icon) // confirm a selection into slot 5
//	dash.Reorder.Apply(visual)           // drag-end
//	dash.Tiles.Clear(5)                  // remove a tile
package dialdeck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dialdeck/dialdeck/internal/config"
	"github.com/dialdeck/dialdeck/internal/engine"
	"github.com/dialdeck/dialdeck/internal/mirror"
	"github.com/dialdeck/dialdeck/internal/nav"
	"github.com/dialdeck/dialdeck/internal/persist"
	"github.com/dialdeck/dialdeck/internal/store"
	"github.com/dialdeck/dialdeck/internal/tile"
)

// Config re-exports the configuration file shape.
type Config = config.Config

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config { return config.Default() }

// LoadConfig reads a configuration file; a missing file yields defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// Dashboard is a fully wired dashboard core for one profile.
type Dashboard struct {
	Tiles   *engine.TileStore
	Reorder *engine.ReorderEngine
	Menu    *engine.MenuCoordinator
	Picker  *nav.Stack
	Viewer  *nav.Stack

	adapter nav.TreeAdapter
	ids     tile.IDGenerator
	gateway *persist.Gateway
	db      *store.Store
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	logger *slog.Logger
	ids    tile.IDGenerator
}

// WithLogger sets the logger shared by all components.
func WithLogger(l *slog.Logger) Option {
	return func(o *openOptions) { o.logger = l }
}

// WithIDGenerator overrides tile ID generation (tests).
func WithIDGenerator(g tile.IDGenerator) Option {
	return func(o *openOptions) { o.ids = g }
}

// Open wires the dashboard and hydrates it from storage.
//
// Open blocks until hydration completes, so the returned dashboard accepts
// mutations immediately. Storage-level degradation (missing or corrupt
// record) does not fail Open; it hydrates an empty dashboard. Only genuine
// setup errors - an unopenable database, invalid configuration - are
// returned.
func Open(ctx context.Context, cfg Config, adapter nav.TreeAdapter, opts ...Option) (*Dashboard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("open dashboard: %w", err)
	}
	o := &openOptions{
		logger: slog.Default(),
		ids:    tile.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DurablePath), 0o755); err != nil {
		return nil, fmt.Errorf("open dashboard: %w", err)
	}
	db, err := store.Open(cfg.DurablePath)
	if err != nil {
		return nil, fmt.Errorf("open dashboard: %w", err)
	}

	m := mirror.New(cfg.MirrorPath)
	m.Quota = cfg.MirrorQuotaBytes

	gateway := persist.New(db, m, cfg.Profile, persist.WithLogger(o.logger))
	menu := engine.NewMenuCoordinator()
	tiles := engine.New(gateway,
		engine.WithLogger(o.logger),
		engine.WithMenu(menu))
	tiles.Hydrate(ctx)

	reorder := engine.NewReorderEngine(tiles,
		engine.WithWindow(cfg.ReorderWindow()),
		engine.WithReorderLogger(o.logger))

	return &Dashboard{
		Tiles:   tiles,
		Reorder: reorder,
		Menu:    menu,
		Picker:  nav.NewStack("picker", adapter, nav.WithLogger(o.logger)),
		Viewer:  nav.NewStack("viewer", adapter, nav.WithLogger(o.logger)),
		adapter: adapter,
		ids:     o.ids,
		gateway: gateway,
		db:      db,
	}, nil
}

// BindAt resolves a tree node and commits it into a slot: the
// selection-confirmation flow of the picker overlay.
//
// A node the tree source no longer knows is a no-op returning nil, matching
// navigation's treatment of lookup misses. The picker stack is reset either
// way - confirming a selection dismisses the overlay.
func (d *Dashboard) BindAt(ctx context.Context, index int, nodeID, color, icon string) error {
	if index < 0 || index >= tile.Capacity {
		return fmt.Errorf("bind: %w", engine.ErrIndexOutOfRange)
	}
	defer d.Picker.Reset()

	node, err := nav.Snapshot(ctx, d.adapter, nodeID)
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	if node == nil {
		return nil
	}
	return d.Tiles.Commit(index, tile.Bind(d.ids, node, color, icon))
}

// Close flushes any pending reorder, drains in-flight persistence writes,
// and closes the durable store.
func (d *Dashboard) Close() error {
	d.Reorder.Close()
	d.gateway.Wait()
	return d.db.Close()
}
