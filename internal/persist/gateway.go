// Package persist fans dashboard mutations out to the two persistence
// targets: the durable keyed store and the quota-limited mirror.
//
// There is no cross-store transaction. Writes are fire-and-forget: each
// target receives its own clone of the record current at the moment the
// write was issued, the two targets may complete in either order, and a
// failed write is logged and abandoned - in-memory state stays
// authoritative and converges both stores on the next mutation.
package persist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// DurableStore is the primary persistence target. Implemented by
// store.Store (SQLite) in production.
type DurableStore interface {
	GetPreferences(ctx context.Context, profile string) (*tile.Record, error)
	PutPreferences(ctx context.Context, profile string, rec *tile.Record) error
	DeleteTile(ctx context.Context, id string) error
}

// MirrorStore is the secondary whole-blob target. Overwrite only: no
// delete, no partial update. Implemented by mirror.Store in production.
type MirrorStore interface {
	Put(rec *tile.Record) error
}

// Gateway owns both persistence targets for one profile.
//
// Thread-safety model:
//   - Load(): called once, before any Save/DeleteTile
//   - Save()/DeleteTile(): safe from any goroutine; each spawns
//     fire-and-forget goroutines internally
//   - Wait(): drains in-flight writes (shutdown, tests)
//
// WRITE ORDERING: writes to one target execute in issue order. Each target
// keeps a tail channel closed when its newest queued write finishes; the
// next write waits on it before touching the store. Without this, a slow
// early put could land after a later one and leave the store at a stale
// record. The two targets stay unordered relative to each other.
type Gateway struct {
	durable DurableStore
	mirror  MirrorStore
	profile string
	logger  *slog.Logger
	wg      sync.WaitGroup

	mu          sync.Mutex
	durableTail chan struct{}
	mirrorTail  chan struct{}
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used for degraded-path reporting.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New creates a Gateway writing records for the given profile.
func New(durable DurableStore, mirror MirrorStore, profile string, opts ...Option) *Gateway {
	done := make(chan struct{})
	close(done)
	g := &Gateway{
		durable:     durable,
		mirror:      mirror,
		profile:     profile,
		logger:      slog.Default(),
		durableTail: done,
		mirrorTail:  done,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// enqueueDurable appends one write to the durable queue and returns the
// channel the write must wait on plus the one it must close when finished.
func (g *Gateway) enqueueDurable() (prev, done chan struct{}) {
	done = make(chan struct{})
	g.mu.Lock()
	prev, g.durableTail = g.durableTail, done
	g.mu.Unlock()
	return prev, done
}

func (g *Gateway) enqueueMirror() (prev, done chan struct{}) {
	done = make(chan struct{})
	g.mu.Lock()
	prev, g.mirrorTail = g.mirrorTail, done
	g.mu.Unlock()
	return prev, done
}

// Load reads the durable store and returns the record to hydrate from.
//
// Load never fails: an absent record (fresh install) and an unreadable or
// corrupt record both yield an all-empty record of full capacity. Corruption
// is logged once at WARN; the bad blob is left in place and will be
// overwritten by the first mutation.
//
// The mirror is intentionally not consulted here: the durable store is
// authoritative on read, and a mirror left stale by a failed durable delete
// is repaired by the next whole-blob put rather than trusted.
func (g *Gateway) Load(ctx context.Context) *tile.Record {
	rec, err := g.durable.GetPreferences(ctx, g.profile)
	if err != nil {
		g.logger.Warn("stored preferences unreadable, starting empty",
			"profile", g.profile,
			"error", err)
		return tile.NewRecord()
	}
	if rec == nil {
		g.logger.Debug("no stored preferences, starting empty", "profile", g.profile)
		return tile.NewRecord()
	}
	rec.Normalize()
	return rec
}

// Save pushes the record to both targets, fire-and-forget.
//
// Each target gets its own deep clone taken synchronously, so later
// mutations by the caller cannot leak into an in-flight write. Per-target
// queue positions are also taken synchronously, so two Saves land in each
// store in call order and last-write-wins holds even when an earlier write
// is slow.
func (g *Gateway) Save(rec *tile.Record) {
	forDurable := rec.Clone()
	forMirror := rec.Clone()
	prevD, doneD := g.enqueueDurable()
	prevM, doneM := g.enqueueMirror()

	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		defer close(doneD)
		<-prevD
		if err := g.durable.PutPreferences(context.Background(), g.profile, forDurable); err != nil {
			g.logger.Error("durable store write failed",
				"profile", g.profile,
				"error", err)
		}
	}()
	go func() {
		defer g.wg.Done()
		defer close(doneM)
		<-prevM
		if err := g.mirror.Put(forMirror); err != nil {
			g.logger.Error("mirror store write failed",
				"profile", g.profile,
				"error", err)
		}
	}()
}

// DeleteTile issues a fire-and-forget delete of the per-id secondary record
// against the durable store only (the mirror has no delete operation). The
// delete joins the durable queue, so it cannot overtake the record put
// issued by the same clear.
//
// Failure is logged, not retried, and never rolls back the in-memory clear:
// an orphaned durable entry is acceptable garbage.
func (g *Gateway) DeleteTile(id string) {
	prev, done := g.enqueueDurable()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer close(done)
		<-prev
		if err := g.durable.DeleteTile(context.Background(), id); err != nil {
			g.logger.Error("tile delete failed",
				"tile_id", id,
				"error", err)
		}
	}()
}

// Wait blocks until all in-flight writes have completed.
func (g *Gateway) Wait() {
	g.wg.Wait()
}
