package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// DefaultDebounceWindow is how long reorder commits are coalesced.
//
// A drag interaction emits a burst of visual orders; within one window only
// the last computed array is committed, trading commit latency for write
// amplification on the two stores.
const DefaultDebounceWindow = 200 * time.Millisecond

// VisualSlot is one element of the order the user produced by dragging.
//
// The drag surface tags each element with the slot index it originally
// occupied; content never travels through the drag layer. A tag outside
// [0, tile.Capacity) means the marker could not be recovered from the
// element (use -1 when no tag was present at all).
type VisualSlot struct {
	OriginalIndex int
}

// Reorderer is the ReorderEngine's view of the tile store.
type Reorderer interface {
	Snapshot() *tile.Record
	Reorder(newOrder []*tile.TileConfig)
}

// ReorderEngine reconstructs the logical slot array from a visual order and
// commits it, debounced.
//
// Thread-safety: Apply, Flush and Close are safe from any goroutine; the
// expected caller is the single UI event loop plus the engine's own timer
// goroutine.
type ReorderEngine struct {
	store  Reorderer
	window time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending []*tile.TileConfig
	timer   *time.Timer
}

// ReorderOption configures a ReorderEngine.
type ReorderOption func(*ReorderEngine)

// WithWindow overrides the debounce window.
// Tests use a tiny window; zero or negative keeps the default.
func WithWindow(d time.Duration) ReorderOption {
	return func(e *ReorderEngine) {
		if d > 0 {
			e.window = d
		}
	}
}

// WithReorderLogger sets the logger used for degraded-path reporting.
func WithReorderLogger(l *slog.Logger) ReorderOption {
	return func(e *ReorderEngine) { e.logger = l }
}

// NewReorderEngine creates a reorder reconciler committing into store.
func NewReorderEngine(store Reorderer, opts ...ReorderOption) *ReorderEngine {
	e := &ReorderEngine{
		store:  store,
		window: DefaultDebounceWindow,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply translates a visual order into a logical array and schedules a
// debounced commit.
//
// For each visual position the tagged original index is resolved against
// the CURRENT record; an unresolvable tag degrades that position to an
// empty slot (logged, never fatal) and processing continues. The result is
// padded with empties to full capacity. Only the last array computed within
// a debounce window reaches the store.
func (e *ReorderEngine) Apply(visual []VisualSlot) {
	current := e.store.Snapshot()

	result := make([]*tile.TileConfig, 0, tile.Capacity)
	for pos, v := range visual {
		if len(result) == tile.Capacity {
			e.logger.Warn("visual order longer than capacity, truncating",
				"extra", len(visual)-tile.Capacity)
			break
		}
		if v.OriginalIndex < 0 || v.OriginalIndex >= tile.Capacity {
			e.logger.Warn("unresolvable reorder tag, degrading slot to empty",
				"visual_pos", pos,
				"tag", v.OriginalIndex)
			result = append(result, nil)
			continue
		}
		result = append(result, current.Tiles[v.OriginalIndex])
	}
	for len(result) < tile.Capacity {
		result = append(result, nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = result
	if e.timer == nil {
		e.timer = time.AfterFunc(e.window, e.flushTimer)
	}
}

// Flush commits any pending order immediately, cancelling the window.
func (e *ReorderEngine) Flush() {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if pending != nil {
		e.store.Reorder(pending)
	}
}

// Close flushes any pending order. Call when the dashboard shuts down so a
// drag immediately before exit is not lost.
func (e *ReorderEngine) Close() {
	e.Flush()
}

func (e *ReorderEngine) flushTimer() {
	e.mu.Lock()
	e.timer = nil
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if pending != nil {
		e.store.Reorder(pending)
	}
}
