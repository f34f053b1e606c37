package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// seedTiles commits n distinct tiles into the first n slots.
func seedTiles(t *testing.T, f *fixture, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		cfg := exampleTile()
		cfg.ID = fmt.Sprintf("tile-%d", i)
		cfg.Title = fmt.Sprintf("Tile %d", i)
		require.NoError(t, f.store.Commit(i, cfg))
	}
	f.gateway.Wait()
}

// identityOrder returns the visual order that moves nothing.
func identityOrder() []VisualSlot {
	visual := make([]VisualSlot, tile.Capacity)
	for i := range visual {
		visual[i] = VisualSlot{OriginalIndex: i}
	}
	return visual
}

func TestApply_IdentityPermutationIsDeepEqual(t *testing.T) {
	f := newFixture(t)
	seedTiles(t, f, 4)
	before := f.store.Snapshot()

	e := NewReorderEngine(f.store, WithReorderLogger(discardLogger()))
	e.Apply(identityOrder())
	e.Flush()

	assert.Equal(t, before, f.store.Snapshot())
}

func TestApply_MovesTileToNewPosition(t *testing.T) {
	f := newFixture(t)
	seedTiles(t, f, 6)

	// Drag slot 5's tile to visual position 2; everything else shifts by
	// one, exactly as the drag surface reports it.
	visual := identityOrder()
	moved := visual[5]
	copy(visual[3:6], visual[2:5])
	visual[2] = moved

	e := NewReorderEngine(f.store, WithReorderLogger(discardLogger()))
	e.Apply(visual)
	e.Flush()

	rec := f.store.Snapshot()
	require.Len(t, rec.Tiles, tile.Capacity)
	assert.Equal(t, "tile-5", rec.Tiles[2].ID)
	assert.Equal(t, "tile-2", rec.Tiles[3].ID)
	assert.Equal(t, "tile-3", rec.Tiles[4].ID)
	assert.Equal(t, "tile-4", rec.Tiles[5].ID)
	assert.Equal(t, "tile-0", rec.Tiles[0].ID, "non-moved slot must be unchanged")
	assert.Equal(t, "tile-1", rec.Tiles[1].ID, "non-moved slot must be unchanged")
	assert.Equal(t, 6, rec.Occupied())
}

func TestApply_UnresolvableTagDegradesToEmpty(t *testing.T) {
	f := newFixture(t)
	seedTiles(t, f, 3)

	visual := identityOrder()
	// Position 1 lost its tag entirely; position 2 carries garbage.
	visual[1] = VisualSlot{OriginalIndex: -1}
	visual[2] = VisualSlot{OriginalIndex: tile.Capacity * 2}

	e := NewReorderEngine(f.store, WithReorderLogger(discardLogger()))
	e.Apply(visual)
	e.Flush()

	rec := f.store.Snapshot()
	assert.Equal(t, "tile-0", rec.Tiles[0].ID, "positions after a bad tag must still be processed")
	assert.Nil(t, rec.Tiles[1])
	assert.Nil(t, rec.Tiles[2])
}

func TestApply_ShortVisualOrderIsPadded(t *testing.T) {
	f := newFixture(t)
	seedTiles(t, f, 2)

	e := NewReorderEngine(f.store, WithReorderLogger(discardLogger()))
	e.Apply([]VisualSlot{{OriginalIndex: 1}, {OriginalIndex: 0}})
	e.Flush()

	rec := f.store.Snapshot()
	require.Len(t, rec.Tiles, tile.Capacity)
	assert.Equal(t, "tile-1", rec.Tiles[0].ID)
	assert.Equal(t, "tile-0", rec.Tiles[1].ID)
	assert.Equal(t, 2, rec.Occupied())
}

func TestApply_OverlongVisualOrderIsTruncated(t *testing.T) {
	f := newFixture(t)
	seedTiles(t, f, 1)

	visual := identityOrder()
	visual = append(visual, VisualSlot{OriginalIndex: 0}, VisualSlot{OriginalIndex: 0})

	e := NewReorderEngine(f.store, WithReorderLogger(discardLogger()))
	e.Apply(visual)
	e.Flush()

	assert.Len(t, f.store.Snapshot().Tiles, tile.Capacity)
}

func TestApply_BurstCollapsesToSingleCommit(t *testing.T) {
	f := newFixture(t)
	seedTiles(t, f, 3)
	putsBefore := f.durable.Puts()

	e := NewReorderEngine(f.store,
		WithWindow(40*time.Millisecond),
		WithReorderLogger(discardLogger()))

	// Three rapid orders within one window; only the last may commit.
	swap01 := identityOrder()
	swap01[0], swap01[1] = swap01[1], swap01[0]
	swap02 := identityOrder()
	swap02[0], swap02[2] = swap02[2], swap02[0]

	e.Apply(swap01)
	e.Apply(identityOrder())
	e.Apply(swap02)

	time.Sleep(150 * time.Millisecond)
	f.gateway.Wait()

	assert.Equal(t, putsBefore+1, f.durable.Puts(), "burst must collapse to one durable write")
	rec := f.store.Snapshot()
	assert.Equal(t, "tile-2", rec.Tiles[0].ID)
	assert.Equal(t, "tile-0", rec.Tiles[2].ID)
}

func TestFlush_WithoutPendingIsNoOp(t *testing.T) {
	f := newFixture(t)
	putsBefore := f.durable.Puts()

	e := NewReorderEngine(f.store, WithReorderLogger(discardLogger()))
	e.Flush()
	f.gateway.Wait()

	assert.Equal(t, putsBefore, f.durable.Puts())
}

func TestClose_FlushesPendingOrder(t *testing.T) {
	f := newFixture(t)
	seedTiles(t, f, 2)

	e := NewReorderEngine(f.store,
		WithWindow(time.Hour), // window never fires on its own
		WithReorderLogger(discardLogger()))
	swapped := identityOrder()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	e.Apply(swapped)
	e.Close()

	rec := f.store.Snapshot()
	assert.Equal(t, "tile-1", rec.Tiles[0].ID)
	assert.Equal(t, "tile-0", rec.Tiles[1].ID)
}
