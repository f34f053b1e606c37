package persist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialdeck/dialdeck/internal/testutil"
	"github.com/dialdeck/dialdeck/internal/tile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway() (*Gateway, *testutil.FakeDurable, *testutil.FakeMirror) {
	durable := testutil.NewFakeDurable()
	m := testutil.NewFakeMirror()
	g := New(durable, m, "default", WithLogger(discardLogger()))
	return g, durable, m
}

func occupied(t *testing.T, rec *tile.Record) int {
	t.Helper()
	require.NotNil(t, rec)
	return rec.Occupied()
}

func TestLoad_FreshInstall(t *testing.T) {
	g, _, _ := newTestGateway()

	rec := g.Load(context.Background())
	require.Len(t, rec.Tiles, tile.Capacity)
	assert.Equal(t, 0, occupied(t, rec))
}

func TestLoad_ReadFailureDegradesToEmpty(t *testing.T) {
	g, durable, _ := newTestGateway()
	durable.FailGet = errors.New("disk on fire")

	rec := g.Load(context.Background())
	require.Len(t, rec.Tiles, tile.Capacity)
	assert.Equal(t, 0, occupied(t, rec))
}

func TestLoad_ReturnsStoredRecord(t *testing.T) {
	g, durable, _ := newTestGateway()
	seeded := tile.NewRecord()
	seeded.Tiles[5] = &tile.TileConfig{ID: "x", Kind: tile.KindBookmark, SourceNodeID: "n", Title: "t", Color: "#fff", Icon: "i"}
	durable.Seed(seeded)

	rec := g.Load(context.Background())
	require.NotNil(t, rec.Tiles[5])
	assert.Equal(t, "x", rec.Tiles[5].ID)
}

func TestSave_ReachesBothStores(t *testing.T) {
	g, durable, m := newTestGateway()

	rec := tile.NewRecord()
	rec.Tiles[0] = &tile.TileConfig{ID: "a", Kind: tile.KindFolder, SourceNodeID: "n", Title: "t", Color: "#fff", Icon: "i"}
	g.Save(rec)
	g.Wait()

	require.NotNil(t, durable.Stored())
	require.NotNil(t, m.Stored())
	assert.Equal(t, "a", durable.Stored().Tiles[0].ID)
	assert.Equal(t, "a", m.Stored().Tiles[0].ID)
}

func TestSave_CloneTakenBeforeLaterMutation(t *testing.T) {
	g, durable, m := newTestGateway()

	rec := tile.NewRecord()
	rec.Tiles[0] = &tile.TileConfig{ID: "a", Kind: tile.KindBookmark, SourceNodeID: "n", Title: "before", Color: "#fff", Icon: "i"}
	g.Save(rec)

	// Mutating after Save must not leak into the in-flight write.
	rec.Tiles[0].Title = "after"
	g.Wait()

	assert.Equal(t, "before", durable.Stored().Tiles[0].Title)
	assert.Equal(t, "before", m.Stored().Tiles[0].Title)
}

func TestSave_DurableFailureDoesNotBlockMirror(t *testing.T) {
	g, durable, m := newTestGateway()
	durable.FailPut = errors.New("quota")

	g.Save(tile.NewRecord())
	g.Wait()

	assert.Nil(t, durable.Stored())
	assert.Equal(t, 1, m.Puts())
}

func TestSave_MirrorFailureDoesNotBlockDurable(t *testing.T) {
	g, durable, m := newTestGateway()
	m.FailPut = errors.New("quota")

	g.Save(tile.NewRecord())
	g.Wait()

	assert.Equal(t, 1, durable.Puts())
	assert.Equal(t, 0, m.Puts())
}

func TestSave_SlowFirstWriteCannotOvertakeSecond(t *testing.T) {
	g, durable, m := newTestGateway()

	// Stall the first write to each store. If the gateway let the second
	// write run concurrently it would finish first and the stalled one
	// would land on top, leaving the store at the older record.
	var durableOnce, mirrorOnce sync.Once
	durable.BeforePut = func(*tile.Record) {
		durableOnce.Do(func() { time.Sleep(100 * time.Millisecond) })
	}
	m.BeforePut = func(*tile.Record) {
		mirrorOnce.Do(func() { time.Sleep(100 * time.Millisecond) })
	}

	stale := tile.NewRecord()
	stale.Tiles[0] = &tile.TileConfig{ID: "stale", Kind: tile.KindBookmark, SourceNodeID: "n", Title: "t", Color: "#fff", Icon: "i"}
	latest := tile.NewRecord()
	latest.Tiles[0] = &tile.TileConfig{ID: "latest", Kind: tile.KindBookmark, SourceNodeID: "n", Title: "t", Color: "#fff", Icon: "i"}

	g.Save(stale)
	g.Save(latest)
	g.Wait()

	assert.Equal(t, 2, durable.Puts())
	require.NotNil(t, durable.Stored().Tiles[0])
	assert.Equal(t, "latest", durable.Stored().Tiles[0].ID)
	require.NotNil(t, m.Stored().Tiles[0])
	assert.Equal(t, "latest", m.Stored().Tiles[0].ID)
}

func TestDeleteTile_DurableOnly(t *testing.T) {
	g, durable, m := newTestGateway()

	g.DeleteTile("x")
	g.Wait()

	assert.Equal(t, []string{"x"}, durable.Deleted())
	assert.Equal(t, 0, m.Puts(), "mirror has no delete operation and must not be touched")
}

func TestDeleteTile_FailureIsSwallowed(t *testing.T) {
	g, durable, _ := newTestGateway()
	durable.FailDelete = errors.New("locked")

	g.DeleteTile("x") // must not panic or propagate
	g.Wait()

	assert.Empty(t, durable.Deleted())
}
