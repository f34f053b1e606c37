package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_AllEmptyAtCapacity(t *testing.T) {
	r := NewRecord()
	require.Len(t, r.Tiles, Capacity)
	for i, tl := range r.Tiles {
		assert.Nil(t, tl, "slot %d should be empty", i)
	}
}

func TestNormalize_PadsShortRecord(t *testing.T) {
	r := &Record{Tiles: []*TileConfig{{ID: "a", Kind: KindBookmark}}}
	r.Normalize()

	require.Len(t, r.Tiles, Capacity)
	assert.Equal(t, "a", r.Tiles[0].ID)
	assert.Nil(t, r.Tiles[1])
	assert.Nil(t, r.Tiles[Capacity-1])
}

func TestNormalize_TruncatesLongRecord(t *testing.T) {
	tiles := make([]*TileConfig, Capacity+5)
	tiles[Capacity+4] = &TileConfig{ID: "overflow"}
	r := &Record{Tiles: tiles}
	r.Normalize()

	assert.Len(t, r.Tiles, Capacity)
}

func TestNormalize_NilTiles(t *testing.T) {
	r := &Record{}
	r.Normalize()
	assert.Len(t, r.Tiles, Capacity)
}

func TestValidate_DuplicateID(t *testing.T) {
	r := NewRecord()
	r.Tiles[3] = &TileConfig{ID: "dup", Kind: KindBookmark}
	r.Tiles[7] = &TileConfig{ID: "dup", Kind: KindFolder}

	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dup")
}

func TestValidate_InvalidKind(t *testing.T) {
	r := NewRecord()
	r.Tiles[0] = &TileConfig{ID: "a", Kind: Kind("widget")}

	require.Error(t, r.Validate())
}

func TestValidate_WrongLength(t *testing.T) {
	r := &Record{Tiles: make([]*TileConfig, 10)}
	require.Error(t, r.Validate())
}

func TestClone_SharesNoMemory(t *testing.T) {
	r := NewRecord()
	r.Tiles[2] = &TileConfig{ID: "a", Kind: KindBookmark, Title: "before"}

	cp := r.Clone()
	cp.Tiles[2].Title = "after"
	cp.Tiles[5] = &TileConfig{ID: "b", Kind: KindFolder}

	assert.Equal(t, "before", r.Tiles[2].Title)
	assert.Nil(t, r.Tiles[5])
}

func TestClone_NilReceiver(t *testing.T) {
	var r *Record
	cp := r.Clone()
	require.NotNil(t, cp)
	assert.Len(t, cp.Tiles, Capacity)
}

func TestBind_DerivesKindFromNodeShape(t *testing.T) {
	gen := NewFixedGenerator("id-1", "id-2")

	folder := Bind(gen, &Node{ID: "n1", Title: "Work", Children: []*Node{}}, "#FFFFFF", "default")
	assert.Equal(t, KindFolder, folder.Kind)
	assert.Equal(t, "id-1", folder.ID)
	assert.Equal(t, "n1", folder.SourceNodeID)

	leaf := Bind(gen, &Node{ID: "n2", Title: "Example", URL: "https://example.com"}, "#000000", "default")
	assert.Equal(t, KindBookmark, leaf.Kind)
	assert.Equal(t, "https://example.com", leaf.URL)
}

func TestBind_NormalizesTitleToNFC(t *testing.T) {
	gen := NewFixedGenerator("id-1")

	// "é" as 'e' + COMBINING ACUTE ACCENT (NFD) must come out precomposed.
	decomposed := "Café"
	got := Bind(gen, &Node{ID: "n1", Title: decomposed, URL: "https://c.example"}, "#FFF", "i")

	assert.Equal(t, "Café", got.Title)
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("only")
	_ = gen.Generate()
	assert.Panics(t, func() { gen.Generate() })
}

func TestUUIDv7Generator_UniqueAndSortable(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
