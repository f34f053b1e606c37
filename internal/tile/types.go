package tile

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Capacity is the fixed number of slots in a dashboard record.
//
// The layout is a fixed-size positional array: records shorter than Capacity
// are padded with empty slots on load, longer ones truncated. Variable-size
// grids are explicitly out of scope.
const Capacity = 60

// Kind distinguishes what a tile was bound from.
type Kind string

const (
	// KindBookmark is a tile bound from a leaf node (has a URL).
	KindBookmark Kind = "bookmark"
	// KindFolder is a tile bound from a container node.
	KindFolder Kind = "folder"
)

// ValidKinds defines the allowed tile kinds.
var ValidKinds = map[Kind]bool{
	KindBookmark: true,
	KindFolder:   true,
}

// TileConfig is the content occupying one non-empty slot.
//
// ID is generated once at bind time and never reused. SourceNodeID is a weak
// back-reference to the external tree node the tile was bound from; it is
// never dereferenced directly, only handed back to a TreeAdapter for
// re-resolution.
type TileConfig struct {
	ID           string `json:"id"`
	Kind         Kind   `json:"kind"`
	SourceNodeID string `json:"sourceNodeId"`
	Title        string `json:"title"`
	URL          string `json:"url,omitempty"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
}

// Clone returns an independent copy of the config.
func (c *TileConfig) Clone() *TileConfig {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Node is a detached snapshot of an external tree node.
//
// A Node with a nil Children slice and a URL is a bookmark; a Node with
// Children (possibly empty) is a folder. Nodes are snapshots: mutating the
// external tree after a snapshot does not affect them.
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// IsFolder reports whether the node can be descended into.
func (n *Node) IsFolder() bool {
	return n != nil && n.Children != nil
}

// Record is the unit of persistence: the whole ordered slot array.
//
// INVARIANT: len(Tiles) == Capacity at all times once the record has passed
// through Normalize. A nil entry is an empty slot.
type Record struct {
	Tiles []*TileConfig `json:"tiles"`
}

// NewRecord returns an all-empty record of exactly Capacity slots.
func NewRecord() *Record {
	return &Record{Tiles: make([]*TileConfig, Capacity)}
}

// Clone returns a deep copy of the record.
// The result shares no memory with the receiver.
func (r *Record) Clone() *Record {
	if r == nil {
		return NewRecord()
	}
	out := &Record{Tiles: make([]*TileConfig, len(r.Tiles))}
	for i, t := range r.Tiles {
		out.Tiles[i] = t.Clone()
	}
	return out
}

// Normalize pads or truncates the slot array to exactly Capacity entries.
//
// Defensive: callers that assemble records by hand (reorder reconciliation,
// hydration) route through Normalize so the capacity invariant holds even
// under a malformed input. Persisted blobs are different: UnmarshalRecord
// rejects a wrong-length array outright instead of repairing it.
func (r *Record) Normalize() {
	switch {
	case r.Tiles == nil:
		r.Tiles = make([]*TileConfig, Capacity)
	case len(r.Tiles) < Capacity:
		padded := make([]*TileConfig, Capacity)
		copy(padded, r.Tiles)
		r.Tiles = padded
	case len(r.Tiles) > Capacity:
		r.Tiles = r.Tiles[:Capacity]
	}
}

// Validate checks structural invariants: exact capacity, valid kinds, and
// slot-ID uniqueness across the whole record.
func (r *Record) Validate() error {
	if len(r.Tiles) != Capacity {
		return fmt.Errorf("record has %d slots, want %d", len(r.Tiles), Capacity)
	}
	seen := make(map[string]int, len(r.Tiles))
	for i, t := range r.Tiles {
		if t == nil {
			continue
		}
		if t.ID == "" {
			return fmt.Errorf("slot %d: empty tile id", i)
		}
		if !ValidKinds[t.Kind] {
			return fmt.Errorf("slot %d: invalid kind %q", i, t.Kind)
		}
		if prev, dup := seen[t.ID]; dup {
			return fmt.Errorf("slot %d: tile id %q already used by slot %d", i, t.ID, prev)
		}
		seen[t.ID] = i
	}
	return nil
}

// Occupied returns the number of non-empty slots.
func (r *Record) Occupied() int {
	n := 0
	for _, t := range r.Tiles {
		if t != nil {
			n++
		}
	}
	return n
}

// Bind creates a TileConfig from an external tree node.
//
// The title is NFC-normalized so the persisted form is byte-stable regardless
// of how the host composed its Unicode. Kind is derived from the node shape:
// folders become KindFolder, everything else KindBookmark.
func Bind(gen IDGenerator, n *Node, color, icon string) *TileConfig {
	kind := KindBookmark
	if n.IsFolder() {
		kind = KindFolder
	}
	return &TileConfig{
		ID:           gen.Generate(),
		Kind:         kind,
		SourceNodeID: n.ID,
		Title:        norm.NFC.String(n.Title),
		URL:          n.URL,
		Color:        color,
		Icon:         icon,
	}
}
