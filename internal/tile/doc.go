// Package tile defines the dashboard data model: the fixed-capacity
// preferences record, the tile configuration bound into each slot, and the
// detached snapshot of external tree nodes.
//
// DESIGN PRINCIPLES:
//
// Index is identity:
// A slot's position in Record.Tiles is the sole source of positional truth.
// TileConfig carries no index field and never learns where it lives.
//
// Records are values:
// Every consumer that holds a Record for longer than a single call must hold
// a Clone. The engine replaces its record reference atomically on mutation
// and never splices a slot in place, so aliased records would silently
// observe (or cause) torn state.
//
// Canonical serialization:
// The persisted form of a Record is produced by MarshalRecord: stable field
// order, no HTML escaping, titles NFC-normalized at bind time. Both
// persistence targets receive the same bytes for the same record.
package tile
