// Package engine implements the dashboard core: the tile store that owns
// the canonical slot array, the reorder reconciler that translates drag
// output back into that array, and the menu coordinator.
//
// ARCHITECTURE:
//
// Single-Writer Mutation Surface:
// All mutations (Commit, Clear, Reorder) run to completion under one lock.
// There is exactly one logical writer - the overlay UI's event loop - and
// the lock exists so the guarantee survives a future caller that is not
// single-threaded.
//
// Hydration Gate:
// No mutation is accepted until Hydrate has applied the stored record.
// Hydration itself never fails: an absent, unreadable, or corrupt record
// degrades to an all-empty one, which counts as hydrated.
//
// Records Are Replaced, Never Spliced:
// Every mutation builds a fresh record and swaps the reference in one
// assignment. Persistence goroutines and snapshot holders therefore never
// observe a half-applied mutation.
//
// Persistence Is Fire-and-Forget:
// Each mutation hands the gateway the new record and returns without
// waiting. A failed write is logged and abandoned; in-memory state stays
// authoritative.
package engine
