// Package testutil provides deterministic test doubles for the dashboard
// core: in-memory persistence targets with injectable failures and a fake
// tree adapter.
package testutil

import (
	"context"
	"sync"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// FakeDurable is an in-memory DurableStore that records every operation.
//
// Thread-safety: all methods are safe for concurrent use; the gateway's
// fire-and-forget goroutines hit these from multiple goroutines.
//
// BeforePut, when set, runs before each PutPreferences outside the lock.
// Persistence tests use it to stall one write and exercise ordering.
type FakeDurable struct {
	mu      sync.Mutex
	rec     *tile.Record
	puts    int
	deleted []string

	BeforePut func(rec *tile.Record)

	// Injectable failures. When set, the corresponding call returns the
	// error without touching state.
	FailGet    error
	FailPut    error
	FailDelete error
}

// NewFakeDurable creates an empty fake durable store.
func NewFakeDurable() *FakeDurable {
	return &FakeDurable{}
}

// Seed installs a stored record directly, bypassing failure injection.
func (f *FakeDurable) Seed(rec *tile.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec = rec.Clone()
}

func (f *FakeDurable) GetPreferences(ctx context.Context, profile string) (*tile.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailGet != nil {
		return nil, f.FailGet
	}
	if f.rec == nil {
		return nil, nil
	}
	return f.rec.Clone(), nil
}

func (f *FakeDurable) PutPreferences(ctx context.Context, profile string, rec *tile.Record) error {
	f.mu.Lock()
	hook := f.BeforePut
	f.mu.Unlock()
	if hook != nil {
		hook(rec)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPut != nil {
		return f.FailPut
	}
	f.rec = rec.Clone()
	f.puts++
	return nil
}

func (f *FakeDurable) DeleteTile(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDelete != nil {
		return f.FailDelete
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// Stored returns a clone of the last stored record, or nil if none.
func (f *FakeDurable) Stored() *tile.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil {
		return nil
	}
	return f.rec.Clone()
}

// Puts returns how many PutPreferences calls succeeded.
func (f *FakeDurable) Puts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

// Deleted returns the tile ids deleted so far, in call order.
func (f *FakeDurable) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// FakeMirror is an in-memory MirrorStore recording whole-blob puts.
//
// Thread-safety: safe for concurrent use.
type FakeMirror struct {
	mu   sync.Mutex
	rec  *tile.Record
	puts int

	BeforePut func(rec *tile.Record)

	FailPut error
}

// NewFakeMirror creates an empty fake mirror store.
func NewFakeMirror() *FakeMirror {
	return &FakeMirror{}
}

func (f *FakeMirror) Put(rec *tile.Record) error {
	f.mu.Lock()
	hook := f.BeforePut
	f.mu.Unlock()
	if hook != nil {
		hook(rec)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPut != nil {
		return f.FailPut
	}
	f.rec = rec.Clone()
	f.puts++
	return nil
}

// Stored returns a clone of the last mirrored record, or nil if none.
func (f *FakeMirror) Stored() *tile.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil {
		return nil
	}
	return f.rec.Clone()
}

// Puts returns how many Put calls succeeded.
func (f *FakeMirror) Puts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}
