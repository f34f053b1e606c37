// Package mirror implements the secondary persistence target: a single
// quota-limited blob that shadows the durable store for cross-device
// availability. The only write operation is a whole-blob overwrite; there is
// no delete and no partial update, so a stale entry is simply overwritten by
// the next put.
package mirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// DefaultQuota is the byte limit for the mirrored blob.
//
// The mirror models a sync target with a far smaller quota than the durable
// store; writes that would exceed it fail loudly instead of truncating.
const DefaultQuota = 100 * 1024

// ErrQuotaExceeded is returned when a serialized record does not fit the
// mirror's quota. The write is not attempted.
var ErrQuotaExceeded = errors.New("mirror: blob exceeds quota")

// Store is a whole-blob mirror backed by one JSON file.
type Store struct {
	Path  string
	Quota int // bytes; 0 means DefaultQuota
}

// New creates a mirror store writing to path with the default quota.
func New(path string) *Store {
	return &Store{Path: path, Quota: DefaultQuota}
}

func (s *Store) quota() int {
	if s.Quota <= 0 {
		return DefaultQuota
	}
	return s.Quota
}

// Put overwrites the mirrored blob with the canonical serialization of rec.
//
// The blob is written to a temp file in the same directory and renamed into
// place, so a crash mid-write leaves the previous blob intact rather than a
// torn one.
func (s *Store) Put(rec *tile.Record) error {
	blob, err := tile.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("mirror put: %w", err)
	}
	if len(blob) > s.quota() {
		return fmt.Errorf("mirror put: %w (%d > %d bytes)", ErrQuotaExceeded, len(blob), s.quota())
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mirror put: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".mirror-*")
	if err != nil {
		return fmt.Errorf("mirror put: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("mirror put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("mirror put: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("mirror put: %w", err)
	}
	return nil
}

// Get reads the mirrored blob back.
//
// Returns (nil, nil) when no blob has ever been written. The engine never
// reads the mirror - the durable store is authoritative on read - but the
// diagnostic CLI uses Get for export/import recovery.
func (s *Store) Get() (*tile.Record, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mirror get: %w", err)
	}
	rec, err := tile.UnmarshalRecord(data)
	if err != nil {
		return nil, fmt.Errorf("mirror get: %w", err)
	}
	return rec, nil
}
