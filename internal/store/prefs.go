package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dialdeck/dialdeck/internal/tile"
)

// GetPreferences reads the whole-record blob for a profile.
//
// Returns (nil, nil) when no record exists - absence is not an error, it is
// the fresh-install state. A blob that exists but fails shape validation IS
// an error; the persistence gateway decides how to degrade.
func (s *Store) GetPreferences(ctx context.Context, profile string) (*tile.Record, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM preferences WHERE profile = ?`, profile,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	rec, err := tile.UnmarshalRecord([]byte(blob))
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return rec, nil
}

// PutPreferences upserts the whole-record blob and re-syncs the per-tile
// secondary rows in a single transaction.
//
// The tile rows are derived state: they are deleted and rebuilt from the
// record on every put, so they can never drift from the blob under normal
// operation. (A failed DeleteTile after a crash can leave an orphan row;
// the blob is the source of truth, so orphans are acceptable garbage.)
func (s *Store) PutPreferences(ctx context.Context, profile string, rec *tile.Record) error {
	blob, err := tile.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("put preferences: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put preferences: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO preferences (profile, record, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at
	`, profile, string(blob), now)
	if err != nil {
		return fmt.Errorf("put preferences: upsert blob: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tiles WHERE profile = ?`, profile); err != nil {
		return fmt.Errorf("put preferences: clear tile rows: %w", err)
	}

	for slot, t := range rec.Tiles {
		if t == nil {
			continue
		}
		cfg, err := tile.MarshalConfig(t)
		if err != nil {
			return fmt.Errorf("put preferences: slot %d: %w", slot, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tiles (id, profile, slot, config)
			VALUES (?, ?, ?, ?)
		`, t.ID, profile, slot, string(cfg))
		if err != nil {
			return fmt.Errorf("put preferences: insert tile row %q: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put preferences: commit: %w", err)
	}
	return nil
}

// DeleteTile removes the per-id secondary row for a cleared tile.
//
// Deleting a tile id that has no row is not an error - the row may already
// have been dropped by a PutPreferences re-sync racing ahead of the delete.
func (s *Store) DeleteTile(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tiles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete tile %q: %w", id, err)
	}
	return nil
}

// TileRow is one per-tile secondary record, used by the diagnostic CLI.
type TileRow struct {
	ID      string
	Profile string
	Slot    int
	Config  string
}

// ListTiles returns the per-tile rows for a profile in slot order.
// Returns an empty slice (not nil) if no rows exist.
func (s *Store) ListTiles(ctx context.Context, profile string) ([]TileRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile, slot, config
		FROM tiles
		WHERE profile = ?
		ORDER BY slot ASC
	`, profile)
	if err != nil {
		return nil, fmt.Errorf("list tiles: %w", err)
	}
	defer rows.Close()

	out := []TileRow{}
	for rows.Next() {
		var r TileRow
		if err := rows.Scan(&r.ID, &r.Profile, &r.Slot, &r.Config); err != nil {
			return nil, fmt.Errorf("list tiles: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tiles: iterate: %w", err)
	}
	return out, nil
}

// UpdatedAt returns the last write time of a profile's blob, or zero time if
// the profile has never been written.
func (s *Store) UpdatedAt(ctx context.Context, profile string) (time.Time, error) {
	var stamp string
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM preferences WHERE profile = ?`, profile,
	).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("updated at: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("updated at: parse %q: %w", stamp, err)
	}
	return ts, nil
}
