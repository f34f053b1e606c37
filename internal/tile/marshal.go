package tile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalRecord serializes a record to its canonical persisted form.
//
// Canonical here means:
//  1. Field order is the declaration order of TileConfig (stable across runs)
//  2. No HTML escaping (< > & pass through)
//  3. Empty slots serialize as literal null
//
// Both persistence targets store exactly these bytes, so a record that
// round-trips through either store compares byte-equal.
func MarshalRecord(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalRecord parses a persisted blob back into a Record.
//
// Shape errors are returned, not repaired: the caller (the persistence
// gateway) decides whether a corrupt blob degrades to an empty record.
// Length is part of the shape. MarshalRecord always writes exactly Capacity
// entries, nulls included, so a wrong-length array can only be a foreign or
// corrupt blob and is rejected rather than padded.
func UnmarshalRecord(data []byte) (*Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("unmarshal record: empty blob")
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if r.Tiles == nil {
		return nil, fmt.Errorf("unmarshal record: missing tiles field")
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &r, nil
}

// MarshalConfig serializes a single tile config (the per-id secondary record
// in the durable store) with the same encoder settings as MarshalRecord.
func MarshalConfig(c *TileConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
