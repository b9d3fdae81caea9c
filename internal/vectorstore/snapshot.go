package vectorstore

import (
	"encoding/json"
	"fmt"
)

const snapshotVersion = 1

// Snapshot is the serialized form of a Store: every entry in insertion
// order. A restored store answers any query with the same IDs and scores
// as the original.
type Snapshot struct {
	Version int     `json:"version"`
	Dim     int     `json:"dim"`
	Entries []Entry `json:"entries"`
}

// Snapshot captures the store's full state.
func (s *Store) Snapshot() *Snapshot {
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return &Snapshot{Version: snapshotVersion, Dim: s.dim, Entries: entries}
}

// FromSnapshot rebuilds a store from a snapshot, preserving insertion order.
func FromSnapshot(snap *Snapshot) (*Store, error) {
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	s := New()
	s.dim = snap.Dim
	for _, e := range snap.Entries {
		if len(e.Embedding) != snap.Dim {
			return nil, fmt.Errorf("%w: entry %q has %d, snapshot declares %d",
				ErrDimensionMismatch, e.Chunk.ID, len(e.Embedding), snap.Dim)
		}
		s.byID[e.Chunk.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s, nil
}

// Marshal encodes the snapshot for persistence.
func (snap *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(snap)
}

// UnmarshalSnapshot decodes bytes produced by Marshal.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
