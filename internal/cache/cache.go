// Package cache maps repository URLs to persisted vector store snapshots so
// a previously analyzed repository can be restored without re-cloning,
// re-parsing, or re-embedding it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/AyushMishra1006/endee-code-assistant/internal/vectorstore"
)

// Fingerprint returns a stable 16-hex-char identifier for a repository URL.
// The URL is normalized first so trivially different spellings of the same
// repository map to the same record.
func Fingerprint(repoURL string) string {
	sum := sha256.Sum256([]byte(NormalizeURL(repoURL)))
	return hex.EncodeToString(sum[:])[:16]
}

// NormalizeURL canonicalizes a repository URL: whitespace trimmed, scheme
// and host lowercased, trailing slash and ".git" suffix dropped.
func NormalizeURL(repoURL string) string {
	s := strings.TrimSpace(repoURL)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// BlobStore is the byte-oriented persistence medium the cache writes
// through: opaque values addressable by fingerprint.
type BlobStore interface {
	Put(key string, info BlobInfo, data []byte) error
	// Get returns the stored bytes and whether the key existed.
	Get(key string) ([]byte, bool, error)
	// Has checks existence without loading data.
	Has(key string) (bool, error)
	Delete(key string) error
	List() ([]BlobInfo, error)
	Close() error
}

// BlobInfo is per-record metadata kept alongside a snapshot.
type BlobInfo struct {
	Key        string
	RepoURL    string
	ChunkCount int
	SizeBytes  int64
	CreatedAt  time.Time
}

// Stats summarizes the cache contents.
type Stats struct {
	Repos      int
	TotalBytes int64
	Records    []BlobInfo
}

// Manager persists and restores vector store snapshots keyed by repository
// fingerprint. At most one record exists per fingerprint; Save overwrites.
// There is no eviction and no upstream freshness check: a cached snapshot
// is served even if the remote repository has since changed.
type Manager struct {
	blobs BlobStore
}

// NewManager creates a cache manager over the given blob store.
func NewManager(blobs BlobStore) *Manager {
	return &Manager{blobs: blobs}
}

// Has reports whether a snapshot exists for the fingerprint, without
// loading it.
func (m *Manager) Has(fingerprint string) (bool, error) {
	return m.blobs.Has(fingerprint)
}

// Save persists the store's snapshot under the fingerprint, overwriting any
// prior record.
func (m *Manager) Save(fingerprint, repoURL string, store *vectorstore.Store) error {
	data, err := store.Snapshot().Marshal()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	info := BlobInfo{
		Key:        fingerprint,
		RepoURL:    repoURL,
		ChunkCount: store.Len(),
		SizeBytes:  int64(len(data)),
		CreatedAt:  time.Now().UTC(),
	}
	if err := m.blobs.Put(fingerprint, info, data); err != nil {
		return fmt.Errorf("persist snapshot %s: %w", fingerprint, err)
	}
	return nil
}

// Load restores the store cached under the fingerprint. The second return
// value reports whether a usable snapshot existed: a missing record is not
// an error, and a record that fails to decode is treated as a miss (the
// corrupt record is dropped so the next Save starts clean).
func (m *Manager) Load(fingerprint string) (*vectorstore.Store, bool, error) {
	data, ok, err := m.blobs.Get(fingerprint)
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot %s: %w", fingerprint, err)
	}
	if !ok {
		return nil, false, nil
	}
	snap, err := vectorstore.UnmarshalSnapshot(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: corrupt cache record %s, falling back to full analysis: %v\n", fingerprint, err)
		_ = m.blobs.Delete(fingerprint)
		return nil, false, nil
	}
	store, err := vectorstore.FromSnapshot(snap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: corrupt cache record %s, falling back to full analysis: %v\n", fingerprint, err)
		_ = m.blobs.Delete(fingerprint)
		return nil, false, nil
	}
	return store, true, nil
}

// Clear removes the record for one fingerprint. Removing a record that does
// not exist is not an error.
func (m *Manager) Clear(fingerprint string) error {
	return m.blobs.Delete(fingerprint)
}

// ClearAll removes every cached record.
func (m *Manager) ClearAll() error {
	records, err := m.blobs.List()
	if err != nil {
		return err
	}
	for _, r := range records {
		if err := m.blobs.Delete(r.Key); err != nil {
			return err
		}
	}
	return nil
}

// Stats reports how many repositories are cached and how much space their
// snapshots occupy.
func (m *Manager) Stats() (Stats, error) {
	records, err := m.blobs.List()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Repos: len(records), Records: records}
	for _, r := range records {
		st.TotalBytes += r.SizeBytes
	}
	return st, nil
}

// Close releases the underlying blob store.
func (m *Manager) Close() error {
	return m.blobs.Close()
}
