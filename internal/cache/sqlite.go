package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const ddl = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS snapshots (
    fingerprint TEXT PRIMARY KEY,
    repo_url    TEXT NOT NULL,
    chunk_count INTEGER NOT NULL DEFAULT 0,
    size_bytes  INTEGER NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    snapshot    BLOB NOT NULL
);
`

// SQLiteBlobs implements BlobStore on a single SQLite database. Each
// snapshot is one row; INSERT OR REPLACE gives a single-statement overwrite,
// which is all the atomicity the cache promises.
type SQLiteBlobs struct {
	db *sql.DB
}

// OpenSQLite creates or opens the cache database at the given path and
// initializes the schema.
func OpenSQLite(dbPath string) (*SQLiteBlobs, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &SQLiteBlobs{db: db}, nil
}

func (s *SQLiteBlobs) Put(key string, info BlobInfo, data []byte) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO snapshots (fingerprint, repo_url, chunk_count, size_bytes, created_at, snapshot) VALUES (?, ?, ?, ?, ?, ?)",
		key, info.RepoURL, info.ChunkCount, int64(len(data)), info.CreatedAt.Format(time.RFC3339), data,
	)
	return err
}

func (s *SQLiteBlobs) Get(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow("SELECT snapshot FROM snapshots WHERE fingerprint = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *SQLiteBlobs) Has(key string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM snapshots WHERE fingerprint = ?", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteBlobs) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM snapshots WHERE fingerprint = ?", key)
	return err
}

func (s *SQLiteBlobs) List() ([]BlobInfo, error) {
	rows, err := s.db.Query(
		"SELECT fingerprint, repo_url, chunk_count, size_bytes, created_at FROM snapshots ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []BlobInfo
	for rows.Next() {
		var r BlobInfo
		var created string
		if err := rows.Scan(&r.Key, &r.RepoURL, &r.ChunkCount, &r.SizeBytes, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteBlobs) Close() error {
	return s.db.Close()
}
