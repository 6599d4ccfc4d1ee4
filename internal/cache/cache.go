// Package cache stores built executables keyed by the module text they were
// compiled from, so rebuilding an unchanged program skips the external
// toolchain entirely.
//
// Layout under the cache directory:
//
//	index.db            SQLite index of cached builds
//	blobs/<aa>/<key>.xz XZ-compressed executables, sharded by key prefix
package cache

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// ErrNotFound is returned by Lookup when no build is cached under a key.
var ErrNotFound = errors.New("build not found in cache")

// ErrInvalidKey is returned by Lookup, Store and Extract when a key is not
// a 64-character hex digest of the form produced by Key.
var ErrInvalidKey = errors.New("invalid cache key")

// keyPattern matches the lowercase hex form produced by Key.
var keyPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS builds (
    id         TEXT PRIMARY KEY,
    key        TEXT NOT NULL UNIQUE,
    target     TEXT NOT NULL,
    mem_size   INTEGER NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
`

// Entry describes one cached build.
type Entry struct {
	ID        string
	Key       string
	Target    string
	MemSize   uint
	SizeBytes int64
	CreatedAt time.Time
}

// Cache is an on-disk build cache: a SQLite index plus compressed blobs.
type Cache struct {
	db  *sql.DB
	dir string
}

// DefaultDir returns the per-user cache directory (~/.bfc/cache).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".bfc", "cache")
}

// Open opens (creating if needed) the cache at dir.  An empty dir selects
// DefaultDir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(filepath.Join(dir, "blobs"), 0755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	db, err := sql.Open(driverName, filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("cannot open cache index: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize cache index: %w", err)
	}

	return &Cache{db: db, dir: dir}, nil
}

// Close releases the index database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives the cache key for a build: a BLAKE3 hash over the module text
// and the toolchain inputs that shape the executable.
func Key(ir []byte, triple, optLevel string) string {
	payload := make([]byte, 0, len(ir)+len(triple)+len(optLevel)+2)
	payload = append(payload, ir...)
	payload = append(payload, 0)
	payload = append(payload, triple...)
	payload = append(payload, 0)
	payload = append(payload, optLevel...)

	h := blake3.Sum256(payload)
	return hex.EncodeToString(h[:])
}

// Lookup returns the entry cached under key, or ErrNotFound.
func (c *Cache) Lookup(key string) (*Entry, error) {
	if !keyPattern.MatchString(key) {
		return nil, ErrInvalidKey
	}

	row := c.db.QueryRow(
		`SELECT id, key, target, mem_size, size_bytes, created_at FROM builds WHERE key = ?`, key)

	var e Entry
	var created string
	err := row.Scan(&e.ID, &e.Key, &e.Target, &e.MemSize, &e.SizeBytes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}

	e.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: bad timestamp %q: %w", created, err)
	}
	return &e, nil
}

// Store compresses the executable at exePath into the blob store and indexes
// it under key, replacing any previous build with the same key.
func (c *Cache) Store(key, target string, memSize uint, exePath string) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}

	data, err := os.ReadFile(exePath)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	blobPath := c.blobPath(key)
	if err := os.MkdirAll(filepath.Dir(blobPath), 0755); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	f, err := os.Create(blobPath)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("cache store: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("cache store: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("cache store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO builds (id, key, target, mem_size, size_bytes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), key, target, memSize, int64(len(data)),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Extract decompresses the blob cached under key to destPath, marking it
// executable.
func (c *Cache) Extract(key, destPath string) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}

	f, err := os.Open(c.blobPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("cache extract: %w", err)
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("cache extract: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("cache extract: %w", err)
	}

	if err := os.WriteFile(destPath, data, 0755); err != nil {
		return fmt.Errorf("cache extract: %w", err)
	}
	return nil
}

func (c *Cache) blobPath(key string) string {
	return filepath.Join(c.dir, "blobs", key[:2], key+".xz")
}
