package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteStoreSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	content BLOB NOT NULL,
	created_at TEXT NOT NULL
);`

const (
	defaultStoreDir = ".pollen"
	defaultStoreDB  = "pollen.db"
)

// SQLiteStoreConfig configures the SQLite-backed artifact store.
type SQLiteStoreConfig struct {
	DSN string
}

// SQLiteStore persists artifacts in SQLite.
type SQLiteStore struct {
	db  *sql.DB
	dsn string
}

// DefaultSQLitePath returns the default SQLite path for CLI storage.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultStoreDir, defaultStoreDB), nil
}

// NewDefaultSQLiteStore creates a store at ~/.pollen/pollen.db.
func NewDefaultSQLiteStore() (*SQLiteStore, error) {
	path, err := DefaultSQLitePath()
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(SQLiteStoreConfig{DSN: path})
}

// NewSQLiteStore opens (or creates) a SQLite-backed artifact store.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("store: sqlite dsn is required")
	}

	if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("store: create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: sqlite open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: sqlite set WAL mode: %w", err)
	}

	if _, err := db.Exec(sqliteStoreSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: sqlite create schema: %w", err)
	}

	return &SQLiteStore{db: db, dsn: cfg.DSN}, nil
}

// Save stores content under a fresh uuid and returns the artifact handle.
func (s *SQLiteStore) Save(ctx context.Context, content []byte, filename string) (SavedArtifact, error) {
	if err := ctx.Err(); err != nil {
		return SavedArtifact{}, err
	}
	if strings.TrimSpace(filename) == "" {
		return SavedArtifact{}, errors.New("store: filename is required")
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO artifacts (id, filename, content, created_at) VALUES (?, ?, ?, ?)",
		id, filename, content, createdAt)
	if err != nil {
		return SavedArtifact{}, fmt.Errorf("store: save artifact: %w", err)
	}

	return SavedArtifact{
		ID:          id,
		StoragePath: fmt.Sprintf("%s#%s", s.dsn, id),
	}, nil
}

// Get returns the stored content for id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var content []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM artifacts WHERE id = ?", id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get artifact: %w", err)
	}
	return content, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ArtifactStore = (*SQLiteStore)(nil)
