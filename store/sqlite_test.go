package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(SQLiteStoreConfig{
		DSN: filepath.Join(t.TempDir(), "artifacts.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreSaveGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	content := []byte("thread transcript bytes")
	saved, err := s.Save(ctx, content, "thread-42.json")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" {
		t.Fatal("Save() returned empty id")
	}
	if saved.StoragePath == "" {
		t.Fatal("Save() returned empty storage path")
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Get() = %q, want %q", got, content)
	}
}

func TestSQLiteStoreGetUnknownID(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreSaveRequiresFilename(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Save(context.Background(), []byte("x"), "  "); err == nil {
		t.Error("Save() with blank filename = nil error")
	}
}

func TestSQLiteStoreDistinctIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, []byte("a"), "a.txt")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := s.Save(ctx, []byte("b"), "b.txt")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first.ID == second.ID {
		t.Error("Save() returned duplicate ids")
	}
}

func TestNewSQLiteStoreRequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore(SQLiteStoreConfig{}); err == nil {
		t.Error("NewSQLiteStore() with empty dsn = nil error")
	}
}
