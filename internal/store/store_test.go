package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iabetor/pinyinpal/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "ma1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	payload := bytes.Repeat([]byte{0x11}, 3000)
	if err := s.Put(ctx, "ma1", payload); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := s.Get(ctx, "ma1")
	if err != nil {
		t.Fatalf("get after put failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("stored payload is not byte-identical")
	}
}

// Put must be create-or-ignore: a second write never overwrites the first.
func testStorePutIgnoresExisting(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	first := bytes.Repeat([]byte{0x01}, 200)
	second := bytes.Repeat([]byte{0x02}, 200)

	if err := s.Put(ctx, "bo1", first); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	if err := s.Put(ctx, "bo1", second); err != nil {
		t.Fatalf("second put failed: %v", err)
	}

	got, err := s.Get(ctx, "bo1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !bytes.Equal(got, first) {
		t.Fatal("second put overwrote the existing entry")
	}
}

func TestSQLiteStore(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLiteStore(db)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	testStoreRoundTrip(t, s)
	testStorePutIgnoresExisting(t, s)
}

// A get against a fresh database lazily creates the table and reports a miss.
func TestSQLiteStore_LazyInit(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLiteStore(db)

	if _, err := s.Get(context.Background(), "ma1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with lazy init, got %v", err)
	}
	// Table should now exist
	if err := s.Put(context.Background(), "ma1", bytes.Repeat([]byte{0xAA}, 150)); err != nil {
		t.Fatalf("put after lazy init failed: %v", err)
	}
}

func TestBlobStore(t *testing.T) {
	s := NewBlobStore(filepath.Join(t.TempDir(), "audio"))
	testStoreRoundTrip(t, s)
	testStorePutIgnoresExisting(t, s)
}

// Keys with characters unsafe in filenames must still round-trip.
func TestBlobStore_EscapedKey(t *testing.T) {
	s := NewBlobStore(filepath.Join(t.TempDir(), "audio"))
	ctx := context.Background()

	payload := bytes.Repeat([]byte{0x42}, 128)
	if err := s.Put(ctx, "lü4/..", payload); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := s.Get(ctx, "lü4/..")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("escaped key did not round-trip")
	}
}
