package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	record := Record{
		Token:    "tok-1",
		UserID:   "u1",
		UserName: "An",
		SavedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Save(record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Token != record.Token || loaded.UserID != record.UserID || loaded.UserName != record.UserName {
		t.Errorf("loaded %+v, want %+v", loaded, record)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}
}

func TestFileStoreMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load of missing file: err = %v, want ErrNoSession", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Error("Load of corrupt file: expected error, got nil")
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	if err := store.Save(Record{Token: "tok", UserID: "u1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load after Clear: err = %v, want ErrNoSession", err)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}

func TestResolverFailsSoft(t *testing.T) {
	dir := t.TempDir()

	// Missing record.
	resolver := NewResolver(NewFileStore(filepath.Join(dir, "none.json")))
	if _, ok := resolver.Current(); ok {
		t.Error("Current with no record: ok = true")
	}
	if token := resolver.Token(); token != "" {
		t.Errorf("Token with no record = %q", token)
	}

	// Malformed record.
	corrupt := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(corrupt, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	resolver = NewResolver(NewFileStore(corrupt))
	if _, ok := resolver.Current(); ok {
		t.Error("Current with corrupt record: ok = true")
	}

	// Record without a user id is not an identity.
	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`{"token":"tok"}`), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	resolver = NewResolver(NewFileStore(empty))
	if _, ok := resolver.Current(); ok {
		t.Error("Current with id-less record: ok = true")
	}
	if token := resolver.Token(); token != "tok" {
		t.Errorf("Token = %q, want tok", token)
	}
}

func TestResolverReadsLatestRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	resolver := NewResolver(store)

	if err := store.Save(Record{Token: "t1", UserID: "u1", UserName: "An"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	identity, ok := resolver.Current()
	if !ok || identity.ID != "u1" || identity.Name != "An" {
		t.Fatalf("Current = %+v, %v", identity, ok)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := resolver.Current(); ok {
		t.Error("Current after logout: ok = true")
	}
}
