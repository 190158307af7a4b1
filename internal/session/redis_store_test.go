package session

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	record := Record{Token: "tok-1", UserID: "u1", UserName: "An", SavedAt: time.Now().UTC()}
	if err := store.Save(record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Token != "tok-1" || loaded.UserID != "u1" || loaded.UserName != "An" {
		t.Errorf("loaded %+v", loaded)
	}
}

func TestRedisStoreMissing(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load with no record: err = %v, want ErrNoSession", err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	if err := store.Save(Record{Token: "tok", UserID: "u1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Fast-forward past the session TTL in miniredis.
	s.FastForward(31 * 24 * time.Hour)

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load after expiry: err = %v, want ErrNoSession", err)
	}
}

func TestRedisStoreClear(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	if err := store.Save(Record{Token: "tok", UserID: "u1"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load after Clear: err = %v, want ErrNoSession", err)
	}
}

func TestResolverOverRedis(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	resolver := NewResolver(store)
	if _, ok := resolver.Current(); ok {
		t.Error("Current before login: ok = true")
	}

	if err := store.Save(Record{Token: "tok", UserID: "u1", UserName: "An"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	identity, ok := resolver.Current()
	if !ok || identity.ID != "u1" {
		t.Errorf("Current = %+v, %v", identity, ok)
	}
	if resolver.Token() != "tok" {
		t.Errorf("Token = %q", resolver.Token())
	}
}
