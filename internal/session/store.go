// Package session persists the logged-in user's session record locally and
// resolves the current identity from it.
package session

import (
	"errors"
	"time"
)

// Record is the session persisted at login and cleared at logout. This core
// only ever reads it; the auth flow owns writes.
type Record struct {
	Token    string    `json:"token"`
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	SavedAt  time.Time `json:"savedAt"`
}

// ErrNoSession reports that no session record is persisted.
var ErrNoSession = errors.New("no session record")

// Store is a session record backend.
type Store interface {
	Save(Record) error
	Load() (Record, error)
	Clear() error
}
