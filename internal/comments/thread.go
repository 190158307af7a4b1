// Package comments owns the comment thread attached to a single post:
// lazily opened, optimistically mutated, discarded on close.
package comments

import (
	"context"
	"strings"
	"sync"

	"parlo/client/internal/api"
	"parlo/client/internal/mutation"
	"parlo/client/internal/session"
	"parlo/client/internal/util"
)

// Backend is the slice of the platform API a thread depends on.
type Backend interface {
	ListComments(ctx context.Context, postID string) ([]api.Comment, error)
	CreateComment(ctx context.Context, postID, content string) (api.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// IdentitySource resolves the current user, for authoring provisional
// comments and ownership checks.
type IdentitySource interface {
	Current() (session.Identity, bool)
}

// Thread is the comment list of one post. The list exists only between Open
// and Close; closing discards it and a reopen always refetches.
type Thread struct {
	postID   string
	backend  Backend
	identity IdentitySource

	mu      sync.Mutex
	open    bool
	loading bool
	items   []api.Comment
}

func NewThread(postID string, backend Backend, identity IdentitySource) *Thread {
	return &Thread{postID: postID, backend: backend, identity: identity}
}

func (t *Thread) PostID() string { return t.postID }

// Open fetches the thread. The backend's order is kept as-is; an empty list
// is a normal open thread, not an error.
func (t *Thread) Open(ctx context.Context) ([]api.Comment, error) {
	t.mu.Lock()
	t.loading = true
	t.mu.Unlock()

	items, err := t.backend.ListComments(ctx, t.postID)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if err != nil {
		return nil, err
	}
	t.open = true
	t.items = items
	return copyComments(items), nil
}

// Loading reports whether an Open fetch is in flight.
func (t *Thread) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Close discards the list. No caching: the next Open hits the backend again.
func (t *Thread) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = false
	t.items = nil
}

// Submit posts a new comment. A provisional copy, authored as the current
// user under a local id, is appended before the send is dispatched; whether
// the send succeeds or fails the thread is refetched, which replaces the
// provisional entry with server truth (or drops it on failure).
func (t *Thread) Submit(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return api.Validation("comment cannot be empty")
	}

	provisional := api.Comment{
		ID:      util.NewLocalID(),
		PostID:  t.postID,
		Content: content,
	}
	if identity, ok := t.identity.Current(); ok {
		provisional.Author.ID = identity.ID
		provisional.Author.Name = identity.Name
	}

	state, err := mutation.Run(ctx, mutation.Op{
		Name: "comments.submit",
		Apply: func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.items = append(t.items, provisional)
		},
		Send: func(ctx context.Context) error {
			_, sendErr := t.backend.CreateComment(ctx, t.postID, content)
			return sendErr
		},
		Resync: t.reload,
	})
	if state == mutation.Confirmed {
		if reloadErr := t.reload(ctx); reloadErr != nil {
			return reloadErr
		}
	}
	return err
}

// Remove deletes a comment, dropping it from the list before the send is
// dispatched. The thread is refetched once the send settles.
func (t *Thread) Remove(ctx context.Context, commentID string) error {
	state, err := mutation.Run(ctx, mutation.Op{
		Name: "comments.remove",
		Apply: func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			kept := t.items[:0]
			for _, comment := range t.items {
				if comment.ID != commentID {
					kept = append(kept, comment)
				}
			}
			t.items = kept
		},
		Send: func(ctx context.Context) error {
			return t.backend.DeleteComment(ctx, commentID)
		},
		Resync: t.reload,
	})
	if state == mutation.Confirmed {
		if reloadErr := t.reload(ctx); reloadErr != nil {
			return reloadErr
		}
	}
	return err
}

// IsMine reports whether the comment belongs to the current identity.
func (t *Thread) IsMine(comment api.Comment) bool {
	identity, ok := t.identity.Current()
	if !ok {
		return false
	}
	return comment.Author.Is(identity.ID)
}

// Items returns a copy of the current list, nil when the thread is closed.
func (t *Thread) Items() []api.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return nil
	}
	return copyComments(t.items)
}

func (t *Thread) reload(ctx context.Context) error {
	items, err := t.backend.ListComments(ctx, t.postID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = items
	return nil
}

func copyComments(items []api.Comment) []api.Comment {
	out := make([]api.Comment, len(items))
	copy(out, items)
	return out
}
