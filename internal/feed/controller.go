// Package feed owns the paginated, filtered, sorted view of community
// prompts and the mutations against it.
package feed

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"parlo/client/internal/api"
	"parlo/client/internal/mutation"
	"parlo/client/internal/session"
)

// ErrSuperseded reports that a Load's response arrived after a newer Load had
// been issued for a different query; the result was discarded.
var ErrSuperseded = errors.New("load superseded by a newer query")

// Backend is the slice of the platform API the feed depends on.
type Backend interface {
	ListPrompts(ctx context.Context, page, limit int) (api.PromptPage, error)
	CreatePrompt(ctx context.Context, title, content string) (api.Post, error)
	UpdatePrompt(ctx context.Context, id, title, content string) (api.Post, error)
	DeletePrompt(ctx context.Context, id string) error
	UpvotePrompt(ctx context.Context, id string) error
}

// IdentitySource resolves the current user, for ownership gating.
type IdentitySource interface {
	Current() (session.Identity, bool)
}

// Controller owns the current page of posts. It is safe for concurrent use;
// overlapping Loads settle last-issued-wins.
type Controller struct {
	backend  Backend
	identity IdentitySource
	pageSize int

	mu    sync.Mutex
	seq   uint64
	items []api.Post
	total int
	query Query
}

func NewController(backend Backend, identity IdentitySource) *Controller {
	return &Controller{
		backend:  backend,
		identity: identity,
		pageSize: DefaultPageSize,
		query:    Query{}.normalized(),
	}
}

// SetPageSize overrides the fetch page size. Zero or negative is ignored.
func (c *Controller) SetPageSize(n int) {
	if n > 0 {
		c.mu.Lock()
		c.pageSize = n
		c.mu.Unlock()
	}
}

// Load fetches one page and applies the query's client-side filter and sort.
// Each call is tagged with a monotonically increasing sequence number; a
// response that is no longer the latest issued call is discarded and
// reported as ErrSuperseded, so a slow stale request can never clobber a
// newer one.
func (c *Controller) Load(ctx context.Context, q Query) ([]api.Post, error) {
	q = q.normalized()

	c.mu.Lock()
	c.seq++
	tag := c.seq
	limit := c.pageSize
	c.mu.Unlock()

	page, err := c.backend.ListPrompts(ctx, q.Page, limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if tag != c.seq {
		return nil, ErrSuperseded
	}
	if err != nil {
		// Previous page stays visible; the caller decides how to surface this.
		return nil, err
	}

	items := dedupeByID(page.Items)
	if q.MineOnly {
		items = c.keepMineLocked(items)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		items = filterSearch(items, search)
	}
	sortItems(items, q.Sort)

	c.items = items
	c.total = page.Total
	c.query = q
	return copyPosts(items), nil
}

// Reload re-issues the last query, e.g. after a failed optimistic mutation.
func (c *Controller) Reload(ctx context.Context) error {
	_, err := c.Load(ctx, c.Query())
	if errors.Is(err, ErrSuperseded) {
		// A newer load already owns the state; that is the fresh truth.
		return nil
	}
	return err
}

// Create validates and submits a new post. There is no local insertion on
// success: the caller reloads page 1 to see it. On failure the typed values
// stay with the caller for retry.
func (c *Controller) Create(ctx context.Context, title, content string) (api.Post, error) {
	title, content, err := validatePost(title, content)
	if err != nil {
		return api.Post{}, err
	}
	return c.backend.CreatePrompt(ctx, title, content)
}

// Update validates and submits an edit. Same contract as Create: the caller
// reloads on success and keeps its working copy on failure.
func (c *Controller) Update(ctx context.Context, id, title, content string) (api.Post, error) {
	title, content, err := validatePost(title, content)
	if err != nil {
		return api.Post{}, err
	}
	return c.backend.UpdatePrompt(ctx, id, title, content)
}

// Remove deletes a post. Not optimistic: the item disappears on the caller's
// subsequent reload.
func (c *Controller) Remove(ctx context.Context, id string) error {
	return c.backend.DeletePrompt(ctx, id)
}

// Upvote applies the increment locally before the network call is even
// dispatched, then confirms or rolls back by reloading the whole page.
func (c *Controller) Upvote(ctx context.Context, id string) error {
	_, err := mutation.Run(ctx, mutation.Op{
		Name: "feed.upvote",
		Apply: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i := range c.items {
				if c.items[i].ID == id {
					c.items[i].Upvotes++
					break
				}
			}
		},
		Send: func(ctx context.Context) error {
			return c.backend.UpvotePrompt(ctx, id)
		},
		Resync: c.Reload,
	})
	return err
}

// IsMine reports whether the post belongs to the current identity. Derived
// fresh on every call: a logout between calls flips it to false. Absent or
// unknown identity never owns anything.
func (c *Controller) IsMine(post api.Post) bool {
	identity, ok := c.identity.Current()
	if !ok {
		return false
	}
	return post.Author.Is(identity.ID)
}

// Items returns a copy of the current page.
func (c *Controller) Items() []api.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyPosts(c.items)
}

// Total is the backend's total count across all pages, untouched by the
// client-side filter.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Query returns the last committed query.
func (c *Controller) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Controller) keepMineLocked(items []api.Post) []api.Post {
	identity, ok := c.identity.Current()
	if !ok {
		return nil
	}
	kept := items[:0]
	for _, post := range items {
		if post.Author.Is(identity.ID) {
			kept = append(kept, post)
		}
	}
	return kept
}

func validatePost(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return "", "", api.Validation("title is required")
	}
	if content == "" {
		return "", "", api.Validation("content is required")
	}
	return title, content, nil
}

// filterSearch keeps posts whose title or content contains the search text,
// case-insensitively.
func filterSearch(items []api.Post, search string) []api.Post {
	needle := strings.ToLower(search)
	kept := items[:0]
	for _, post := range items {
		if strings.Contains(strings.ToLower(post.Title), needle) ||
			strings.Contains(strings.ToLower(post.Content), needle) {
			kept = append(kept, post)
		}
	}
	return kept
}

// sortItems orders the page in place. Both modes are stable so equal items
// keep their backend order.
func sortItems(items []api.Post, mode Sort) {
	switch mode {
	case SortPopularity:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Upvotes > items[j].Upvotes
		})
	default:
		// The backend already returns newest first; this only corrects
		// stragglers.
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
}

// dedupeByID drops repeated post ids, first occurrence wins.
func dedupeByID(items []api.Post) []api.Post {
	seen := make(map[string]struct{}, len(items))
	kept := items[:0]
	for _, post := range items {
		if _, dup := seen[post.ID]; dup {
			continue
		}
		seen[post.ID] = struct{}{}
		kept = append(kept, post)
	}
	return kept
}

func copyPosts(items []api.Post) []api.Post {
	out := make([]api.Post, len(items))
	copy(out, items)
	return out
}
