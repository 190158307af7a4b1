package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"parlo/client/internal/api"
	"parlo/client/internal/author"
	"parlo/client/internal/session"
)

type fakeBackend struct {
	listFn   func(ctx context.Context, page, limit int) (api.PromptPage, error)
	createFn func(ctx context.Context, title, content string) (api.Post, error)
	updateFn func(ctx context.Context, id, title, content string) (api.Post, error)
	deleteFn func(ctx context.Context, id string) error
	upvoteFn func(ctx context.Context, id string) error

	listCalls   int
	createCalls int
	upvoteCalls int
}

func (f *fakeBackend) ListPrompts(ctx context.Context, page, limit int) (api.PromptPage, error) {
	f.listCalls++
	if f.listFn != nil {
		return f.listFn(ctx, page, limit)
	}
	return api.PromptPage{}, nil
}

func (f *fakeBackend) CreatePrompt(ctx context.Context, title, content string) (api.Post, error) {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn(ctx, title, content)
	}
	return api.Post{ID: "new", Title: title, Content: content}, nil
}

func (f *fakeBackend) UpdatePrompt(ctx context.Context, id, title, content string) (api.Post, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, title, content)
	}
	return api.Post{ID: id, Title: title, Content: content}, nil
}

func (f *fakeBackend) DeletePrompt(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeBackend) UpvotePrompt(ctx context.Context, id string) error {
	f.upvoteCalls++
	if f.upvoteFn != nil {
		return f.upvoteFn(ctx, id)
	}
	return nil
}

type fakeIdentity struct {
	identity session.Identity
	present  bool
}

func (f *fakeIdentity) Current() (session.Identity, bool) {
	return f.identity, f.present
}

func loggedIn(id string) *fakeIdentity {
	return &fakeIdentity{identity: session.Identity{ID: id}, present: true}
}

func pageOf(posts ...api.Post) func(ctx context.Context, page, limit int) (api.PromptPage, error) {
	return func(ctx context.Context, page, limit int) (api.PromptPage, error) {
		return api.PromptPage{Items: posts, Total: len(posts)}, nil
	}
}

func TestLoadFiltersBySearch(t *testing.T) {
	backend := &fakeBackend{listFn: pageOf(
		api.Post{ID: "p1", Title: "My travel story"},
		api.Post{ID: "p2", Title: "Food diary", Content: "lunch notes"},
	)}
	controller := NewController(backend, &fakeIdentity{})

	items, err := controller.Load(context.Background(), Query{Page: 1, Search: "travel"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Errorf("items = %+v, want only the travel post", items)
	}
}

func TestLoadSearchMatchesContentCaseInsensitively(t *testing.T) {
	backend := &fakeBackend{listFn: pageOf(
		api.Post{ID: "p1", Title: "Daily log", Content: "I went TRAVELING to Hue"},
		api.Post{ID: "p2", Title: "Food diary"},
	)}
	controller := NewController(backend, &fakeIdentity{})

	items, err := controller.Load(context.Background(), Query{Page: 1, Search: "Travel"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" {
		t.Errorf("items = %+v, want the content match", items)
	}
}

func TestLoadSortsByPopularityStably(t *testing.T) {
	backend := &fakeBackend{listFn: pageOf(
		api.Post{ID: "a", Upvotes: 5},
		api.Post{ID: "b", Upvotes: 2},
		api.Post{ID: "c", Upvotes: 9},
		api.Post{ID: "d", Upvotes: 5},
	)}
	controller := NewController(backend, &fakeIdentity{})

	items, err := controller.Load(context.Background(), Query{Page: 1, Sort: SortPopularity})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ids := make([]string, len(items))
	for i, post := range items {
		ids[i] = post.ID
	}
	// 9, 5, 5, 2, with the tied 5s keeping their original relative order.
	want := []string{"c", "a", "d", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestLoadRecencyKeepsBackendOrder(t *testing.T) {
	now := time.Now()
	backend := &fakeBackend{listFn: pageOf(
		api.Post{ID: "newest", CreatedAt: now},
		api.Post{ID: "middle", CreatedAt: now.Add(-time.Hour)},
		api.Post{ID: "oldest", CreatedAt: now.Add(-2 * time.Hour)},
	)}
	controller := NewController(backend, &fakeIdentity{})

	items, err := controller.Load(context.Background(), Query{Page: 1, Sort: SortRecency})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if items[0].ID != "newest" || items[2].ID != "oldest" {
		t.Errorf("order changed: %+v", items)
	}
}

func TestLoadDropsDuplicateIDs(t *testing.T) {
	backend := &fakeBackend{listFn: pageOf(
		api.Post{ID: "p1", Title: "first"},
		api.Post{ID: "p1", Title: "dup"},
		api.Post{ID: "p2"},
	)}
	controller := NewController(backend, &fakeIdentity{})

	items, err := controller.Load(context.Background(), Query{Page: 1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 2 || items[0].Title != "first" {
		t.Errorf("items = %+v, want dup dropped with first occurrence kept", items)
	}
}

func TestLoadSupersession(t *testing.T) {
	// Q1's response is held until Q2 has fully settled, then released.
	release := make(chan struct{})
	q1Started := make(chan struct{})
	backend := &fakeBackend{}
	backend.listFn = func(ctx context.Context, page, limit int) (api.PromptPage, error) {
		if page == 1 {
			close(q1Started)
			<-release
			return api.PromptPage{Items: []api.Post{{ID: "stale"}}, Total: 1}, nil
		}
		return api.PromptPage{Items: []api.Post{{ID: "fresh"}}, Total: 1}, nil
	}
	controller := NewController(backend, &fakeIdentity{})

	done := make(chan error, 1)
	go func() {
		_, err := controller.Load(context.Background(), Query{Page: 1})
		done <- err
	}()
	<-q1Started

	if _, err := controller.Load(context.Background(), Query{Page: 2}); err != nil {
		t.Fatalf("Load Q2 failed: %v", err)
	}

	close(release)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("stale load err = %v, want ErrSuperseded", err)
	}

	items := controller.Items()
	if len(items) != 1 || items[0].ID != "fresh" {
		t.Errorf("final state = %+v, want Q2's result", items)
	}
	if controller.Query().Page != 2 {
		t.Errorf("final query page = %d, want 2", controller.Query().Page)
	}
}

func TestCreateValidationSkipsNetwork(t *testing.T) {
	backend := &fakeBackend{}
	controller := NewController(backend, &fakeIdentity{})

	for _, input := range []struct{ title, content string }{
		{"", "x"},
		{"x", ""},
		{"   ", "x"},
		{"x", "\n\t"},
	} {
		_, err := controller.Create(context.Background(), input.title, input.content)
		if !api.IsValidation(err) {
			t.Errorf("Create(%q, %q): err = %v, want validation", input.title, input.content, err)
		}
	}
	if backend.createCalls != 0 {
		t.Errorf("backend invoked %d times for invalid input", backend.createCalls)
	}
}

func TestCreateTrimsAndSubmits(t *testing.T) {
	var gotTitle, gotContent string
	backend := &fakeBackend{createFn: func(ctx context.Context, title, content string) (api.Post, error) {
		gotTitle, gotContent = title, content
		return api.Post{ID: "p1", Title: title, Content: content}, nil
	}}
	controller := NewController(backend, &fakeIdentity{})

	if _, err := controller.Create(context.Background(), "  Hello  ", " world "); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if gotTitle != "Hello" || gotContent != "world" {
		t.Errorf("submitted (%q, %q), want trimmed values", gotTitle, gotContent)
	}
}

func TestUpdateValidatesLikeCreate(t *testing.T) {
	backend := &fakeBackend{}
	controller := NewController(backend, &fakeIdentity{})
	if _, err := controller.Update(context.Background(), "p1", " ", "x"); !api.IsValidation(err) {
		t.Errorf("Update with blank title: err = %v, want validation", err)
	}
}

func TestUpvoteOptimisticImmediacy(t *testing.T) {
	// Count 3, upvote, displayed 4 before the send resolves, still 4
	// after confirmation.
	sendEntered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		listFn: pageOf(api.Post{ID: "p1", Upvotes: 3}),
		upvoteFn: func(ctx context.Context, id string) error {
			close(sendEntered)
			<-release
			return nil
		},
	}
	controller := NewController(backend, &fakeIdentity{})
	if _, err := controller.Load(context.Background(), Query{Page: 1}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- controller.Upvote(context.Background(), "p1") }()

	<-sendEntered
	if items := controller.Items(); items[0].Upvotes != 4 {
		t.Errorf("mid-flight count = %d, want 4 (optimistic)", items[0].Upvotes)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Upvote failed: %v", err)
	}
	if items := controller.Items(); items[0].Upvotes != 4 {
		t.Errorf("confirmed count = %d, want 4 (local increment trusted)", items[0].Upvotes)
	}
	if backend.listCalls != 1 {
		t.Errorf("listCalls = %d, confirmation must not reload", backend.listCalls)
	}
}

func TestUpvoteFailureResyncs(t *testing.T) {
	serverTruth := []api.Post{{ID: "p1", Upvotes: 3}}
	backend := &fakeBackend{
		upvoteFn: func(ctx context.Context, id string) error {
			return &api.Error{Kind: api.KindServer, Status: 500, Message: "boom"}
		},
	}
	backend.listFn = func(ctx context.Context, page, limit int) (api.PromptPage, error) {
		return api.PromptPage{Items: append([]api.Post(nil), serverTruth...), Total: len(serverTruth)}, nil
	}
	controller := NewController(backend, &fakeIdentity{})
	if _, err := controller.Load(context.Background(), Query{Page: 1}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Another session upvoted twice in the meantime; a blind decrement would
	// land on the wrong value.
	serverTruth[0].Upvotes = 5

	err := controller.Upvote(context.Background(), "p1")
	if err == nil {
		t.Fatal("Upvote: expected the send error")
	}

	items := controller.Items()
	if items[0].Upvotes != 5 {
		t.Errorf("count after rollback = %d, want 5 (server truth, not a local guess)", items[0].Upvotes)
	}
	if backend.listCalls != 2 {
		t.Errorf("listCalls = %d, want resync reload", backend.listCalls)
	}
}

func TestIsMineOwnershipGating(t *testing.T) {
	mine := api.Post{ID: "p1", Author: author.Ref{ID: "u1"}}
	theirs := api.Post{ID: "p2", Author: author.Ref{ID: "u2"}}
	orphan := api.Post{ID: "p3"}

	controller := NewController(&fakeBackend{}, loggedIn("u1"))
	if !controller.IsMine(mine) {
		t.Error("own post not recognized")
	}
	if controller.IsMine(theirs) {
		t.Error("someone else's post claimed as mine")
	}
	if controller.IsMine(orphan) {
		t.Error("unknown-author post claimed as mine")
	}

	loggedOut := NewController(&fakeBackend{}, &fakeIdentity{})
	if loggedOut.IsMine(mine) {
		t.Error("absent identity must never own a post")
	}
}

func TestIsMineRecomputedAfterLogout(t *testing.T) {
	identity := loggedIn("u1")
	controller := NewController(&fakeBackend{}, identity)
	post := api.Post{ID: "p1", Author: author.Ref{ID: "u1"}}

	if !controller.IsMine(post) {
		t.Fatal("own post not recognized")
	}
	identity.present = false
	if controller.IsMine(post) {
		t.Error("IsMine cached a stale identity across logout")
	}
}

func TestMineOnlyFiltersToOwnPosts(t *testing.T) {
	backend := &fakeBackend{listFn: pageOf(
		api.Post{ID: "p1", Author: author.Ref{ID: "u1"}},
		api.Post{ID: "p2", Author: author.Ref{ID: "u2"}},
		api.Post{ID: "p3", Author: author.Ref{ID: "u1"}},
	)}
	controller := NewController(backend, loggedIn("u1"))

	items, err := controller.Load(context.Background(), Query{Page: 1, MineOnly: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "p1" || items[1].ID != "p3" {
		t.Errorf("items = %+v, want only u1's posts", items)
	}
}

func TestMineOnlyWithoutIdentityIsEmpty(t *testing.T) {
	backend := &fakeBackend{listFn: pageOf(api.Post{ID: "p1", Author: author.Ref{ID: "u1"}})}
	controller := NewController(backend, &fakeIdentity{})

	items, err := controller.Load(context.Background(), Query{Page: 1, MineOnly: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want none without an identity", items)
	}
}

func TestLoadErrorKeepsPreviousPage(t *testing.T) {
	failing := false
	backend := &fakeBackend{}
	backend.listFn = func(ctx context.Context, page, limit int) (api.PromptPage, error) {
		if failing {
			return api.PromptPage{}, &api.Error{Kind: api.KindServer, Status: 502, Message: "bad gateway"}
		}
		return api.PromptPage{Items: []api.Post{{ID: "p1"}}, Total: 1}, nil
	}
	controller := NewController(backend, &fakeIdentity{})

	if _, err := controller.Load(context.Background(), Query{Page: 1}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	failing = true
	if _, err := controller.Load(context.Background(), Query{Page: 2}); err == nil {
		t.Fatal("expected load failure")
	}
	if items := controller.Items(); len(items) != 1 || items[0].ID != "p1" {
		t.Errorf("items = %+v, want the previous page preserved", items)
	}
}

func TestRemoveSurfacesErrors(t *testing.T) {
	backend := &fakeBackend{deleteFn: func(ctx context.Context, id string) error {
		return &api.Error{Kind: api.KindConflict, Status: 404, Message: "already gone"}
	}}
	controller := NewController(backend, loggedIn("u1"))

	err := controller.Remove(context.Background(), "p1")
	if !api.IsConflict(err) {
		t.Errorf("err = %v, want conflict", err)
	}
}
