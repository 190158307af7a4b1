// Package compose owns the create/edit form lifecycle for a post: a small
// state machine whose one job is never losing the user's typed input.
package compose

import (
	"context"
	"errors"
	"strings"
	"sync"

	"parlo/client/internal/api"
)

// State is the form's lifecycle position.
type State int

const (
	Closed State = iota
	Open
	Submitting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

var (
	// ErrClosed reports a Submit against a form that is not open.
	ErrClosed = errors.New("form is not open")
	// ErrBusy reports a Submit while a previous one is still in flight.
	ErrBusy = errors.New("a submit is already in flight")
)

// Submitter is the create-or-update slice of the platform API.
type Submitter interface {
	CreatePrompt(ctx context.Context, title, content string) (api.Post, error)
	UpdatePrompt(ctx context.Context, id, title, content string) (api.Post, error)
}

// Form holds the working copy of a post being created or edited. Opening
// resets the fields; a failed submit returns to Open with the fields intact
// so the user can fix and retry.
type Form struct {
	backend Submitter

	mu        sync.Mutex
	state     State
	editID    string
	title     string
	content   string
	err       error
	submitted bool
	result    api.Post
}

func NewForm(backend Submitter) *Form {
	return &Form{backend: backend}
}

// OpenBlank opens the form for a new post with empty fields. Any previous
// working copy or error is discarded.
func (f *Form) OpenBlank() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
	f.state = Open
}

// OpenEdit opens the form pre-filled from an existing post.
func (f *Form) OpenEdit(post api.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
	f.state = Open
	f.editID = post.ID
	f.title = post.Title
	f.content = post.Content
}

// Cancel closes the form, discarding the working copy.
func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Form) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Open {
		f.title = title
	}
}

func (f *Form) SetContent(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Open {
		f.content = content
	}
}

// Submit validates and sends the working copy, creating or updating depending
// on how the form was opened. Success closes the form; failure keeps it open
// with the typed values untouched and the error readable via Err.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case Closed:
		f.mu.Unlock()
		return ErrClosed
	case Submitting:
		f.mu.Unlock()
		return ErrBusy
	}

	title := strings.TrimSpace(f.title)
	content := strings.TrimSpace(f.content)
	if title == "" || content == "" {
		var err error
		if title == "" {
			err = api.Validation("title is required")
		} else {
			err = api.Validation("content is required")
		}
		f.err = err
		f.mu.Unlock()
		return err
	}

	f.state = Submitting
	f.err = nil
	editID := f.editID
	f.mu.Unlock()

	var (
		post api.Post
		err  error
	)
	if editID != "" {
		post, err = f.backend.UpdatePrompt(ctx, editID, title, content)
	} else {
		post, err = f.backend.CreatePrompt(ctx, title, content)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		// Back to Open; the title and content the user typed are untouched.
		f.state = Open
		f.err = err
		return err
	}
	f.reset()
	f.submitted = true
	f.result = post
	return nil
}

// State returns the lifecycle position.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Editing reports whether the form was opened over an existing post.
func (f *Form) Editing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editID != ""
}

func (f *Form) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

func (f *Form) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

// Err returns the last submit error, cleared by reopening.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submitted reports whether the last submit succeeded and closed the form;
// the caller uses it as the cue to refresh the feed. Reopening clears it.
func (f *Form) Submitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

// Result returns the post the backend confirmed on the last successful
// submit.
func (f *Form) Result() api.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// reset returns the form to Closed with all working state cleared. Callers
// hold the lock.
func (f *Form) reset() {
	f.state = Closed
	f.editID = ""
	f.title = ""
	f.content = ""
	f.err = nil
	f.submitted = false
	f.result = api.Post{}
}
