package api

import (
	"encoding/json"
	"time"

	"parlo/client/internal/author"
)

// Post is a community prompt: a short text item that can be upvoted and
// commented on.
type Post struct {
	ID        string
	Title     string
	Content   string
	Upvotes   int
	Author    author.Ref
	CreatedAt time.Time
}

// wirePost tolerates the backend's field variations: Mongo-style "_id" with a
// plain "id" fallback, and the author embedded under "createdBy" in any of
// its shapes.
type wirePost struct {
	MongoID   string     `json:"_id"`
	PlainID   string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Upvotes   int        `json:"upvotes"`
	CreatedBy author.Ref `json:"createdBy"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (p *Post) UnmarshalJSON(data []byte) error {
	var w wirePost
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	postAuthor := w.CreatedBy
	if !postAuthor.Known() && w.UserID != "" {
		postAuthor = author.Normalize(w.UserID)
	}
	upvotes := w.Upvotes
	if upvotes < 0 {
		upvotes = 0
	}
	*p = Post{
		ID:        firstNonEmpty(w.MongoID, w.PlainID),
		Title:     w.Title,
		Content:   w.Content,
		Upvotes:   upvotes,
		Author:    postAuthor,
		CreatedAt: w.CreatedAt,
	}
	return nil
}

// Comment belongs to exactly one post.
type Comment struct {
	ID        string
	PostID    string
	Content   string
	Author    author.Ref
	CreatedAt time.Time
}

type wireComment struct {
	MongoID   string     `json:"_id"`
	PlainID   string     `json:"id"`
	PostID    string     `json:"promptId"`
	Content   string     `json:"content"`
	CreatedBy author.Ref `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var w wireComment
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Comment{
		ID:        firstNonEmpty(w.MongoID, w.PlainID),
		PostID:    w.PostID,
		Content:   w.Content,
		Author:    w.CreatedBy,
		CreatedAt: w.CreatedAt,
	}
	return nil
}

// PromptPage is one page of the community feed.
type PromptPage struct {
	Items []Post `json:"items"`
	Total int    `json:"total"`
}

// Profile is the logged-in user's account record.
type Profile struct {
	ID       string
	Name     string
	Email    string
	Bio      string
	JoinedAt time.Time
}

type wireProfile struct {
	MongoID   string    `json:"_id"`
	PlainID   string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	JoinedAt  time.Time `json:"joinedDate"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var w wireProfile
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	joined := w.JoinedAt
	if joined.IsZero() {
		joined = w.CreatedAt
	}
	*p = Profile{
		ID:       firstNonEmpty(w.MongoID, w.PlainID),
		Name:     w.Name,
		Email:    w.Email,
		Bio:      w.Bio,
		JoinedAt: joined,
	}
	return nil
}

// UserStats summarizes the logged-in user's contributions.
type UserStats struct {
	TotalPosts   int `json:"totalPosts"`
	TotalUpvotes int `json:"totalUpvotes"`
}

// LoginResult is returned by the auth endpoints.
type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		MongoID string `json:"_id"`
		PlainID string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
	} `json:"user"`
}

// UserID returns the user id under either wire name.
func (r LoginResult) UserID() string {
	return firstNonEmpty(r.User.MongoID, r.User.PlainID)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
