// Package api is the client for the Parlo backend REST API. It owns the
// bearer credential plumbing and maps every failure into the error taxonomy
// the controllers recover from.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "http://localhost:5000/api"

// TokenSource yields the current bearer token, or "" when logged out. It is
// consulted per request so a re-login is picked up without rebuilding the
// client.
type TokenSource func() string

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      TokenSource
}

func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Token:      token,
	}
}

// ListPrompts fetches one page of the community feed.
func (c *Client) ListPrompts(ctx context.Context, page, limit int) (PromptPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var result PromptPage
	if err := c.do(ctx, http.MethodGet, "/prompts?"+query.Encode(), nil, &result); err != nil {
		return PromptPage{}, err
	}
	return result, nil
}

func (c *Client) CreatePrompt(ctx context.Context, title, content string) (Post, error) {
	body := map[string]string{"title": title, "content": content}
	var created Post
	if err := c.do(ctx, http.MethodPost, "/prompts", body, &created); err != nil {
		return Post{}, err
	}
	return created, nil
}

func (c *Client) UpdatePrompt(ctx context.Context, id, title, content string) (Post, error) {
	body := map[string]string{"title": title, "content": content}
	var updated Post
	if err := c.do(ctx, http.MethodPatch, "/prompts/"+url.PathEscape(id), body, &updated); err != nil {
		return Post{}, err
	}
	return updated, nil
}

func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/prompts/"+url.PathEscape(id), nil, nil)
}

// UpvotePrompt registers one upvote. The response carries no count; the
// caller's optimistic increment is the displayed value.
func (c *Client) UpvotePrompt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/prompts/"+url.PathEscape(id)+"/upvote", nil, nil)
}

func (c *Client) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	if err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(postID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, postID, content string) (Comment, error) {
	body := map[string]string{"content": content}
	var created Comment
	if err := c.do(ctx, http.MethodPost, "/comments/"+url.PathEscape(postID), body, &created); err != nil {
		return Comment{}, err
	}
	return created, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(commentID), nil, nil)
}

func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &raw); err != nil {
		return Profile{}, err
	}
	return decodeProfile(raw)
}

func (c *Client) UpdateProfile(ctx context.Context, name, bio string) (Profile, error) {
	body := map[string]string{"name": name, "bio": bio}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, "/auth/me/profile", body, &raw); err != nil {
		return Profile{}, err
	}
	return decodeProfile(raw)
}

// decodeProfile accepts the profile bare or wrapped in a data/user envelope.
func decodeProfile(raw json.RawMessage) (Profile, error) {
	if len(raw) == 0 {
		return Profile{}, nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
		User json.RawMessage `json:"user"`
	}
	_ = json.Unmarshal(raw, &envelope)
	for _, inner := range []json.RawMessage{envelope.Data, envelope.User} {
		if len(inner) > 0 && string(inner) != "null" {
			raw = inner
			break
		}
	}
	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return Profile{}, &Error{Kind: KindServer, Message: "malformed profile: " + err.Error()}
	}
	return profile, nil
}

// MyStats fetches the logged-in user's contribution totals.
func (c *Client) MyStats(ctx context.Context) (UserStats, error) {
	var envelope struct {
		Success bool      `json:"success"`
		Data    UserStats `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/prompts/me/stats", nil, &envelope); err != nil {
		return UserStats{}, err
	}
	return envelope.Data, nil
}

// Login exchanges credentials for a bearer token. Session persistence is the
// caller's concern.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (LoginResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// do issues one request and decodes the response into target (when non-nil).
// Transport failures become KindServer; non-2xx statuses are classified into
// the taxonomy with the backend's message when one can be mined from the body.
func (c *Client) do(ctx context.Context, method, path string, body, target any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &Error{Kind: KindServer, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp.StatusCode, mineMessage(resp.Body))
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if err == io.EOF {
			return nil
		}
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	return nil
}

// mineMessage digs the user-visible message out of the backend's assorted
// error envelopes: {msg}, {message}, {error}, {data:{reason}}.
func mineMessage(body io.Reader) string {
	var envelope struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		ErrMsg  string `json:"error"`
		Data    struct {
			Reason string `json:"reason"`
		} `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&envelope); err != nil {
		return ""
	}
	for _, candidate := range []string{envelope.Data.Reason, envelope.Msg, envelope.Message, envelope.ErrMsg} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}
