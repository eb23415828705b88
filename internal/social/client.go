// Package social implements the platform client used by the automation
// jobs: publishing posts, listing posts and comments, replying, reading
// engagement counters, and introspecting the long-lived page credential.
//
// The client wraps the platform's Graph-style REST API with resty. Every
// method takes a context and returns explicit errors; callers decide what
// a failure means for their cycle. No retries happen here: a failed call
// is reported once and the job waits for its next trigger.
package social

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/agenciapulso/go-agency-backend/internal/config"
)

// Post is one entry of the page feed as the platform returns it.
type Post struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// From identifies a comment author. Empty when the platform withholds it.
type From struct {
	Name string `json:"name"`
}

// Comment is one comment under a post.
type Comment struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	From    From   `json:"from"`
}

// Engagement holds the raw interaction counters for one post.
type Engagement struct {
	Likes    int
	Comments int
	Shares   int
}

// TokenStatus is the result of a credential introspection call.
// ExpiresAt and DataAccessExpiresAt are nil for non-expiring grants.
type TokenStatus struct {
	Valid               bool
	AppName             string
	Scopes              []string
	ExpiresAt           *time.Time
	DataAccessExpiresAt *time.Time
}

// Client talks to the social platform on behalf of one page.
type Client struct {
	http   *resty.Client
	token  string
	pageID string
}

// New builds a Client from the platform configuration.
func New(cfg config.SocialConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
		token:  cfg.AccessToken,
		pageID: cfg.PageID,
	}
}

// apiError is the platform's standard error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (e *apiError) wrap(op string) error {
	return fmt.Errorf("social: %s: %s (code %d)", op, e.Error.Message, e.Error.Code)
}

// PublishText publishes a plain text post to the page feed and returns the
// platform post id.
func (c *Client) PublishText(ctx context.Context, message string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"message":      message,
			"access_token": c.token,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/feed", c.pageID))
	if err != nil {
		return "", fmt.Errorf("social: publish text: %w", err)
	}
	if resp.IsError() {
		return "", apiErr.wrap("publish text")
	}
	return out.ID, nil
}

// PublishPhoto publishes a post with an attached image URL and returns the
// platform post id.
func (c *Client) PublishPhoto(ctx context.Context, message, imageURL string) (string, error) {
	var out struct {
		PostID string `json:"post_id"`
		ID     string `json:"id"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"url":          imageURL,
			"message":      message,
			"access_token": c.token,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/photos", c.pageID))
	if err != nil {
		return "", fmt.Errorf("social: publish photo: %w", err)
	}
	if resp.IsError() {
		return "", apiErr.wrap("publish photo")
	}
	// Photo uploads report both a media id and a feed post id; the feed id
	// is the one comments and insights hang off.
	if out.PostID != "" {
		return out.PostID, nil
	}
	return out.ID, nil
}

// RecentPosts returns the n most recent posts of the page feed.
func (c *Client) RecentPosts(ctx context.Context, n int) ([]Post, error) {
	var out struct {
		Data []Post `json:"data"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "id,message",
			"limit":        strconv.Itoa(n),
			"access_token": c.token,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get(fmt.Sprintf("/%s/posts", c.pageID))
	if err != nil {
		return nil, fmt.Errorf("social: recent posts: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr.wrap("recent posts")
	}
	return out.Data, nil
}

// Comments returns the current comments under a post.
func (c *Client) Comments(ctx context.Context, postID string) ([]Comment, error) {
	var out struct {
		Data []Comment `json:"data"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "id,message,from{name}",
			"access_token": c.token,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get(fmt.Sprintf("/%s/comments", postID))
	if err != nil {
		return nil, fmt.Errorf("social: comments: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr.wrap("comments")
	}
	return out.Data, nil
}

// Reply posts a reply under the given comment.
func (c *Client) Reply(ctx context.Context, commentID, message string) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"message":      message,
			"access_token": c.token,
		}).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/comments", commentID))
	if err != nil {
		return fmt.Errorf("social: reply: %w", err)
	}
	if resp.IsError() {
		return apiErr.wrap("reply")
	}
	return nil
}

// Engagement fetches the like/comment/share counters for a post.
func (c *Client) Engagement(ctx context.Context, postID string) (Engagement, error) {
	var out struct {
		Likes struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"likes"`
		Comments struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
		Shares struct {
			Count int `json:"count"`
		} `json:"shares"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "likes.summary(true),comments.summary(true),shares",
			"access_token": c.token,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get("/" + postID)
	if err != nil {
		return Engagement{}, fmt.Errorf("social: engagement: %w", err)
	}
	if resp.IsError() {
		return Engagement{}, apiErr.wrap("engagement")
	}
	return Engagement{
		Likes:    out.Likes.Summary.TotalCount,
		Comments: out.Comments.Summary.TotalCount,
		Shares:   out.Shares.Count,
	}, nil
}

// IntrospectToken asks the platform to describe the configured credential.
// An invalid token is not an error: it comes back as Valid=false so the
// token monitor can alert instead of failing.
func (c *Client) IntrospectToken(ctx context.Context) (TokenStatus, error) {
	var out struct {
		Data struct {
			IsValid             bool     `json:"is_valid"`
			Application         string   `json:"application"`
			Scopes              []string `json:"scopes"`
			ExpiresAt           int64    `json:"expires_at"`
			DataAccessExpiresAt int64    `json:"data_access_expires_at"`
		} `json:"data"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"input_token":  c.token,
			"access_token": c.token,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Get("/debug_token")
	if err != nil {
		return TokenStatus{}, fmt.Errorf("social: introspect token: %w", err)
	}
	if resp.IsError() {
		return TokenStatus{}, apiErr.wrap("introspect token")
	}

	st := TokenStatus{
		Valid:   out.Data.IsValid,
		AppName: out.Data.Application,
		Scopes:  out.Data.Scopes,
	}
	if out.Data.ExpiresAt > 0 {
		t := time.Unix(out.Data.ExpiresAt, 0)
		st.ExpiresAt = &t
	}
	if out.Data.DataAccessExpiresAt > 0 {
		t := time.Unix(out.Data.DataAccessExpiresAt, 0)
		st.DataAccessExpiresAt = &t
	}
	return st, nil
}

// RenewDataAccess performs a lightweight authenticated call whose sole
// purpose is to extend the data-access grant. Any successful API usage
// counts, so this hits the cheapest endpoint available.
func (c *Client) RenewDataAccess(ctx context.Context) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fields":       "id",
			"access_token": c.token,
		}).
		SetError(&apiErr).
		Get("/me")
	if err != nil {
		return fmt.Errorf("social: renew data access: %w", err)
	}
	if resp.IsError() {
		return apiErr.wrap("renew data access")
	}
	return nil
}

// HasToken reports whether a credential is configured at all. The token
// monitor alerts instead of calling out when it is missing.
func (c *Client) HasToken() bool { return c.token != "" }
