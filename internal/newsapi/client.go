// Package newsapi is the client for the remote news service: listing,
// votes, summaries, per-user saved lists and checkout.
package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/models"
)

// DefaultTimeout bounds every request when the caller does not pass an
// *http.Client of its own.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the news service. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is returned for every response outside the 2xx range.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("news api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("news api: %d: %s", e.Status, e.Message)
}

// do sends a request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("news api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeError builds an APIError, taking the message from a {"detail"} or
// {"error"} body when the service sent one.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		var detail string
		switch {
		case len(body.Detail) > 0 && json.Unmarshal(body.Detail, &detail) == nil:
			apiErr.Message = detail
		case len(body.Detail) > 0:
			apiErr.Message = string(body.Detail)
		default:
			apiErr.Message = body.Error
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// Query selects a page of the news list.
type Query struct {
	Offset int
	Limit  int
	Source string
	Sort   string
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("offset", strconv.Itoa(q.Offset))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Source != "" {
		v.Set("source", q.Source)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// ListNews returns one page of articles.
func (c *Client) ListNews(ctx context.Context, q Query) ([]models.Article, error) {
	var resp struct {
		News []models.Article `json:"news"`
	}
	if err := c.do(ctx, http.MethodGet, "/news", q.values(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.News == nil {
		resp.News = []models.Article{}
	}
	return resp.News, nil
}

var _ feed.Lister = (*Client)(nil)

// List implements feed.Lister.
func (c *Client) List(ctx context.Context, page feed.Page) ([]models.Article, error) {
	return c.ListNews(ctx, Query{
		Offset: page.Offset,
		Limit:  page.Limit,
		Source: page.Filter.Source,
		Sort:   page.Filter.Sort,
	})
}

// Vote applies delta to the article's vote count and returns the new count.
func (c *Client) Vote(ctx context.Context, title string, delta int) (int, error) {
	q := url.Values{}
	q.Set("title", title)
	q.Set("delta", strconv.Itoa(delta))

	var res models.VoteResult
	if err := c.do(ctx, http.MethodPost, "/news/vote", q, nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// VoteCount returns the current vote count of an article.
func (c *Client) VoteCount(ctx context.Context, title string) (int, error) {
	q := url.Values{}
	q.Set("title", title)

	var res models.VoteResult
	if err := c.do(ctx, http.MethodGet, "/news/vote", q, nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// Sources returns the names accepted by the source filter.
func (c *Client) Sources(ctx context.Context) ([]string, error) {
	var resp struct {
		Sources []string `json:"sources"`
	}
	if err := c.do(ctx, http.MethodGet, "/news/sources", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sources, nil
}

// ArticleByTitle looks an article up by its title.
func (c *Client) ArticleByTitle(ctx context.Context, title string) (models.Article, error) {
	q := url.Values{}
	q.Set("title", title)

	var a models.Article
	if err := c.do(ctx, http.MethodGet, "/news/article", q, nil, &a); err != nil {
		return models.Article{}, err
	}
	return a, nil
}

// Summarize asks the service for a summary of content in the given variant.
// The returned text may contain HTML markup.
func (c *Client) Summarize(ctx context.Context, content, variant string) (string, error) {
	body := map[string]string{"content": content, "type": variant}

	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, http.MethodPost, "/news/summary", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// Refresh asks the service to pull its feeds again.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/news/refresh", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SavedArticles returns the remote saved list of a user.
func (c *Client) SavedArticles(ctx context.Context, userID string) ([]models.Article, error) {
	q := url.Values{}
	q.Set("user_id", userID)

	var resp struct {
		SavedArticles []models.Article `json:"saved_articles"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/saved", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.SavedArticles, nil
}

type saveRequest struct {
	UserID string       `json:"user_id"`
	NewsID string       `json:"news_id"`
	User   *models.User `json:"user,omitempty"`
}

// SaveArticle adds an article to the user's remote saved list. user lets the
// service create the account on first save and may be nil.
func (c *Client) SaveArticle(ctx context.Context, userID, newsID string, user *models.User) error {
	return c.do(ctx, http.MethodPost, "/api/save", nil,
		saveRequest{UserID: userID, NewsID: newsID, User: user}, nil)
}

// UnsaveArticle removes an article from the user's remote saved list.
func (c *Client) UnsaveArticle(ctx context.Context, userID, newsID string) error {
	return c.do(ctx, http.MethodDelete, "/api/save", nil,
		saveRequest{UserID: userID, NewsID: newsID}, nil)
}

// IsSaved reports whether the article is on the user's remote saved list.
func (c *Client) IsSaved(ctx context.Context, userID, newsID string) (bool, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("news_id", newsID)

	var resp struct {
		IsSaved bool `json:"is_saved"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/saved/check", q, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsSaved, nil
}

// SaveUser registers the signed-in user with the service.
func (c *Client) SaveUser(ctx context.Context, user models.User) error {
	body := map[string]string{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
	}
	return c.do(ctx, http.MethodPost, "/api/auth/save-user", nil, body, nil)
}

// CreateCheckoutSession starts a subscription checkout and returns the URL
// the user should be sent to.
func (c *Client) CreateCheckoutSession(ctx context.Context) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/create-checkout-session", nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
