// Package reddit reads public subreddit listings through Reddit's JSON endpoints
package reddit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultUserAgent = "marketpulse-bot/1.0"
	DefaultTimeout   = 10 * time.Second
)

// Post is one listing entry
type Post struct {
	ID        string
	Title     string
	Body      string
	Subreddit string
	URL       string
	Score     int
	Comments  int
	Created   time.Time
}

// Client fetches subreddit search results and hot listings
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithUserAgent sets the User-Agent header Reddit requires
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit sets the request rate
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Reddit client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 3),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "reddit")
	return c
}

// Search returns posts in subreddit matching query within timeFilter (hour, day, week)
func (c *Client) Search(ctx context.Context, subreddit, query, timeFilter string, limit int) ([]Post, error) {
	params := url.Values{
		"q":           {query},
		"restrict_sr": {"1"},
		"sort":        {"relevance"},
		"t":           {timeFilter},
		"limit":       {strconv.Itoa(limit)},
	}
	return c.listing(ctx, fmt.Sprintf("/r/%s/search.json", url.PathEscape(subreddit)), params)
}

// Hot returns the current hot listing of subreddit
func (c *Client) Hot(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	return c.listing(ctx, fmt.Sprintf("/r/%s/hot.json", url.PathEscape(subreddit)), params)
}

func (c *Client) listing(ctx context.Context, path string, params url.Values) ([]Post, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debugw("Reddit request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.Wrapf(errors.ErrRateLimitExceeded, "reddit %s", path)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("reddit %s: status %d", path, resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		return nil, errors.Wrapf(errors.ErrProviderResponse, "reddit %s: invalid JSON", path)
	}
	return parseListing(body), nil
}

func parseListing(body []byte) []Post {
	children := gjson.GetBytes(body, "data.children").Array()
	posts := make([]Post, 0, len(children))
	for _, child := range children {
		d := child.Get("data")
		title := d.Get("title").String()
		if title == "" {
			continue
		}
		link := d.Get("url").String()
		if p := d.Get("permalink").String(); p != "" {
			link = "https://www.reddit.com" + p
		}
		posts = append(posts, Post{
			ID:        d.Get("id").String(),
			Title:     title,
			Body:      d.Get("selftext").String(),
			Subreddit: d.Get("subreddit").String(),
			URL:       link,
			Score:     int(d.Get("score").Int()),
			Comments:  int(d.Get("num_comments").Int()),
			Created:   time.Unix(int64(d.Get("created_utc").Float()), 0).UTC(),
		})
	}
	return posts
}
