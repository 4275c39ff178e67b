package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/devpulse/pkg/domain"
)

// BlogConfig holds settings for the personal-blog feed adapter
type BlogConfig struct {
	FeedURL   string
	UserAgent string
}

// BlogClient fetches the user's own blog RSS/Atom feed. Optional
// provider, disabled when no feed URL is configured.
type BlogClient struct {
	client *http.Client
	cfg    BlogConfig
}

// NewBlogClient creates a blog feed adapter
func NewBlogClient(cfg BlogConfig, client *http.Client) *BlogClient {
	if cfg.UserAgent == "" {
		cfg.UserAgent = npmDefaultUserAgent
	}
	return &BlogClient{client: client, cfg: cfg}
}

// Fetch retrieves and parses the blog feed
func (c *BlogClient) Fetch(ctx context.Context) ([]domain.BlogPost, error) {
	if c.cfg.FeedURL == "" {
		return nil, &ConfigError{Provider: Blog, Setting: "feed_url"}
	}

	body, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("blog: parse feed: %w", err)
	}

	posts := make([]domain.BlogPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		post := domain.BlogPost{Title: item.Title, URL: item.Link}
		if item.PublishedParsed != nil {
			post.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			post.Published = *item.UpdatedParsed
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// fetch retrieves the raw feed body
func (c *BlogClient) fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.FeedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("blog: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blog: fetch feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &HTTPError{Provider: Blog, Status: resp.StatusCode}
	}
	return resp.Body, nil
}
