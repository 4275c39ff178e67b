package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/umputun/devpulse/pkg/domain"
)

// ZennConfig holds settings for the Zenn article adapter
type ZennConfig struct {
	User    string
	BaseURL string // defaults to the public site
}

// ZennClient fetches all articles published by a user. The listing API
// paginates via a next_page field that carries the next page number or
// null when the last page is reached.
type ZennClient struct {
	client *http.Client
	cfg    ZennConfig
}

const zennDefaultBase = "https://zenn.dev"

// NewZennClient creates a Zenn adapter
func NewZennClient(cfg ZennConfig, client *http.Client) *ZennClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = zennDefaultBase
	}
	return &ZennClient{client: client, cfg: cfg}
}

type zennListResponse struct {
	Articles []struct {
		ID         int       `json:"id"`
		Title      string    `json:"title"`
		LikedCount int       `json:"liked_count"`
		Bookmarked int       `json:"bookmarked_count"`
		Published  time.Time `json:"published_at"`
		Path       string    `json:"path"`
		Emoji      string    `json:"emoji"`
	} `json:"articles"`
	NextPage *int `json:"next_page"`
}

// Fetch retrieves all pages of the user's articles, newest first
func (c *ZennClient) Fetch(ctx context.Context) ([]domain.ZennArticle, error) {
	if c.cfg.User == "" {
		return nil, &ConfigError{Provider: Zenn, Setting: "user"}
	}

	var articles []domain.ZennArticle
	page := 0 // 0 means no explicit page parameter, i.e. the first page

	for {
		url := fmt.Sprintf("%s/api/articles?username=%s&order=latest", c.cfg.BaseURL, c.cfg.User)
		if page > 0 {
			url = fmt.Sprintf("%s&page=%d", url, page)
		}

		var resp zennListResponse
		if err := getJSON(ctx, c.client, Zenn, url, nil, &resp); err != nil {
			return nil, err
		}

		for _, a := range resp.Articles {
			articles = append(articles, domain.ZennArticle{
				ID:        a.ID,
				Title:     a.Title,
				Likes:     a.LikedCount,
				Bookmarks: a.Bookmarked,
				Published: a.Published,
				Path:      a.Path,
				Emoji:     a.Emoji,
			})
		}

		if resp.NextPage == nil {
			break
		}
		page = *resp.NextPage
	}
	return articles, nil
}

// SiteURL returns the configured site base, used to build full article URLs
func (c *ZennClient) SiteURL() string { return c.cfg.BaseURL }
