package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/umputun/devpulse/pkg/domain"
)

// QiitaConfig holds settings for the Qiita article adapter
type QiitaConfig struct {
	User    string
	Token   string
	BaseURL string // defaults to the public API
	PerPage int    // articles per page, defaults to 100
}

// QiitaClient fetches all articles published by a user via the v2 API.
// Pages are requested sequentially until an empty page comes back or
// the accumulated count reaches the Total-Count response header.
type QiitaClient struct {
	client *http.Client
	cfg    QiitaConfig
}

const qiitaDefaultBase = "https://qiita.com/api/v2"

// NewQiitaClient creates a Qiita adapter
func NewQiitaClient(cfg QiitaConfig, client *http.Client) *QiitaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = qiitaDefaultBase
	}
	if cfg.PerPage == 0 {
		cfg.PerPage = 100
	}
	return &QiitaClient{client: client, cfg: cfg}
}

type qiitaItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []struct {
		Name string `json:"name"`
	} `json:"tags"`
	LikesCount  int  `json:"likes_count"`
	StocksCount int  `json:"stocks_count"`
	Private     bool `json:"private"`
}

// Fetch retrieves all of the user's public articles
func (c *QiitaClient) Fetch(ctx context.Context) ([]domain.QiitaArticle, error) {
	if c.cfg.Token == "" {
		return nil, &ConfigError{Provider: Qiita, Setting: "token"}
	}
	if c.cfg.User == "" {
		return nil, &ConfigError{Provider: Qiita, Setting: "user"}
	}

	var articles []domain.QiitaArticle
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.Token}

	fetched := 0 // raw item count, counted before the private filter
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/items?query=user:%s&page=%d&per_page=%d", c.cfg.BaseURL, c.cfg.User, page, c.cfg.PerPage)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("qiita: create request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		var items []qiitaItem
		totalCount, err := c.fetchPage(req, &items)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		fetched += len(items)

		for _, item := range items {
			if item.Private {
				continue
			}
			tags := make([]string, 0, len(item.Tags))
			for _, t := range item.Tags {
				tags = append(tags, t.Name)
			}
			articles = append(articles, domain.QiitaArticle{
				ID:      item.ID,
				Title:   item.Title,
				URL:     item.URL,
				Created: item.CreatedAt,
				Updated: item.UpdatedAt,
				Tags:    tags,
				Likes:   item.LikesCount,
				Stocks:  item.StocksCount,
			})
		}

		// the Total-Count header counts raw items, compare against the
		// unfiltered count or a page with a private item never terminates
		if totalCount > 0 && fetched >= totalCount {
			break
		}
	}
	return articles, nil
}

// fetchPage executes one page request and reports the Total-Count header
func (c *QiitaClient) fetchPage(req *http.Request, out *[]qiitaItem) (totalCount int, err error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qiita: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &HTTPError{Provider: Qiita, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, fmt.Errorf("qiita: decode response: %w", err)
	}

	if tc := resp.Header.Get("Total-Count"); tc != "" {
		if n, convErr := strconv.Atoi(tc); convErr == nil {
			totalCount = n
		}
	}
	return totalCount, nil
}
