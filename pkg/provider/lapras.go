package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/devpulse/pkg/domain"
)

// LaprasConfig holds settings for the portfolio adapter
type LaprasConfig struct {
	User    string
	BaseURL string // defaults to the public portfolio site
}

// LaprasClient fetches the public portfolio document, a single flat
// JSON file with scores and a unified activity feed. No auth, no
// pagination.
type LaprasClient struct {
	client *http.Client
	cfg    LaprasConfig
}

const laprasDefaultBase = "https://lapras.com"

// NewLaprasClient creates a portfolio adapter
func NewLaprasClient(cfg LaprasConfig, client *http.Client) *LaprasClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = laprasDefaultBase
	}
	return &LaprasClient{client: client, cfg: cfg}
}

type laprasPortfolio struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	IconImageURL string  `json:"iconimage_url"`
	EScore       float64 `json:"e_score"`
	BScore       float64 `json:"b_score"`
	IScore       float64 `json:"i_score"`
	Activities   []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Date  string `json:"date"`
		Type  string `json:"type"`
	} `json:"activities"`
}

// Fetch retrieves and normalizes the portfolio document
func (c *LaprasClient) Fetch(ctx context.Context) (*domain.Portfolio, error) {
	if c.cfg.User == "" {
		return nil, &ConfigError{Provider: Lapras, Setting: "user"}
	}

	var data laprasPortfolio
	url := fmt.Sprintf("%s/public/%s.json", c.cfg.BaseURL, c.cfg.User)
	if err := getJSON(ctx, c.client, Lapras, url, nil, &data); err != nil {
		return nil, err
	}

	portfolio := &domain.Portfolio{
		Name:           data.Name,
		Description:    data.Description,
		IconURL:        data.IconImageURL,
		TechScore:      data.EScore,
		BizScore:       data.BScore,
		InfluenceScore: data.IScore,
		Activities:     make([]domain.Activity, 0, len(data.Activities)),
	}

	for _, a := range data.Activities {
		date, err := time.Parse(time.RFC3339, a.Date)
		if err != nil {
			lgr.Printf("[WARN] lapras: skip activity %q, bad date %q: %v", a.Title, a.Date, err)
			continue
		}
		portfolio.Activities = append(portfolio.Activities, domain.Activity{
			Title: a.Title,
			URL:   a.URL,
			Date:  date,
			Type:  a.Type,
		})
	}
	return portfolio, nil
}
