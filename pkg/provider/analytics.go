package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/umputun/devpulse/pkg/domain"
)

// AnalyticsConfig holds settings for the analytics reporting adapter
type AnalyticsConfig struct {
	PropertyID string
	Token      string
	BaseURL    string // defaults to the public analytics data endpoint
	PageLimit  int    // max page-stat rows, defaults to 50
}

// AnalyticsClient fetches site traffic reports from a GA4-style
// analytics data API. Rows come back as positional dimension/metric
// value pairs matching the requested dimension and metric order.
type AnalyticsClient struct {
	client *http.Client
	cfg    AnalyticsConfig
}

const analyticsDefaultBase = "https://analyticsdata.googleapis.com"

// NewAnalyticsClient creates an analytics adapter
func NewAnalyticsClient(cfg AnalyticsConfig, client *http.Client) *AnalyticsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = analyticsDefaultBase
	}
	if cfg.PageLimit == 0 {
		cfg.PageLimit = 50
	}
	return &AnalyticsClient{client: client, cfg: cfg}
}

// report request/response wire shapes

type reportRequest struct {
	DateRanges []dateRange  `json:"dateRanges"`
	Dimensions []namedField `json:"dimensions,omitempty"`
	Metrics    []namedField `json:"metrics"`
	OrderBys   []orderBy    `json:"orderBys,omitempty"`
	Limit      int          `json:"limit,omitempty"`
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type namedField struct {
	Name string `json:"name"`
}

type orderBy struct {
	Metric namedField `json:"metric"`
	Desc   bool       `json:"desc"`
}

type reportValue struct {
	Value string `json:"value"`
}

type reportRow struct {
	DimensionValues []reportValue `json:"dimensionValues"`
	MetricValues    []reportValue `json:"metricValues"`
}

type reportResponse struct {
	Rows []reportRow `json:"rows"`
}

const (
	analyticsStartDate = "30daysAgo"
	analyticsEndDate   = "today"
)

// Fetch retrieves page stats, traffic sources and the site summary for
// the last 30 days
func (c *AnalyticsClient) Fetch(ctx context.Context) (*domain.SiteAnalytics, error) {
	if c.cfg.Token == "" {
		return nil, &ConfigError{Provider: Analytics, Setting: "token"}
	}
	if c.cfg.PropertyID == "" {
		return nil, &ConfigError{Provider: Analytics, Setting: "property_id"}
	}

	pages, err := c.pageStats(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := c.trafficSources(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := c.siteSummary(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.SiteAnalytics{PageStats: pages, TrafficSources: sources, Summary: summary}, nil
}

// pageStats returns per-page views and users, ordered by views desc
func (c *AnalyticsClient) pageStats(ctx context.Context) ([]domain.PageStat, error) {
	resp, err := c.runReport(ctx, reportRequest{
		DateRanges: []dateRange{{StartDate: analyticsStartDate, EndDate: analyticsEndDate}},
		Dimensions: []namedField{{Name: "pagePath"}},
		Metrics:    []namedField{{Name: "screenPageViews"}, {Name: "activeUsers"}},
		OrderBys:   []orderBy{{Metric: namedField{Name: "screenPageViews"}, Desc: true}},
		Limit:      c.cfg.PageLimit,
	})
	if err != nil {
		return nil, err
	}

	stats := make([]domain.PageStat, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		stats = append(stats, domain.PageStat{
			Path:  dimValue(row.DimensionValues, 0),
			Views: metricValue(row.MetricValues, 0),
			Users: metricValue(row.MetricValues, 1),
		})
	}
	return stats, nil
}

// trafficSources returns per-channel sessions and users, ordered by sessions desc
func (c *AnalyticsClient) trafficSources(ctx context.Context) ([]domain.TrafficSource, error) {
	resp, err := c.runReport(ctx, reportRequest{
		DateRanges: []dateRange{{StartDate: analyticsStartDate, EndDate: analyticsEndDate}},
		Dimensions: []namedField{{Name: "sessionDefaultChannelGroup"}},
		Metrics:    []namedField{{Name: "sessions"}, {Name: "activeUsers"}},
		OrderBys:   []orderBy{{Metric: namedField{Name: "sessions"}, Desc: true}},
	})
	if err != nil {
		return nil, err
	}

	sources := make([]domain.TrafficSource, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		sources = append(sources, domain.TrafficSource{
			Channel:  dimValue(row.DimensionValues, 0),
			Sessions: metricValue(row.MetricValues, 0),
			Users:    metricValue(row.MetricValues, 1),
		})
	}
	return sources, nil
}

// siteSummary returns site-wide totals for the reporting window
func (c *AnalyticsClient) siteSummary(ctx context.Context) (domain.SiteSummary, error) {
	resp, err := c.runReport(ctx, reportRequest{
		DateRanges: []dateRange{{StartDate: analyticsStartDate, EndDate: analyticsEndDate}},
		Metrics:    []namedField{{Name: "sessions"}, {Name: "activeUsers"}, {Name: "screenPageViews"}},
	})
	if err != nil {
		return domain.SiteSummary{}, err
	}

	summary := domain.SiteSummary{StartDate: analyticsStartDate, EndDate: analyticsEndDate}
	if len(resp.Rows) > 0 {
		summary.TotalSessions = metricValue(resp.Rows[0].MetricValues, 0)
		summary.TotalUsers = metricValue(resp.Rows[0].MetricValues, 1)
		summary.TotalPageViews = metricValue(resp.Rows[0].MetricValues, 2)
	}
	return summary, nil
}

// runReport posts a single report request to the analytics API
func (c *AnalyticsClient) runReport(ctx context.Context, report reportRequest) (*reportResponse, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("analytics: marshal report request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/properties/%s:runReport", c.cfg.BaseURL, c.cfg.PropertyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("analytics: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	var resp reportResponse
	if err := doJSON(c.client, Analytics, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func dimValue(vals []reportValue, idx int) string {
	if idx >= len(vals) {
		return ""
	}
	return vals[idx].Value
}

func metricValue(vals []reportValue, idx int) int {
	if idx >= len(vals) {
		return 0
	}
	n, err := strconv.Atoi(vals[idx].Value)
	if err != nil {
		return 0
	}
	return n
}
