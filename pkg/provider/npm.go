package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/devpulse/pkg/domain"
)

// NpmConfig holds settings for the package-registry adapter
type NpmConfig struct {
	Packages     []string
	RegistryURL  string // defaults to the public npm registry
	DownloadsURL string // defaults to the public npm downloads API
	SizeURL      string // defaults to the public packagephobia API
	UserAgent    string
}

// NpmClient fetches per-package metadata, download stats and install
// size. For each package the three lookups run concurrently; metadata
// and downloads are mandatory while a failed size lookup degrades to
// "unknown" instead of failing the package summary.
type NpmClient struct {
	client *http.Client
	cfg    NpmConfig
}

const (
	npmDefaultRegistry  = "https://registry.npmjs.org"
	npmDefaultDownloads = "https://api.npmjs.org"
	npmDefaultSize      = "https://packagephobia.com"
	npmDefaultUserAgent = "devpulse/1.0"
)

// NewNpmClient creates a package-registry adapter
func NewNpmClient(cfg NpmConfig, client *http.Client) *NpmClient {
	if cfg.RegistryURL == "" {
		cfg.RegistryURL = npmDefaultRegistry
	}
	if cfg.DownloadsURL == "" {
		cfg.DownloadsURL = npmDefaultDownloads
	}
	if cfg.SizeURL == "" {
		cfg.SizeURL = npmDefaultSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = npmDefaultUserAgent
	}
	return &NpmClient{client: client, cfg: cfg}
}

// Fetch retrieves summaries for all configured packages, in the
// declared package order
func (c *NpmClient) Fetch(ctx context.Context) (*domain.NpmOverview, error) {
	if len(c.cfg.Packages) == 0 {
		return nil, &ConfigError{Provider: Npm, Setting: "packages"}
	}

	overview := &domain.NpmOverview{Packages: make([]domain.PackageSummary, 0, len(c.cfg.Packages))}
	for _, pkg := range c.cfg.Packages {
		summary, err := c.packageSummary(ctx, pkg)
		if err != nil {
			return nil, err
		}
		overview.Packages = append(overview.Packages, *summary)
	}
	return overview, nil
}

// packageSummary runs the three per-package lookups concurrently and
// waits for all of them to settle. A plain group, not WithContext: a
// failed mandatory lookup must not cancel the size lookup mid-flight.
func (c *NpmClient) packageSummary(ctx context.Context, pkg string) (*domain.PackageSummary, error) {
	var (
		info      domain.PackageInfo
		downloads domain.DownloadStats
		size      *domain.PackageSize
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		info, err = c.packageInfo(ctx, pkg)
		return err
	})
	g.Go(func() error {
		var err error
		downloads, err = c.packageDownloads(ctx, pkg)
		return err
	})
	g.Go(func() error {
		// size is best-effort, failure leaves it unknown
		s, err := c.packageSize(ctx, pkg)
		if err != nil {
			lgr.Printf("[WARN] npm: size lookup failed for %s: %v", pkg, err)
			return nil
		}
		size = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &domain.PackageSummary{Info: info, Downloads: downloads, Size: size}, nil
}

// packageInfo fetches latest-version metadata from the registry
func (c *NpmClient) packageInfo(ctx context.Context, pkg string) (domain.PackageInfo, error) {
	var data struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Description string `json:"description"`
		Time        string `json:"time"`
	}
	if err := getJSON(ctx, c.client, Npm, fmt.Sprintf("%s/%s/latest", c.cfg.RegistryURL, pkg), nil, &data); err != nil {
		return domain.PackageInfo{}, err
	}

	lastPublished := data.Time
	if lastPublished == "" {
		lastPublished = time.Now().UTC().Format(time.RFC3339)
	}
	return domain.PackageInfo{
		Name:          data.Name,
		Version:       data.Version,
		Description:   data.Description,
		LastPublished: lastPublished,
		URL:           "https://www.npmjs.com/package/" + pkg,
	}, nil
}

// packageDownloads fetches the last-month daily range and derives
// weekly/monthly counters
func (c *NpmClient) packageDownloads(ctx context.Context, pkg string) (domain.DownloadStats, error) {
	var data struct {
		Downloads []struct {
			Day       string `json:"day"`
			Downloads int    `json:"downloads"`
		} `json:"downloads"`
	}
	if err := getJSON(ctx, c.client, Npm, fmt.Sprintf("%s/downloads/range/last-month/%s", c.cfg.DownloadsURL, pkg), nil, &data); err != nil {
		return domain.DownloadStats{}, err
	}

	stats := domain.DownloadStats{Package: pkg, Daily: make([]domain.DailyDownloads, 0, len(data.Downloads))}
	for _, d := range data.Downloads {
		stats.Daily = append(stats.Daily, domain.DailyDownloads{Day: d.Day, Downloads: d.Downloads})
		stats.Monthly += d.Downloads
	}

	// weekly is the sum of the trailing 7 days
	start := len(stats.Daily) - 7
	if start < 0 {
		start = 0
	}
	for _, d := range stats.Daily[start:] {
		stats.Weekly += d.Downloads
	}
	return stats, nil
}

// packageSize fetches publish/install sizes from the size service
func (c *NpmClient) packageSize(ctx context.Context, pkg string) (*domain.PackageSize, error) {
	var data struct {
		PublishSize int64 `json:"publishSize"`
		InstallSize int64 `json:"installSize"`
	}
	sizeURL := fmt.Sprintf("%s/api.json?p=%s", c.cfg.SizeURL, url.QueryEscape(pkg))
	headers := map[string]string{"User-Agent": c.cfg.UserAgent}
	if err := getJSON(ctx, c.client, Npm, sizeURL, headers, &data); err != nil {
		return nil, err
	}
	return &domain.PackageSize{PublishSize: data.PublishSize, InstallSize: data.InstallSize}, nil
}
