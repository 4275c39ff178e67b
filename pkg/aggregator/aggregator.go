package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/devpulse/pkg/domain"
	"github.com/umputun/devpulse/pkg/provider"
)

// AnalyticsProvider fetches site traffic reports
type AnalyticsProvider interface {
	Fetch(ctx context.Context) (*domain.SiteAnalytics, error)
}

// GithubProvider fetches repository stats
type GithubProvider interface {
	Fetch(ctx context.Context) (*domain.GithubOverview, error)
}

// NpmProvider fetches package summaries
type NpmProvider interface {
	Fetch(ctx context.Context) (*domain.NpmOverview, error)
}

// PortfolioProvider fetches the public portfolio document
type PortfolioProvider interface {
	Fetch(ctx context.Context) (*domain.Portfolio, error)
}

// ZennProvider fetches Zenn articles
type ZennProvider interface {
	Fetch(ctx context.Context) ([]domain.ZennArticle, error)
	SiteURL() string
}

// QiitaProvider fetches Qiita articles
type QiitaProvider interface {
	Fetch(ctx context.Context) ([]domain.QiitaArticle, error)
}

// BlogProvider fetches the personal blog feed
type BlogProvider interface {
	Fetch(ctx context.Context) ([]domain.BlogPost, error)
}

// Aggregator runs one aggregation cycle: fetches all providers
// concurrently, tolerates per-provider failures, reconciles articles
// across platforms and assembles an immutable snapshot. It performs no
// I/O beyond the provider calls; persistence is up to the caller.
type Aggregator struct {
	analytics AnalyticsProvider
	github    GithubProvider
	npm       NpmProvider
	portfolio PortfolioProvider
	zenn      ZennProvider
	qiita     QiitaProvider
	blog      BlogProvider // optional, may be nil

	timeout time.Duration
	topN    int
}

// Params holds aggregator dependencies and settings
type Params struct {
	Analytics AnalyticsProvider
	Github    GithubProvider
	Npm       NpmProvider
	Portfolio PortfolioProvider
	Zenn      ZennProvider
	Qiita     QiitaProvider
	Blog      BlogProvider // nil disables the blog provider

	Timeout time.Duration // per-provider timeout, defaults to 30s
	TopN    int           // leaderboard size, defaults to 10
}

// New creates an aggregator
func New(p Params) *Aggregator {
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.TopN == 0 {
		p.TopN = 10
	}
	return &Aggregator{
		analytics: p.Analytics,
		github:    p.Github,
		npm:       p.Npm,
		portfolio: p.Portfolio,
		zenn:      p.Zenn,
		qiita:     p.Qiita,
		blog:      p.Blog,
		timeout:   p.Timeout,
		topN:      p.TopN,
	}
}

// results holds the typed per-provider fetch results for one cycle,
// written by the task closures before the settle-all barrier releases
type results struct {
	analytics *domain.SiteAnalytics
	github    *domain.GithubOverview
	npm       *domain.NpmOverview
	portfolio *domain.Portfolio
	zenn      []domain.ZennArticle
	qiita     []domain.QiitaArticle
	blog      []domain.BlogPost
}

// Run executes one aggregation cycle and returns the assembled
// snapshot. A failed provider leaves its snapshot field nil and its
// share of the totals at zero. Run fails only when every provider
// failed and there is nothing to snapshot.
func (a *Aggregator) Run(ctx context.Context) (*domain.Snapshot, error) {
	res := &results{}

	// fixed declared order, outcome index matches task index
	tasks := []task{
		{name: provider.Analytics, run: func(ctx context.Context) error {
			v, err := a.analytics.Fetch(ctx)
			if err == nil {
				res.analytics = v
			}
			return err
		}},
		{name: provider.Github, run: func(ctx context.Context) error {
			v, err := a.github.Fetch(ctx)
			if err == nil {
				res.github = v
			}
			return err
		}},
		{name: provider.Npm, run: func(ctx context.Context) error {
			v, err := a.npm.Fetch(ctx)
			if err == nil {
				res.npm = v
			}
			return err
		}},
		{name: provider.Lapras, run: func(ctx context.Context) error {
			v, err := a.portfolio.Fetch(ctx)
			if err == nil {
				res.portfolio = v
			}
			return err
		}},
		{name: provider.Zenn, run: func(ctx context.Context) error {
			v, err := a.zenn.Fetch(ctx)
			if err == nil {
				res.zenn = v
			}
			return err
		}},
		{name: provider.Qiita, run: func(ctx context.Context) error {
			v, err := a.qiita.Fetch(ctx)
			if err == nil {
				res.qiita = v
			}
			return err
		}},
	}
	if a.blog != nil {
		tasks = append(tasks, task{name: provider.Blog, run: func(ctx context.Context) error {
			v, err := a.blog.Fetch(ctx)
			if err == nil {
				res.blog = v
			}
			return err
		}})
	}

	outcomes := runAll(ctx, a.timeout, tasks)

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	if failed == len(outcomes) {
		return nil, fmt.Errorf("all %d providers failed", len(outcomes))
	}

	snap := a.assemble(outcomes, res)
	lgr.Printf("[INFO] aggregation cycle done, %d/%d providers ok, %d articles reconciled",
		len(outcomes)-failed, len(outcomes), len(snap.Articles))
	return snap, nil
}

// assemble builds the snapshot from settled outcomes. Pure in-memory
// merge, runs strictly after the fetch barrier.
func (a *Aggregator) assemble(outcomes []Outcome, res *results) *domain.Snapshot {
	snap := &domain.Snapshot{UpdatedAt: time.Now().UTC()}

	ok := make(map[provider.Name]bool, len(outcomes))
	for _, o := range outcomes {
		ok[o.Provider] = !o.Failed()
	}

	if ok[provider.Analytics] {
		snap.Analytics = res.analytics
		snap.Totals.PageViews = res.analytics.Summary.TotalPageViews
	}
	if ok[provider.Github] {
		snap.Github = res.github
		snap.Totals.Stars = res.github.TotalStars
		snap.Totals.Forks = res.github.TotalForks
	}
	if ok[provider.Npm] {
		snap.Npm = res.npm
		for _, p := range res.npm.Packages {
			snap.Totals.MonthlyDownloads += p.Downloads.Monthly
		}
	}
	if ok[provider.Lapras] {
		snap.Lapras = res.portfolio
	}
	if ok[provider.Zenn] {
		overview := &domain.ZennOverview{TotalArticles: len(res.zenn), Articles: res.zenn}
		for _, art := range res.zenn {
			overview.TotalLikes += art.Likes
		}
		snap.Zenn = overview
	}
	if ok[provider.Qiita] {
		overview := &domain.QiitaOverview{TotalArticles: len(res.qiita), Articles: res.qiita}
		for _, art := range res.qiita {
			overview.TotalLikes += art.Likes
		}
		snap.Qiita = overview
	}
	if ok[provider.Blog] {
		snap.Blog = &domain.BlogOverview{TotalPosts: len(res.blog), Posts: res.blog}
	}

	// derived views work off whatever article and analytics data
	// succeeded, failed providers contribute empty lists
	var zennArticles []domain.ZennArticle
	var qiitaArticles []domain.QiitaArticle
	var pageStats []domain.PageStat
	if snap.Zenn != nil {
		zennArticles = snap.Zenn.Articles
	}
	if snap.Qiita != nil {
		qiitaArticles = snap.Qiita.Articles
	}
	if snap.Analytics != nil {
		pageStats = snap.Analytics.PageStats
	}

	snap.Articles = MergeArticles(zennArticles, qiitaArticles, a.zenn.SiteURL())
	snap.Leaderboard = TopArticles(zennArticles, pageStats, a.topN)

	if snap.Zenn != nil {
		snap.Totals.Articles += snap.Zenn.TotalArticles
		snap.Totals.Likes += snap.Zenn.TotalLikes
	}
	if snap.Qiita != nil {
		snap.Totals.Articles += snap.Qiita.TotalArticles
		snap.Totals.Likes += snap.Qiita.TotalLikes
	}

	return snap
}
