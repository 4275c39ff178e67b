package aggregator

import (
	"sort"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/devpulse/pkg/domain"
)

// MergeArticles reconciles single-platform article lists into
// cross-platform articles. Zenn is processed fully before Qiita, so for
// shared titles the Zenn entry is always Platforms[0] and Zenn's (empty)
// tag set seeds the record. The join key is the exact, case-sensitive
// title: same-subject articles with differing punctuation or whitespace
// across platforms will not merge, which is accepted behavior.
// The result is sorted by date descending, ties keep insertion order.
func MergeArticles(zenn []domain.ZennArticle, qiita []domain.QiitaArticle, zennSite string) []domain.Article {
	index := make(map[string]int) // title -> position in ordered list
	var articles []domain.Article

	for _, a := range zenn {
		if a.Title == "" {
			lgr.Printf("[WARN] reconcile: dropped zenn article without title (id %d)", a.ID)
			continue
		}
		entry := domain.PlatformEntry{
			Platform: domain.PlatformZenn,
			URL:      a.URLFor(zennSite),
			Likes:    a.Likes,
			Stocks:   a.Bookmarks,
			Emoji:    a.Emoji,
		}
		if pos, ok := index[a.Title]; ok {
			articles[pos].Platforms = append(articles[pos].Platforms, entry)
			if a.Published.After(articles[pos].Date) {
				articles[pos].Date = a.Published
			}
			continue
		}
		index[a.Title] = len(articles)
		articles = append(articles, domain.Article{
			Title:     a.Title,
			Date:      a.Published,
			Tags:      []string{}, // the zenn listing API carries no tags
			Platforms: []domain.PlatformEntry{entry},
		})
	}

	for _, a := range qiita {
		if a.Title == "" {
			lgr.Printf("[WARN] reconcile: dropped qiita article without title (id %s)", a.ID)
			continue
		}
		entry := domain.PlatformEntry{
			Platform: domain.PlatformQiita,
			URL:      a.URL,
			Likes:    a.Likes,
			Stocks:   a.Stocks,
		}
		if pos, ok := index[a.Title]; ok {
			articles[pos].Platforms = append(articles[pos].Platforms, entry)
			articles[pos].Tags = unionTags(articles[pos].Tags, a.Tags)
			if a.Updated.After(articles[pos].Date) {
				articles[pos].Date = a.Updated
			}
			continue
		}
		index[a.Title] = len(articles)
		articles = append(articles, domain.Article{
			Title:     a.Title,
			Date:      a.Updated,
			Tags:      unionTags([]string{}, a.Tags),
			Platforms: []domain.PlatformEntry{entry},
		})
	}

	// newest first, stable to keep insertion order for equal dates
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Date.After(articles[j].Date)
	})
	return articles
}

// unionTags appends tags not already present, preserving order
func unionTags(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t] = struct{}{}
	}
	for _, t := range add {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		existing = append(existing, t)
	}
	return existing
}
