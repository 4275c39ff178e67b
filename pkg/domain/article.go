package domain

import "time"

// Platform identifies an article-publishing platform
type Platform string

// supported article platforms
const (
	PlatformZenn  Platform = "zenn"
	PlatformQiita Platform = "qiita"
)

// ZennArticle is a single article as published on Zenn
type ZennArticle struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Likes      int       `json:"likedCount"`
	Bookmarks  int       `json:"bookmarkedCount"`
	Published  time.Time `json:"publishedAt"`
	Path       string    `json:"path"`
	Emoji      string    `json:"emoji,omitempty"`
}

// URLFor returns the full article URL for the given site base, e.g. https://zenn.dev
func (a ZennArticle) URLFor(base string) string { return base + a.Path }

// QiitaArticle is a single article as published on Qiita
type QiitaArticle struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Created time.Time `json:"createdAt"`
	Updated time.Time `json:"updatedAt"`
	Tags    []string  `json:"tags"`
	Likes   int       `json:"likesCount"`
	Stocks  int       `json:"stocksCount"`
}

// BlogPost is one entry of the user's personal blog feed
type BlogPost struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
}

// PlatformEntry is one platform's copy of a cross-platform article
type PlatformEntry struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	Likes    int      `json:"likes"`
	Stocks   int      `json:"stocks"`
	Emoji    string   `json:"emoji,omitempty"`
}

// Article is a reconciled cross-platform article. Platforms accumulate
// in processing order and Date tracks the most recent contributing
// platform date.
type Article struct {
	Title     string          `json:"title"`
	Date      time.Time       `json:"date"`
	Tags      []string        `json:"tags"`
	Platforms []PlatformEntry `json:"platforms"`
}

// LeaderboardEntry is one row of the article view leaderboard
type LeaderboardEntry struct {
	Title        string `json:"title"`
	DisplayTitle string `json:"displayTitle"`
	Views        int    `json:"views"`
	Likes        int    `json:"likes"`
}

// ZennOverview wraps Zenn articles with derived totals
type ZennOverview struct {
	TotalArticles int           `json:"totalArticles"`
	TotalLikes    int           `json:"totalLikes"`
	Articles      []ZennArticle `json:"articles"`
}

// QiitaOverview wraps Qiita articles with derived totals
type QiitaOverview struct {
	TotalArticles int            `json:"totalArticles"`
	TotalLikes    int            `json:"totalLikes"`
	Articles      []QiitaArticle `json:"articles"`
}

// BlogOverview wraps the personal blog posts
type BlogOverview struct {
	TotalPosts int        `json:"totalPosts"`
	Posts      []BlogPost `json:"posts"`
}
