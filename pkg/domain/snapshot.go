package domain

import "time"

// Totals holds cross-provider derived counters. Counters depending on a
// failed provider are computed over whatever data is present.
type Totals struct {
	Stars            int `json:"stars"`
	Forks            int `json:"forks"`
	Articles         int `json:"articles"`
	Likes            int `json:"likes"`
	PageViews        int `json:"pageViews"`
	MonthlyDownloads int `json:"monthlyDownloads"`
}

// Snapshot is one immutable aggregation-cycle result. A nil provider
// field means that provider's fetch failed this cycle and its data is
// absent, as opposed to the whole cycle having failed.
type Snapshot struct {
	UpdatedAt   time.Time          `json:"updatedAt"`
	Analytics   *SiteAnalytics     `json:"analytics,omitempty"`
	Github      *GithubOverview    `json:"github,omitempty"`
	Npm         *NpmOverview       `json:"npm,omitempty"`
	Lapras      *Portfolio         `json:"lapras,omitempty"`
	Zenn        *ZennOverview      `json:"zenn,omitempty"`
	Qiita       *QiitaOverview     `json:"qiita,omitempty"`
	Blog        *BlogOverview      `json:"blog,omitempty"`
	Articles    []Article          `json:"articles"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Totals      Totals             `json:"totals"`
}
