package domain

// PageStat holds per-page traffic for the last 30 days
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
	Users int    `json:"users"`
}

// TrafficSource holds per-channel session counts (organic, social, direct, referral)
type TrafficSource struct {
	Channel  string `json:"channel"`
	Sessions int    `json:"sessions"`
	Users    int    `json:"users"`
}

// SiteSummary holds site-wide traffic totals for the reporting window
type SiteSummary struct {
	TotalSessions  int    `json:"totalSessions"`
	TotalUsers     int    `json:"totalUsers"`
	TotalPageViews int    `json:"totalPageViews"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

// SiteAnalytics is the normalized output of the analytics provider
type SiteAnalytics struct {
	PageStats      []PageStat      `json:"pageStats"`
	TrafficSources []TrafficSource `json:"trafficSources"`
	Summary        SiteSummary     `json:"summary"`
}
