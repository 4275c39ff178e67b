package domain

import "time"

// RepoStats holds normalized stats for a single repository
type RepoStats struct {
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"openIssues"`
	Language    string    `json:"language,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsFork      bool      `json:"isFork"`
	IsArchived  bool      `json:"isArchived"`
}

// GithubOverview is the normalized output of the source-hosting provider,
// all repositories owned by the user plus derived totals
type GithubOverview struct {
	Owner      string      `json:"owner"`
	TotalStars int         `json:"totalStars"`
	TotalForks int         `json:"totalForks"`
	Repos      []RepoStats `json:"repositories"`
}
