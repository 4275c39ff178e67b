package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/umputun/devpulse/pkg/domain"
)

// GithubConfig holds settings for the source-hosting adapter
type GithubConfig struct {
	User     string
	Token    string
	APIURL   string // defaults to the public GraphQL endpoint
	PageSize int    // repositories per page, defaults to 100
}

// GithubClient fetches all repositories owned by a user via the GraphQL
// API, following cursor pagination until hasNextPage is false. Any
// mid-pagination failure fails the whole fetch, a partial repository
// list is never returned.
type GithubClient struct {
	client *http.Client
	cfg    GithubConfig
}

const githubDefaultAPI = "https://api.github.com/graphql"

// NewGithubClient creates a source-hosting adapter
func NewGithubClient(cfg GithubConfig, client *http.Client) *GithubClient {
	if cfg.APIURL == "" {
		cfg.APIURL = githubDefaultAPI
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 100
	}
	return &GithubClient{client: client, cfg: cfg}
}

const reposQuery = `
query ($owner: String!, $first: Int!, $after: String) {
  user(login: $owner) {
    repositories(first: $first, after: $after, ownerAffiliations: OWNER, orderBy: {field: STARGAZERS, direction: DESC}) {
      nodes {
        name
        nameWithOwner
        description
        url
        stargazerCount
        forkCount
        issues(states: OPEN) { totalCount }
        primaryLanguage { name }
        updatedAt
        isFork
        isArchived
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
}`

type githubRepoNode struct {
	Name            string    `json:"name"`
	NameWithOwner   string    `json:"nameWithOwner"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
	StargazerCount  int       `json:"stargazerCount"`
	ForkCount       int       `json:"forkCount"`
	Issues          struct {
		TotalCount int `json:"totalCount"`
	} `json:"issues"`
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	UpdatedAt  time.Time `json:"updatedAt"`
	IsFork     bool      `json:"isFork"`
	IsArchived bool      `json:"isArchived"`
}

type githubGraphQLResponse struct {
	Data struct {
		User struct {
			Repositories struct {
				Nodes    []githubRepoNode `json:"nodes"`
				PageInfo struct {
					HasNextPage bool    `json:"hasNextPage"`
					EndCursor   *string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"repositories"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Fetch retrieves all owned repositories with derived star/fork totals
func (c *GithubClient) Fetch(ctx context.Context) (*domain.GithubOverview, error) {
	if c.cfg.Token == "" {
		return nil, &ConfigError{Provider: Github, Setting: "token"}
	}
	if c.cfg.User == "" {
		return nil, &ConfigError{Provider: Github, Setting: "user"}
	}

	var repos []domain.RepoStats
	var after *string

	for {
		page, err := c.fetchPage(ctx, after)
		if err != nil {
			return nil, err
		}

		for _, node := range page.Data.User.Repositories.Nodes {
			repo := domain.RepoStats{
				Name:        node.Name,
				FullName:    node.NameWithOwner,
				Description: node.Description,
				URL:         node.URL,
				Stars:       node.StargazerCount,
				Forks:       node.ForkCount,
				OpenIssues:  node.Issues.TotalCount,
				UpdatedAt:   node.UpdatedAt,
				IsFork:      node.IsFork,
				IsArchived:  node.IsArchived,
			}
			if node.PrimaryLanguage != nil {
				repo.Language = node.PrimaryLanguage.Name
			}
			repos = append(repos, repo)
		}

		if !page.Data.User.Repositories.PageInfo.HasNextPage {
			break
		}
		after = page.Data.User.Repositories.PageInfo.EndCursor
	}

	overview := &domain.GithubOverview{Owner: c.cfg.User, Repos: repos}
	for _, r := range repos {
		overview.TotalStars += r.Stars
		overview.TotalForks += r.Forks
	}
	return overview, nil
}

// fetchPage executes one GraphQL page request
func (c *GithubClient) fetchPage(ctx context.Context, after *string) (*githubGraphQLResponse, error) {
	payload := map[string]any{
		"query": reposQuery,
		"variables": map[string]any{
			"owner": c.cfg.User,
			"first": c.cfg.PageSize,
			"after": after,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("github: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("github: create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	var resp githubGraphQLResponse
	if err := doJSON(c.client, Github, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("github: graphql error: %s", resp.Errors[0].Message)
	}
	return &resp, nil
}
