package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"distilled/internal/config"
	"distilled/internal/models"
	"distilled/internal/utils"

	"github.com/go-resty/resty/v2"
)

const (
	githubGraphQLURL  = "https://api.github.com/graphql"
	githubTrendingURL = "https://api.gitterapp.com/repositories"
)

const githubSearchQuery = `query TrendingRepos($q: String!, $first: Int!) {
  search(query: $q, type: REPOSITORY, first: $first) {
    nodes {
      ... on Repository {
        name
        owner { login }
        description
        url
        stargazerCount
      }
    }
  }
}`

// GitHubSource GitHub 近期热门仓库
// 配置 GH_TOKEN 时使用官方 GraphQL 搜索，否则使用 trending 接口
type GitHubSource struct {
	http        *resty.Client
	token       string
	limit       int
	pool        int
	GraphQLURL  string
	TrendingURL string
	now         func() time.Time
}

func NewGitHubSource(client *resty.Client, token string, digest config.Digest) *GitHubSource {
	return &GitHubSource{
		http:        client,
		token:       token,
		limit:       digest.PostsPerSource,
		pool:        digest.CandidatePool,
		GraphQLURL:  githubGraphQLURL,
		TrendingURL: githubTrendingURL,
		now:         time.Now,
	}
}

func (s *GitHubSource) Name() models.Source { return models.SourceGitHub }

func (s *GitHubSource) Fetch(ctx context.Context) ([]models.Post, error) {
	if s.token != "" {
		return s.fetchGraphQL(ctx)
	}
	return s.fetchTrending(ctx)
}

type githubRepoNode struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	StargazerCount int    `json:"stargazerCount"`
}

type githubSearchResponse struct {
	Data struct {
		Search struct {
			Nodes []githubRepoNode `json:"nodes"`
		} `json:"search"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *GitHubSource) fetchGraphQL(ctx context.Context) ([]models.Post, error) {
	since := s.now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	var result githubSearchResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"query": githubSearchQuery,
			"variables": map[string]any{
				"q":     "created:>" + since + " stars:>50 sort:stars-desc",
				"first": s.pool,
			},
		}).
		SetResult(&result).
		Post(s.GraphQLURL)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("github api: status %d", resp.StatusCode())
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("github graphql: %s", result.Errors[0].Message)
	}

	posts := make([]models.Post, 0, len(result.Data.Search.Nodes))
	for _, n := range result.Data.Search.Nodes {
		if n.Name == "" {
			continue
		}
		content := strings.TrimSpace(n.Description)
		if content == "" {
			content = "No description available"
		}
		posts = append(posts, models.Post{
			ID:      "gh_" + utils.SanitizeID(n.Owner.Login+"_"+n.Name),
			Source:  models.SourceGitHub,
			Title:   n.Owner.Login + "/" + n.Name,
			Content: content,
			URL:     n.URL,
			Votes:   intPtr(n.StargazerCount),
		})
	}
	return s.rank(posts), nil
}

type githubTrendingRepo struct {
	Author      string `json:"author"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
	URL         string `json:"url"`
}

// fullName trending 接口有的返回 owner/name，有的把 owner 放在 author 里
func (r githubTrendingRepo) fullName() string {
	if strings.Contains(r.Name, "/") || r.Author == "" {
		return r.Name
	}
	return r.Author + "/" + r.Name
}

func (s *GitHubSource) fetchTrending(ctx context.Context) ([]models.Post, error) {
	var repos []githubTrendingRepo
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("since", "daily").
		SetResult(&repos).
		Get(s.TrendingURL)
	if err != nil {
		return nil, fmt.Errorf("github trending request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("github trending: status %d", resp.StatusCode())
	}

	posts := make([]models.Post, 0, len(repos))
	for _, r := range repos {
		name := r.fullName()
		if name == "" {
			continue
		}
		url := r.URL
		if url == "" {
			url = "https://github.com/" + name
		}
		posts = append(posts, models.Post{
			ID:      "gh_" + utils.SanitizeID(strings.ReplaceAll(name, "/", "_")),
			Source:  models.SourceGitHub,
			Title:   name,
			Content: repoContent(r.Description, r.Stars, r.Language),
			URL:     url,
			Votes:   intPtr(r.Stars),
		})
	}
	return s.rank(posts), nil
}

// rank 按 star 数降序，取前 limit 个
func (s *GitHubSource) rank(posts []models.Post) []models.Post {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].VoteCount() > posts[j].VoteCount()
	})
	return limitPosts(posts, s.limit)
}

func repoContent(description string, stars int, language string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	if language == "" {
		language = "Unknown language"
	}
	return fmt.Sprintf("⭐ %d stars • %s", stars, language)
}
