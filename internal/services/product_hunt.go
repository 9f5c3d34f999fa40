package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"distilled/internal/config"
	"distilled/internal/logger"
	"distilled/internal/models"
	"distilled/internal/utils"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const (
	productHuntGraphQLURL = "https://api.producthunt.com/v2/api/graphql"
	productHuntFeedURL    = "https://www.producthunt.com/feed"
)

const productHuntQuery = `query TopPosts($first: Int!) {
  posts(order: VOTES, first: $first) {
    nodes { id name tagline url votesCount }
  }
}`

// ProductHuntSource Product Hunt 当日热门产品
// 有 token 时走 GraphQL API，否则退回公开 RSS
type ProductHuntSource struct {
	http       *resty.Client
	parser     *gofeed.Parser
	token      string
	limit      int
	pool       int
	GraphQLURL string
	FeedURL    string
}

func NewProductHuntSource(client *resty.Client, token string, digest config.Digest) *ProductHuntSource {
	parser := gofeed.NewParser()
	parser.Client = client.GetClient()
	if ua := client.Header.Get("User-Agent"); ua != "" {
		parser.UserAgent = ua
	}
	return &ProductHuntSource{
		http:       client,
		parser:     parser,
		token:      token,
		limit:      digest.PostsPerSource,
		pool:       digest.CandidatePool,
		GraphQLURL: productHuntGraphQLURL,
		FeedURL:    productHuntFeedURL,
	}
}

func (s *ProductHuntSource) Name() models.Source { return models.SourceProductHunt }

func (s *ProductHuntSource) Fetch(ctx context.Context) ([]models.Post, error) {
	if s.token == "" {
		return s.fetchFeed(ctx)
	}

	posts, err := s.fetchGraphQL(ctx)
	if err != nil {
		logger.Log.Warn("Product Hunt API 失败，改用 RSS", zap.Error(err))
		return s.fetchFeed(ctx)
	}
	return posts, nil
}

type productHuntResponse struct {
	Data struct {
		Posts struct {
			Nodes []struct {
				ID         string `json:"id"`
				Name       string `json:"name"`
				Tagline    string `json:"tagline"`
				URL        string `json:"url"`
				VotesCount int    `json:"votesCount"`
			} `json:"nodes"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *ProductHuntSource) fetchGraphQL(ctx context.Context) ([]models.Post, error) {
	var result productHuntResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"query":     productHuntQuery,
			"variables": map[string]any{"first": s.pool},
		}).
		SetResult(&result).
		Post(s.GraphQLURL)
	if err != nil {
		return nil, fmt.Errorf("product hunt request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("product hunt api: status %d", resp.StatusCode())
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("product hunt graphql: %s", result.Errors[0].Message)
	}

	posts := make([]models.Post, 0, len(result.Data.Posts.Nodes))
	for _, n := range result.Data.Posts.Nodes {
		posts = append(posts, models.Post{
			ID:      "ph_" + n.ID,
			Source:  models.SourceProductHunt,
			Title:   n.Name,
			Content: n.Tagline,
			URL:     n.URL,
			Votes:   intPtr(n.VotesCount),
		})
	}
	return limitPosts(posts, s.limit), nil
}

func (s *ProductHuntSource) fetchFeed(ctx context.Context) ([]models.Post, error) {
	feed, err := s.parser.ParseURLWithContext(s.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("解析 Product Hunt RSS 失败: %w", err)
	}
	if len(feed.Items) == 0 {
		return nil, errors.New("product hunt feed is empty")
	}

	posts := make([]models.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		id := productHuntItemID(item)
		if id == "" {
			continue
		}

		// 优先使用 description，其次是 content
		content := item.Description
		if content == "" {
			content = item.Content
		}

		posts = append(posts, models.Post{
			ID:      "ph_" + id,
			Source:  models.SourceProductHunt,
			Title:   strings.TrimSpace(item.Title),
			Content: utils.HTMLToText(content),
			URL:     item.Link,
		})
	}
	return limitPosts(posts, s.limit), nil
}

// productHuntItemID 从 GUID (tag:www.producthunt.com,2005:Post/123) 或链接中取出稳定标识
func productHuntItemID(item *gofeed.Item) string {
	guid := item.GUID
	if guid == "" {
		guid = item.Link
	}
	if guid == "" {
		return ""
	}
	return utils.SanitizeID(path.Base(strings.TrimSuffix(guid, "/")))
}
