package services

import (
	"context"
	"errors"
	"fmt"

	"distilled/internal/config"
	"distilled/internal/logger"
	"distilled/internal/models"
	"distilled/internal/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	redditBaseURL      = "https://www.reddit.com"
	redditPerSubreddit = 3
)

// RedditSource 若干 subreddit 的 hot 列表
// 单个 subreddit 失败只记录日志，全部失败才返回错误
type RedditSource struct {
	http          *resty.Client
	subreddits    []string
	limit         int
	contentLength int
	BaseURL       string
}

func NewRedditSource(client *resty.Client, subreddits []string, digest config.Digest) *RedditSource {
	if len(subreddits) == 0 {
		subreddits = []string{"programming", "webdev", "javascript"}
	}
	return &RedditSource{
		http:          client,
		subreddits:    subreddits,
		limit:         digest.PostsPerSource,
		contentLength: digest.RedditContentLength,
		BaseURL:       redditBaseURL,
	}
}

func (s *RedditSource) Name() models.Source { return models.SourceReddit }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Selftext          string `json:"selftext"`
	Permalink         string `json:"permalink"`
	Ups               int    `json:"ups"`
	Stickied          bool   `json:"stickied"`
	Promoted          bool   `json:"promoted"`
	Removed           bool   `json:"removed"`
	RemovedByCategory string `json:"removed_by_category"`
}

func (p redditPost) skip() bool {
	return p.Stickied || p.Promoted || p.Removed || p.RemovedByCategory != ""
}

func (s *RedditSource) Fetch(ctx context.Context) ([]models.Post, error) {
	var (
		posts []models.Post
		errs  []error
	)
	for _, sub := range s.subreddits {
		got, err := s.fetchSubreddit(ctx, sub)
		if err != nil {
			logger.Log.Warn("subreddit 抓取失败", zap.String("subreddit", sub), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		posts = append(posts, got...)
	}
	if len(errs) == len(s.subreddits) {
		return nil, errors.Join(errs...)
	}
	return limitPosts(posts, s.limit), nil
}

func (s *RedditSource) fetchSubreddit(ctx context.Context, sub string) ([]models.Post, error) {
	var listing redditListing
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprint(redditPerSubreddit)).
		SetResult(&listing).
		Get(fmt.Sprintf("%s/r/%s/hot.json", s.BaseURL, sub))
	if err != nil {
		return nil, fmt.Errorf("r/%s: %w", sub, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("r/%s: status %d", sub, resp.StatusCode())
	}

	var posts []models.Post
	for _, child := range listing.Data.Children {
		p := child.Data
		if p.skip() || p.ID == "" {
			continue
		}

		content := p.Title
		if text := utils.MarkdownToText(p.Selftext); text != "" {
			content = utils.Cut(text, s.contentLength)
		}

		posts = append(posts, models.Post{
			ID:      "r_" + p.ID,
			Source:  models.SourceReddit,
			Title:   fmt.Sprintf("r/%s: %s", sub, p.Title),
			Content: content,
			URL:     "https://reddit.com" + p.Permalink,
			Votes:   intPtr(p.Ups),
		})
	}
	return posts, nil
}
