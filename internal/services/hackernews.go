package services

import (
	"context"
	"fmt"

	"distilled/internal/config"
	"distilled/internal/logger"
	"distilled/internal/models"
	"distilled/internal/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const hackerNewsBaseURL = "https://hacker-news.firebaseio.com/v0"

// HackerNewsSource Hacker News 首页热门
// 设置 extractor 后，没有正文的链接帖会尝试抓取原文摘要
type HackerNewsSource struct {
	http      *resty.Client
	extractor *ArticleExtractor
	limit     int
	pool      int
	BaseURL   string
}

func NewHackerNewsSource(client *resty.Client, digest config.Digest) *HackerNewsSource {
	return &HackerNewsSource{
		http:    client,
		limit:   digest.PostsPerSource,
		pool:    digest.CandidatePool,
		BaseURL: hackerNewsBaseURL,
	}
}

// WithExtractor 启用原文摘要
func (s *HackerNewsSource) WithExtractor(e *ArticleExtractor) *HackerNewsSource {
	s.extractor = e
	return s
}

func (s *HackerNewsSource) Name() models.Source { return models.SourceHackerNews }

type hnItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`

	summary string
}

// Fetch 取 topstories 前 pool 个并发拉详情，任一失败则整个来源失败
func (s *HackerNewsSource) Fetch(ctx context.Context) ([]models.Post, error) {
	var ids []int
	resp, err := s.http.R().SetContext(ctx).SetResult(&ids).Get(s.BaseURL + "/topstories.json")
	if err != nil {
		return nil, fmt.Errorf("hackernews top stories: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("hackernews top stories: status %d", resp.StatusCode())
	}
	if s.pool > 0 && len(ids) > s.pool {
		ids = ids[:s.pool]
	}

	items := make([]*hnItem, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			item, err := s.fetchItem(gctx, id)
			if err != nil {
				return err
			}
			if i < s.limit {
				s.summarize(gctx, item)
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(items))
	for _, item := range items {
		if item == nil || item.Dead || item.Deleted {
			continue
		}
		posts = append(posts, hnPost(item))
	}
	return limitPosts(posts, s.limit), nil
}

func (s *HackerNewsSource) fetchItem(ctx context.Context, id int) (*hnItem, error) {
	var item *hnItem
	resp, err := s.http.R().SetContext(ctx).SetResult(&item).Get(fmt.Sprintf("%s/item/%d.json", s.BaseURL, id))
	if err != nil {
		return nil, fmt.Errorf("hackernews item %d: %w", id, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("hackernews item %d: status %d", id, resp.StatusCode())
	}
	return item, nil
}

// summarize 摘要抓取失败只记日志，仍使用分数与评论数
func (s *HackerNewsSource) summarize(ctx context.Context, item *hnItem) {
	if s.extractor == nil || item == nil || item.Text != "" || item.URL == "" {
		return
	}
	summary, err := s.extractor.Extract(ctx, item.URL)
	if err != nil {
		logger.Log.Debug("原文摘要抓取失败", zap.Int("item", item.ID), zap.Error(err))
		return
	}
	item.summary = summary
}

func hnPost(item *hnItem) models.Post {
	content := utils.HTMLToText(item.Text)
	if content == "" {
		content = item.summary
	}
	if content == "" {
		content = fmt.Sprintf("%d points • %d comments", item.Score, item.Descendants)
	}
	url := item.URL
	if url == "" {
		url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
	}
	return models.Post{
		ID:      fmt.Sprintf("hn_%d", item.ID),
		Source:  models.SourceHackerNews,
		Title:   item.Title,
		Content: content,
		URL:     url,
		Votes:   intPtr(item.Score),
	}
}
