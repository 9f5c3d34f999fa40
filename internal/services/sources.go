package services

import (
	"context"
	"time"

	"distilled/internal/config"
	"distilled/internal/logger"
	"distilled/internal/metrics"
	"distilled/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source 单个内容来源
// Fetch 返回按来源自身排名排序、最多 PostsPerSource 条的内容
type Source interface {
	Name() models.Source
	Fetch(ctx context.Context) ([]models.Post, error)
}

// FetchReport 单个来源的抓取结果，失败时 Err 非空且 Count 为 0
type FetchReport struct {
	Source models.Source `json:"source"`
	Count  int           `json:"count"`
	Err    error         `json:"-"`
}

// PostFetcher 并发抓取所有来源，单个来源失败不影响其他来源
type PostFetcher struct {
	sources []Source
}

func NewPostFetcher(sources ...Source) *PostFetcher {
	return &PostFetcher{sources: sources}
}

// NewDefaultPostFetcher 按配置创建四个来源
func NewDefaultPostFetcher(cfg config.SourcesConfig, digest config.Digest) *PostFetcher {
	client := newSourceHTTPClient(cfg)
	hn := NewHackerNewsSource(client, digest)
	if cfg.ExtractArticles {
		hn.WithExtractor(NewArticleExtractor(client, digest.MaxContentLength))
	}
	byName := map[models.Source]Source{
		models.SourceProductHunt: NewProductHuntSource(client, cfg.ProductHuntToken, digest),
		models.SourceGitHub:      NewGitHubSource(client, cfg.GitHubToken, digest),
		models.SourceReddit:      NewRedditSource(client, cfg.RedditSubreddits, digest),
		models.SourceHackerNews:  hn,
	}

	sources := make([]Source, 0, len(models.AllSources))
	for _, name := range models.AllSources {
		sources = append(sources, byName[name])
	}
	return NewPostFetcher(sources...)
}

// FetchAll 抓取全部来源并按来源顺序拼接结果
func (f *PostFetcher) FetchAll(ctx context.Context) ([]models.Post, []FetchReport) {
	results := make([][]models.Post, len(f.sources))
	reports := make([]FetchReport, len(f.sources))

	var g errgroup.Group
	for i, src := range f.sources {
		g.Go(func() error {
			posts, err := fetchSafely(ctx, src)
			reports[i] = FetchReport{Source: src.Name(), Count: len(posts), Err: err}
			if err != nil {
				metrics.SourceErrorsTotal.WithLabelValues(string(src.Name())).Inc()
				logger.Log.Error("来源抓取失败", logger.WithSource(string(src.Name())), zap.Error(err))
				return nil // 不让单个来源拖垮整个任务
			}
			metrics.PostsFetchedTotal.WithLabelValues(string(src.Name())).Add(float64(len(posts)))
			results[i] = posts
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Post
	fields := make([]zap.Field, 0, len(reports))
	for i, posts := range results {
		all = append(all, posts...)
		fields = append(fields, zap.Int(string(reports[i].Source), reports[i].Count))
	}
	logger.Log.Info("来源抓取完成", append(fields, zap.Int("total", len(all)))...)

	return all, reports
}

// fetchSafely 把 panic 也转成错误，保证单个来源的问题不外溢
func fetchSafely(ctx context.Context, src Source) (posts []models.Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			posts, err = nil, panicError(r)
		}
	}()
	posts, err = src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func newSourceHTTPClient(cfg config.SourcesConfig) *resty.Client {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Distilled-App/1.0"
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", ua).
		SetHeader("Accept", "application/json")
}

func intPtr(v int) *int {
	return &v
}

func limitPosts(posts []models.Post, n int) []models.Post {
	if n > 0 && len(posts) > n {
		return posts[:n]
	}
	return posts
}
