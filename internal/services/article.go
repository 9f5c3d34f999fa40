package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"distilled/internal/utils"

	readability "github.com/go-shiori/go-readability"
	"github.com/go-resty/resty/v2"
)

// ArticleExtractor 抓取链接页面正文，给只有链接没有正文的内容补充摘要
type ArticleExtractor struct {
	http      *resty.Client
	maxLength int
}

func NewArticleExtractor(client *resty.Client, maxLength int) *ArticleExtractor {
	return &ArticleExtractor{http: client, maxLength: maxLength}
}

// Extract 使用 go-readability 提取正文并转为纯文本
func (e *ArticleExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("解析链接失败: %w", err)
	}

	resp, err := e.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("请求失败: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("HTTP 状态码: %d", resp.StatusCode())
	}

	article, err := readability.FromReader(bytes.NewReader(resp.Body()), parsed)
	if err != nil {
		return "", fmt.Errorf("解析正文失败: %w", err)
	}

	text := utils.HTMLToText(article.Content)
	if text == "" {
		return "", fmt.Errorf("页面没有正文: %s", pageURL)
	}
	return utils.Cut(text, e.maxLength), nil
}
