package utils

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	// 纯文本输出：去掉所有标签
	stripPolicy = bluemonday.StrictPolicy()

	blockTagRe  = regexp.MustCompile(`(?i)<\s*(br|/p|/li|/h[1-6]|/pre|/blockquote|p)\b[^>]*>`)
	blankLineRe = regexp.MustCompile(`\n{3,}`)
	spaceRe     = regexp.MustCompile(`[ \t]+`)
)

// HTMLToText 将 HTML 片段（如 HN 的 text 字段）转成适合 WhatsApp 的纯文本
func HTMLToText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	// 块级标签先换成换行，否则段落会粘在一起
	s = blockTagRe.ReplaceAllString(s, "\n")
	text := html.UnescapeString(stripPolicy.Sanitize(s))
	return tidy(text)
}

// MarkdownToText 将 Markdown（如 Reddit selftext）渲染后去掉标签
func MarkdownToText(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return tidy(source) // Fallback
	}
	return HTMLToText(buf.String())
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
