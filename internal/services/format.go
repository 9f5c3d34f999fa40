package services

import (
	"fmt"
	"strconv"

	"distilled/internal/models"
	"distilled/internal/utils"
	"distilled/internal/whatsapp"
)

const (
	DigestTemplateName     = "daily_tech_digest"
	DigestTemplateLanguage = "en_US"
)

var sourceIcons = map[models.Source]string{
	models.SourceGitHub:      "💻",
	models.SourceHackerNews:  "📰",
	models.SourceProductHunt: "🚀",
	models.SourceReddit:      "🤖",
}

var sourceNames = map[models.Source]string{
	models.SourceGitHub:      "GitHub",
	models.SourceHackerNews:  "Hacker News",
	models.SourceProductHunt: "Product Hunt",
	models.SourceReddit:      "Reddit",
}

// PostMessage 一条内容对应的交互消息
type PostMessage struct {
	Header  string
	Body    string
	Footer  string
	Buttons []whatsapp.Button
}

// SourceLabel 来源图标 + 名称，未知来源用 📰 和原始名称
func SourceLabel(source models.Source) string {
	icon, ok := sourceIcons[source]
	if !ok {
		icon = "📰"
	}
	name, ok := sourceNames[source]
	if !ok {
		name = string(source)
	}
	return icon + " " + name
}

// FormatPostMessage 组装标题、截断后的正文、链接、票数和 👍/👎 按钮
func FormatPostMessage(post models.Post, maxContentLength int) PostMessage {
	body := fmt.Sprintf("*%s*\n\n%s\n\n🔗 %s", post.Title, utils.Truncate(post.Content, maxContentLength), post.URL)

	footer := ""
	if post.VoteCount() > 0 {
		footer = fmt.Sprintf("%d votes", post.VoteCount())
	}

	return PostMessage{
		Header: SourceLabel(post.Source),
		Body:   body,
		Footer: footer,
		Buttons: []whatsapp.Button{
			{ID: ButtonID(ActionLike, post.ID), Title: "👍 Like"},
			{ID: ButtonID(ActionDislike, post.ID), Title: "👎 Dislike"},
		},
	}
}

// FormatDigestMessage 纯文本版日报，用于文本消息和测试发送
func FormatDigestMessage(post models.Post) string {
	return fmt.Sprintf(`🚀 *Daily Tech Digest*

📌 *%s*
%s

👍 %d votes

🔗 %s

---
Powered by Distilled`, post.Title, post.Content, post.VoteCount(), post.URL)
}

// DigestTemplateComponents 模板 daily_tech_digest 的 {{1}}..{{4}}: 标题、正文、票数、链接
func DigestTemplateComponents(post models.Post, maxContentLength int) []whatsapp.TemplateComponent {
	return []whatsapp.TemplateComponent{
		whatsapp.TextParams(
			post.Title,
			utils.Truncate(post.Content, maxContentLength),
			strconv.Itoa(post.VoteCount()),
			post.URL,
		),
	}
}
