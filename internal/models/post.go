package models

import (
	"time"
)

// Source 内容来源
type Source string

const (
	SourceProductHunt Source = "product_hunt"
	SourceGitHub      Source = "github"
	SourceHackerNews  Source = "hackernews"
	SourceReddit      Source = "reddit"
)

// AllSources 按抓取顺序排列的全部来源
var AllSources = []Source{SourceProductHunt, SourceGitHub, SourceReddit, SourceHackerNews}

// Post 外部抓取的内容条目，ID 带来源前缀 (ph_374983, gh_owner_repo, hn_123, r_abc)
// 首次写入即为最终版本，之后不再更新
type Post struct {
	ID        string    `gorm:"primaryKey;size:191" json:"id"`
	Source    Source    `gorm:"size:32;not null;index:idx_post_source" json:"source"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	URL       string    `gorm:"not null" json:"url"`
	Votes     *int      `json:"votes,omitempty"` // 点赞/星标/分数，部分来源没有
	CreatedAt time.Time `json:"created_at"`
}

// VoteCount 返回投票数，没有时为 0
func (p *Post) VoteCount() int {
	if p.Votes == nil {
		return 0
	}
	return *p.Votes
}
