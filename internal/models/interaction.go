package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interaction 用户对推送内容的 👍/👎 反馈
// 每个 (user, post) 只保留一条，重复点击覆盖 liked 与 created_at
type Interaction struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_interaction_user_post;index:idx_interaction_user_created,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    string    `gorm:"size:191;not null;uniqueIndex:idx_interaction_user_post" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Liked     bool      `gorm:"not null" json:"liked"` // true = 👍, false = 👎
	CreatedAt time.Time `gorm:"not null;index:idx_interaction_user_created,priority:2" json:"created_at"`
}

func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
