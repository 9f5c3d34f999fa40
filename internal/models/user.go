package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户目录，只读取手机号与订阅开关，写入由登录/设置流程负责
type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `json:"name"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone         *string   `gorm:"uniqueIndex" json:"phone"`
	WhatsAppOptIn bool      `gorm:"column:whatsapp_opt_in;default:false;not null" json:"whatsapp_opt_in"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
