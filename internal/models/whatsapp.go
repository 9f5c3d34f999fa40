package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
)

// Rank 状态只能前进：sent < delivered < read，failed 为终态
func (s MessageStatus) Rank() int {
	switch s {
	case MessageStatusSent:
		return 0
	case MessageStatusDelivered:
		return 1
	case MessageStatusRead:
		return 2
	case MessageStatusFailed:
		return 3
	default:
		return -1
	}
}

// ParseMessageStatus 将服务商状态映射为本地状态
func ParseMessageStatus(s string) (MessageStatus, bool) {
	switch MessageStatus(s) {
	case MessageStatusSent, MessageStatusDelivered, MessageStatusRead, MessageStatusFailed:
		return MessageStatus(s), true
	}
	return "", false
}

// WhatsAppMessage 投递记录，每次发送尝试一行（成功或失败）
// 创建后只由状态轮询更新
type WhatsAppMessage struct {
	ID                string        `gorm:"primaryKey;size:36" json:"id"`
	UserID            string        `gorm:"size:36;not null;index" json:"user_id"`
	User              User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	RecipientPhone    string        `gorm:"not null" json:"recipient_phone"`
	MessageBody       string        `gorm:"type:text;not null" json:"message_body"`
	Status            MessageStatus `gorm:"size:16;not null;index" json:"status"`
	SentAt            time.Time     `gorm:"not null" json:"sent_at"`
	DeliveredAt       *time.Time    `json:"delivered_at"`
	ReadAt            *time.Time    `json:"read_at"`
	ErrorMessage      *string       `gorm:"type:text" json:"error_message"`
	WhatsAppMessageID *string       `gorm:"column:whatsapp_message_id;index" json:"whatsapp_message_id"`
}

func (WhatsAppMessage) TableName() string { return "whatsapp_messages" }

func (m *WhatsAppMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// WhatsAppMessageStatus 状态变化日志，只追加
type WhatsAppMessageStatus struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	MessageID      string          `gorm:"size:36;not null;index" json:"message_id"`
	Message        WhatsAppMessage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Status         MessageStatus   `gorm:"size:16;not null" json:"status"`
	Timestamp      time.Time       `gorm:"not null" json:"timestamp"`
	WebhookPayload string          `gorm:"type:text" json:"webhook_payload"`
}

func (WhatsAppMessageStatus) TableName() string { return "whatsapp_message_statuses" }

func (e *WhatsAppMessageStatus) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
