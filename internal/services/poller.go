package services

import (
	"context"
	"fmt"
	"time"

	"distilled/internal/config"
	"distilled/internal/logger"
	"distilled/internal/metrics"
	"distilled/internal/models"
	"distilled/internal/whatsapp"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const deliveryFailedMessage = "Delivery failed"

// StatusPollResult 一次状态轮询的结果
type StatusPollResult struct {
	Pending int `json:"pending"`
	Matched int `json:"matched"`
	Updated int `json:"updated"`
}

// InteractionPollResult 一次交互轮询的结果
type InteractionPollResult struct {
	Processed int                        `json:"processed"`
	Total     int                        `json:"total"`
	Outcomes  map[InteractionOutcome]int `json:"outcomes"`
}

// Poller 与服务商同步投递状态和按钮回复
// 两个任务都可以重复执行，重复事件不会产生额外变化
type Poller struct {
	db       *gorm.DB
	client   whatsapp.Client
	recorder *InteractionRecorder
	cfg      config.Digest
	now      func() time.Time
}

func NewPoller(conn *gorm.DB, client whatsapp.Client, recorder *InteractionRecorder, cfg config.Digest) *Poller {
	return &Poller{db: conn, client: client, recorder: recorder, cfg: cfg, now: time.Now}
}

func (p *Poller) query(direction string) whatsapp.MessageQuery {
	return whatsapp.MessageQuery{
		Since:     p.now().Add(-p.cfg.PollWindow),
		Limit:     p.cfg.PollLimit,
		Direction: direction,
	}
}

// PollMessageStatus 把仍为 sent 的投递记录更新为服务商侧的最新状态
func (p *Poller) PollMessageStatus(ctx context.Context) (*StatusPollResult, error) {
	var pending []models.WhatsAppMessage
	err := p.db.WithContext(ctx).
		Where("status = ? AND whatsapp_message_id IS NOT NULL", models.MessageStatusSent).
		Order("sent_at ASC").
		Limit(p.cfg.PollLimit).
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("load pending messages: %w", err)
	}

	result := &StatusPollResult{Pending: len(pending)}
	if len(pending) == 0 {
		logger.Log.Debug("没有待同步状态的消息")
		return result, nil
	}

	page, err := p.client.QueryMessages(ctx, p.query(""))
	if err != nil {
		return nil, fmt.Errorf("query message status: %w", err)
	}

	events := make(map[string]*whatsapp.Message, len(page.Data))
	for i := range page.Data {
		m := &page.Data[i]
		if m.ID != "" {
			events[m.ID] = m
		}
	}

	for _, msg := range pending {
		event, ok := events[*msg.WhatsAppMessageID]
		if !ok {
			continue
		}
		result.Matched++

		updated, err := p.applyStatus(ctx, msg, event)
		if err != nil {
			logger.Log.Error("更新消息状态失败", logger.WithMessageID(msg.ID), zap.Error(err))
			continue
		}
		if updated {
			result.Updated++
		}
	}

	logger.Log.Info("状态轮询完成",
		zap.Int("pending", result.Pending),
		zap.Int("matched", result.Matched),
		zap.Int("updated", result.Updated),
	)
	return result, nil
}

// applyStatus 状态只前进，且只在记录仍为 sent 时写入，并追加一条状态日志
func (p *Poller) applyStatus(ctx context.Context, msg models.WhatsAppMessage, event *whatsapp.Message) (bool, error) {
	status, ok := models.ParseMessageStatus(event.Status)
	if !ok || status.Rank() <= msg.Status.Rank() {
		return false, nil
	}

	at := event.Timestamp.Time
	if at.IsZero() {
		at = p.now().UTC()
	}

	updates := map[string]any{"status": status}
	switch status {
	case models.MessageStatusDelivered:
		updates["delivered_at"] = at
	case models.MessageStatusRead:
		updates["read_at"] = at
	case models.MessageStatusFailed:
		updates["error_message"] = deliveryFailedMessage
	}

	updated := false
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WhatsAppMessage{}).
			Where("id = ? AND status = ?", msg.ID, models.MessageStatusSent).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		updated = true

		return tx.Create(&models.WhatsAppMessageStatus{
			MessageID:      msg.ID,
			Status:         status,
			Timestamp:      at,
			WebhookPayload: event.Payload(),
		}).Error
	})
	if err != nil {
		return false, err
	}
	if updated {
		metrics.StatusUpdatesTotal.WithLabelValues(string(status)).Inc()
	}
	return updated, nil
}

// PollInteractions 拉取入站消息，把按钮回复交给 InteractionRecorder
func (p *Poller) PollInteractions(ctx context.Context) (*InteractionPollResult, error) {
	page, err := p.client.QueryMessages(ctx, p.query("inbound"))
	if err != nil {
		return nil, fmt.Errorf("query inbound messages: %w", err)
	}

	result := &InteractionPollResult{Total: len(page.Data), Outcomes: map[InteractionOutcome]int{}}
	for i := range page.Data {
		m := &page.Data[i]
		buttonID, ok := m.ButtonReplyID()
		if !ok {
			continue
		}
		outcome := p.recorder.HandleInteractiveResponse(ctx, m.From, buttonID)
		result.Outcomes[outcome]++
		result.Processed++
	}

	logger.Log.Info("交互轮询完成", zap.Int("processed", result.Processed), zap.Int("total", result.Total))
	return result, nil
}
