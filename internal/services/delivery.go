package services

import (
	"context"
	"time"

	"distilled/internal/config"
	"distilled/internal/logger"
	"distilled/internal/metrics"
	"distilled/internal/models"
	"distilled/internal/whatsapp"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// DeliveryReport 单个用户一次推送的结果
type DeliveryReport struct {
	UserID     string `json:"user_id"`
	Candidates int    `json:"candidates"`
	Eligible   int    `json:"eligible"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
}

// DeliveryService 过滤、格式化并逐条发送内容，每次发送都写一条投递记录
type DeliveryService struct {
	db      *gorm.DB
	client  whatsapp.Client
	prefs   *PreferenceService
	cfg     config.Digest
	limiter *rate.Limiter
	now     func() time.Time
}

func NewDeliveryService(conn *gorm.DB, client whatsapp.Client, prefs *PreferenceService, cfg config.Digest) *DeliveryService {
	return &DeliveryService{
		db:      conn,
		client:  client,
		prefs:   prefs,
		cfg:     cfg,
		limiter: newSendLimiter(cfg.SendInterval),
		now:     time.Now,
	}
}

// newSendLimiter 所有用户共用一个限速器，两次发送之间至少间隔 interval
func newSendLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// ProcessUserDelivery 给一个用户推送内容
// 单条发送失败记为 failed 并继续，只有过滤查询失败或 ctx 取消才返回错误
func (s *DeliveryService) ProcessUserDelivery(ctx context.Context, userID, phone string, posts []models.Post) (*DeliveryReport, error) {
	report := &DeliveryReport{UserID: userID, Candidates: len(posts)}

	eligible, err := s.prefs.FilterPostsForUser(ctx, userID, posts)
	if err != nil {
		return report, err
	}
	if s.cfg.MaxPostsPerDay > 0 && len(eligible) > s.cfg.MaxPostsPerDay {
		eligible = eligible[:s.cfg.MaxPostsPerDay]
	}
	report.Eligible = len(eligible)

	for _, post := range eligible {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}

		if s.sendPost(ctx, userID, phone, post) {
			report.Sent++
		} else {
			report.Failed++
		}
	}

	logger.Log.Info("用户推送完成",
		logger.WithUserID(userID),
		zap.Int("candidates", report.Candidates),
		zap.Int("eligible", report.Eligible),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *DeliveryService) sendPost(ctx context.Context, userID, phone string, post models.Post) bool {
	msg := FormatPostMessage(post, s.cfg.MaxContentLength)
	resp, sendErr := s.client.SendInteractiveButtons(ctx, phone, msg.Body, msg.Buttons, msg.Header, msg.Footer)

	record := models.WhatsAppMessage{
		UserID:         userID,
		RecipientPhone: phone,
		MessageBody:    "Interactive: " + post.Title,
		SentAt:         s.now().UTC(),
	}
	if sendErr != nil {
		errMsg := sendErr.Error()
		record.Status = models.MessageStatusFailed
		record.ErrorMessage = &errMsg
		logger.Log.Warn("消息发送失败", logger.WithUserID(userID), logger.WithPostID(post.ID), zap.Error(sendErr))
	} else {
		record.Status = models.MessageStatusSent
		if id := resp.MessageID(); id != "" {
			record.WhatsAppMessageID = &id
		}
	}
	metrics.MessagesSentTotal.WithLabelValues(string(record.Status)).Inc()

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		logger.Log.Error("写入投递记录失败", logger.WithUserID(userID), logger.WithPostID(post.ID), zap.Error(err))
	}
	return sendErr == nil
}

// SendDigestTemplate 用预先审核的模板发送单条内容，模板消息不带交互按钮
func (s *DeliveryService) SendDigestTemplate(ctx context.Context, userID, phone string, post models.Post) error {
	resp, sendErr := s.client.SendTemplate(ctx, phone, DigestTemplateName, DigestTemplateLanguage,
		DigestTemplateComponents(post, s.cfg.MaxContentLength))

	record := models.WhatsAppMessage{
		UserID:         userID,
		RecipientPhone: phone,
		MessageBody:    "Template: " + DigestTemplateName + " | " + post.Title,
		Status:         models.MessageStatusSent,
		SentAt:         s.now().UTC(),
	}
	if sendErr != nil {
		errMsg := sendErr.Error()
		record.Status = models.MessageStatusFailed
		record.ErrorMessage = &errMsg
	} else if id := resp.MessageID(); id != "" {
		record.WhatsAppMessageID = &id
	}
	metrics.MessagesSentTotal.WithLabelValues(string(record.Status)).Inc()

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}
	return sendErr
}
