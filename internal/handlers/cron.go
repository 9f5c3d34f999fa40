package handlers

import (
	"context"
	"net/http"
	"time"

	"distilled/internal/services"

	"github.com/gin-gonic/gin"
)

type DigestRunner interface {
	Run(ctx context.Context) (*services.DigestResult, error)
}

type MessagePoller interface {
	PollMessageStatus(ctx context.Context) (*services.StatusPollResult, error)
	PollInteractions(ctx context.Context) (*services.InteractionPollResult, error)
}

// CronHandler 定时任务触发入口，由外部调度器按固定间隔调用
type CronHandler struct {
	digest DigestRunner
	poller MessagePoller
}

func NewCronHandler(digest DigestRunner, poller MessagePoller) *CronHandler {
	return &CronHandler{digest: digest, poller: poller}
}

// jobContext 任务不随请求断开而中止，已完成的部分都已落库
func jobContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// Digest 抓取并推送每日内容
func (h *CronHandler) Digest(c *gin.Context) {
	start := time.Now()
	result, err := h.digest.Run(jobContext(c))
	observeJob("digest", start, err)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "internal server error", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": result.Message,
		"posts":   result.Posts,
		"users":   result.Users,
		"sent":    result.Sent,
		"failed":  result.Failed,
		"errors":  result.Errors,
	})
}

// PollMessages 同步投递状态
func (h *CronHandler) PollMessages(c *gin.Context) {
	start := time.Now()
	result, err := h.poller.PollMessageStatus(jobContext(c))
	observeJob("poll_messages", start, err)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to poll message status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pending": result.Pending,
		"matched": result.Matched,
		"updated": result.Updated,
	})
}

// PollInteractions 处理按钮回复
func (h *CronHandler) PollInteractions(c *gin.Context) {
	start := time.Now()
	result, err := h.poller.PollInteractions(jobContext(c))
	observeJob("poll_interactions", start, err)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to poll interactions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"processed": result.Processed,
		"total":     result.Total,
		"outcomes":  result.Outcomes,
	})
}
