package handlers

import (
	"net/http"
	"time"

	"distilled/internal/logger"
	"distilled/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RenderError 统一的 JSON 错误响应
func RenderError(c *gin.Context, code int, message string, err error) {
	body := gin.H{
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		body["message"] = err.Error()
	}
	c.JSON(code, body)
}

// observeJob 记录任务耗时与结果
func observeJob(job string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	elapsed := time.Since(start)
	metrics.JobDuration.WithLabelValues(job, result).Observe(elapsed.Seconds())

	if err != nil {
		logger.Log.Error("job failed", zap.String("job", job), zap.Duration("elapsed", elapsed), zap.Error(err))
		return
	}
	logger.Log.Info("job finished", zap.String("job", job), zap.Duration("elapsed", elapsed))
}

// Health 存活检查
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
