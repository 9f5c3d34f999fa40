package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"distilled/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CronAuth 校验 "Authorization: Bearer <secret>"，不匹配返回 401
// secret 为空时拒绝所有请求
func CronAuth(secret string) gin.HandlerFunc {
	expected := []byte("Bearer " + secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if secret == "" || subtle.ConstantTimeCompare([]byte(header), expected) != 1 {
			logger.Log.Warn("Unauthorized cron trigger",
				zap.String("path", c.Request.URL.Path),
				zap.Bool("has_header", strings.TrimSpace(header) != ""),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "unauthorized",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		c.Next()
	}
}
