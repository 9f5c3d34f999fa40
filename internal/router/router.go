package router

import (
	"distilled/internal/handlers"
	"distilled/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, cron *handlers.CronHandler, cronSecret string) {
	// 公共路由 (Public Routes)
	r.GET("/healthz", handlers.Health)               // 存活检查
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus 指标

	// 定时任务路由 (Cron Routes)，需要 CRON_SECRET
	jobs := r.Group("/api/cron")
	jobs.Use(middleware.CronAuth(cronSecret))
	{
		jobs.GET("/digest", cron.Digest)                      // 抓取并推送日报
		jobs.GET("/recopilation", cron.Digest)                // 旧路径，与 digest 相同
		jobs.GET("/poll-messages", cron.PollMessages)         // 同步投递状态
		jobs.GET("/poll-interactions", cron.PollInteractions) // 处理按钮回复
	}
}
