package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsFetchedTotal 每个来源抓到的条目数
	PostsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distilled_posts_fetched_total",
			Help: "Posts returned by each content source",
		},
		[]string{"source"},
	)

	// SourceErrorsTotal 来源抓取失败次数（失败来源返回空列表）
	SourceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distilled_source_errors_total",
			Help: "Content source fetch failures",
		},
		[]string{"source"},
	)

	// MessagesSentTotal 投递尝试，按结果分类
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distilled_messages_sent_total",
			Help: "WhatsApp delivery attempts by outcome",
		},
		[]string{"status"},
	)

	// InteractionsTotal 按钮回复处理结果
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distilled_interactions_total",
			Help: "Button replies handled by outcome",
		},
		[]string{"outcome"},
	)

	// StatusUpdatesTotal 状态轮询写入的状态变化
	StatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distilled_status_updates_total",
			Help: "Delivery status transitions applied by the poller",
		},
		[]string{"status"},
	)

	// JobDuration 定时任务耗时
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "distilled_job_duration_seconds",
			Help:    "Duration of triggered jobs",
			Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"job", "result"},
	)
)
