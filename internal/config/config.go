package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置，来自环境变量（可由 .env 提供）
type Config struct {
	Port        string
	DatabaseURL string
	Environment string
	LogLevel    string
	LogFile     string
	CronSecret  string

	Kapso   KapsoConfig
	Sources SourcesConfig
	Digest  Digest
}

// KapsoConfig WhatsApp 服务商 (Kapso Cloud API 代理) 配置
type KapsoConfig struct {
	APIKey        string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Timeout       time.Duration
}

// SourcesConfig 内容源抓取配置
type SourcesConfig struct {
	ProductHuntToken string
	GitHubToken      string
	RedditSubreddits []string
	UserAgent        string
	HTTPTimeout      time.Duration
	ExtractArticles  bool // 为没有正文的 Hacker News 链接抓取原文摘要
}

// Digest 推送与偏好过滤的调参常量
type Digest struct {
	LearningThreshold   int           // 交互数低于该值时不过滤 (学习期)
	BlockScore          float64       // 来源得分低于该值则屏蔽
	MaxPostsPerDay      int           // 每个用户每次最多推送条数
	MaxContentLength    int           // 消息正文截断长度
	SendInterval        time.Duration // 两条消息之间的间隔
	PostsPerSource      int           // 每个来源最多产出条数
	CandidatePool       int           // 每个来源先取的原始条数
	RedditContentLength int           // Reddit 正文截断长度
	PollWindow          time.Duration // 轮询回看窗口
	PollLimit           int           // 轮询单页条数
}

// DefaultDigest 默认调参
func DefaultDigest() Digest {
	return Digest{
		LearningThreshold:   5,
		BlockScore:          -0.2,
		MaxPostsPerDay:      5,
		MaxContentLength:    800,
		SendInterval:        time.Second,
		PostsPerSource:      5,
		CandidatePool:       10,
		RedditContentLength: 300,
		PollWindow:          24 * time.Hour,
		PollLimit:           100,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultDigest()

	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "host=localhost user=postgres password=postgres dbname=distilled port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("environment", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "distilled.log")

	v.SetDefault("kapso_base_url", "https://api.kapso.ai/meta/whatsapp")
	v.SetDefault("kapso_api_version", "v24.0")
	v.SetDefault("kapso_timeout", 15*time.Second)

	v.SetDefault("reddit_subreddits", "programming,webdev,javascript")
	v.SetDefault("sources_user_agent", "Distilled-App/1.0")
	v.SetDefault("sources_http_timeout", 20*time.Second)
	v.SetDefault("sources_extract_articles", false)

	v.SetDefault("digest_learning_threshold", d.LearningThreshold)
	v.SetDefault("digest_block_score", d.BlockScore)
	v.SetDefault("digest_max_posts_per_day", d.MaxPostsPerDay)
	v.SetDefault("digest_max_content_length", d.MaxContentLength)
	v.SetDefault("digest_send_interval", d.SendInterval)
	v.SetDefault("digest_posts_per_source", d.PostsPerSource)
	v.SetDefault("digest_candidate_pool", d.CandidatePool)
	v.SetDefault("digest_reddit_content_length", d.RedditContentLength)
	v.SetDefault("digest_poll_window", d.PollWindow)
	v.SetDefault("digest_poll_limit", d.PollLimit)
}

// Load 读取 .env 与环境变量
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FromViper 从已设置好的 viper 实例构建配置
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:        v.GetString("port"),
		DatabaseURL: v.GetString("database_url"),
		Environment: v.GetString("environment"),
		LogLevel:    v.GetString("log_level"),
		LogFile:     v.GetString("log_file"),
		CronSecret:  v.GetString("cron_secret"),
		Kapso: KapsoConfig{
			APIKey:        v.GetString("kapso_api_key"),
			PhoneNumberID: v.GetString("kapso_phone_number_id"),
			BaseURL:       strings.TrimSuffix(v.GetString("kapso_base_url"), "/"),
			APIVersion:    v.GetString("kapso_api_version"),
			Timeout:       v.GetDuration("kapso_timeout"),
		},
		Sources: SourcesConfig{
			ProductHuntToken: v.GetString("producthunt_token"),
			GitHubToken:      v.GetString("gh_token"),
			RedditSubreddits: splitList(v.GetString("reddit_subreddits")),
			UserAgent:        v.GetString("sources_user_agent"),
			HTTPTimeout:      v.GetDuration("sources_http_timeout"),
			ExtractArticles:  v.GetBool("sources_extract_articles"),
		},
		Digest: Digest{
			LearningThreshold:   v.GetInt("digest_learning_threshold"),
			BlockScore:          v.GetFloat64("digest_block_score"),
			MaxPostsPerDay:      v.GetInt("digest_max_posts_per_day"),
			MaxContentLength:    v.GetInt("digest_max_content_length"),
			SendInterval:        v.GetDuration("digest_send_interval"),
			PostsPerSource:      v.GetInt("digest_posts_per_source"),
			CandidatePool:       v.GetInt("digest_candidate_pool"),
			RedditContentLength: v.GetInt("digest_reddit_content_length"),
			PollWindow:          v.GetDuration("digest_poll_window"),
			PollLimit:           v.GetInt("digest_poll_limit"),
		},
	}
	return cfg
}

// IsDevelopment 开发环境下开启 SQL 日志
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
