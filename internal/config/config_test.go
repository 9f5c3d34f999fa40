package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDigest(t *testing.T) {
	d := DefaultDigest()
	assert.Equal(t, 5, d.LearningThreshold)
	assert.Equal(t, -0.2, d.BlockScore)
	assert.Equal(t, 5, d.MaxPostsPerDay)
	assert.Equal(t, 800, d.MaxContentLength)
	assert.Equal(t, time.Second, d.SendInterval)
	assert.Equal(t, 24*time.Hour, d.PollWindow)
	assert.Equal(t, 100, d.PollLimit)
}

func TestFromViperDefaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultDigest(), cfg.Digest)
	assert.Equal(t, []string{"programming", "webdev", "javascript"}, cfg.Sources.RedditSubreddits)
	assert.Equal(t, "https://api.kapso.ai/meta/whatsapp", cfg.Kapso.BaseURL)
}

func TestFromViperEnvOverrides(t *testing.T) {
	t.Setenv("CRON_SECRET", "s3cret")
	t.Setenv("DIGEST_LEARNING_THRESHOLD", "10")
	t.Setenv("DIGEST_SEND_INTERVAL", "250ms")
	t.Setenv("REDDIT_SUBREDDITS", " golang , rust ,")
	t.Setenv("KAPSO_BASE_URL", "http://localhost:9000/")
	t.Setenv("SOURCES_EXTRACT_ARTICLES", "true")

	cfg := FromViper(newViper())

	assert.Equal(t, "s3cret", cfg.CronSecret)
	assert.Equal(t, 10, cfg.Digest.LearningThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.Digest.SendInterval)
	assert.Equal(t, []string{"golang", "rust"}, cfg.Sources.RedditSubreddits)
	assert.Equal(t, "http://localhost:9000", cfg.Kapso.BaseURL)
	assert.True(t, cfg.Sources.ExtractArticles)
}
