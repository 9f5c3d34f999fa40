package services

import (
	"testing"
	"time"

	"distilled/internal/config"
	"distilled/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDigestConfig() config.Digest {
	cfg := config.DefaultDigest()
	cfg.SendInterval = 0
	return cfg
}

func createUser(t *testing.T, conn *gorm.DB, phone string, optIn bool) models.User {
	t.Helper()
	u := models.User{Name: "user " + phone, Email: phone + "@example.com", WhatsAppOptIn: optIn}
	if phone != "" {
		u.Phone = &phone
	}
	require.NoError(t, conn.Create(&u).Error)
	return u
}

func createPost(t *testing.T, conn *gorm.DB, id string, source models.Source) models.Post {
	t.Helper()
	p := models.Post{ID: id, Source: source, Title: "title " + id, Content: "content " + id, URL: "https://example.com/" + id}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

// seedInteractions creates likes+dislikes posts of source and records the verdicts for user
func seedInteractions(t *testing.T, conn *gorm.DB, userID string, source models.Source, likes, dislikes int) {
	t.Helper()
	n := 0
	add := func(liked bool) {
		n++
		id := string(source) + "_seed_" + userID[:8] + "_" + string(rune('a'+n))
		createPost(t, conn, id, source)
		require.NoError(t, conn.Create(&models.Interaction{
			UserID: userID, PostID: id, Liked: liked, CreatedAt: time.Now(),
		}).Error)
	}
	for i := 0; i < likes; i++ {
		add(true)
	}
	for i := 0; i < dislikes; i++ {
		add(false)
	}
}
