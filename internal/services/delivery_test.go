package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"distilled/internal/db/dbtest"
	"distilled/internal/models"
	"distilled/internal/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPostMessage(t *testing.T) {
	post := models.Post{
		ID:      "hn_42",
		Source:  models.SourceHackerNews,
		Title:   "Show HN",
		Content: strings.Repeat("a", 900),
		URL:     "https://example.com",
		Votes:   intPtr(120),
	}

	msg := FormatPostMessage(post, 800)
	assert.Equal(t, "📰 Hacker News", msg.Header)
	assert.Equal(t, "120 votes", msg.Footer)
	assert.True(t, strings.HasPrefix(msg.Body, "*Show HN*\n\n"+strings.Repeat("a", 800)+"...\n\n"))
	assert.True(t, strings.HasSuffix(msg.Body, "🔗 https://example.com"))
	require.Len(t, msg.Buttons, 2)
	assert.Equal(t, whatsapp.Button{ID: "like:hn_42", Title: "👍 Like"}, msg.Buttons[0])
	assert.Equal(t, whatsapp.Button{ID: "dislike:hn_42", Title: "👎 Dislike"}, msg.Buttons[1])

	post.Votes = nil
	post.Source = "mastodon"
	msg = FormatPostMessage(post, 800)
	assert.Empty(t, msg.Footer)
	assert.Equal(t, "📰 mastodon", msg.Header)
}

func TestFormatDigestMessage(t *testing.T) {
	text := FormatDigestMessage(models.Post{Title: "Widget", Content: "Makes widgets", URL: "https://ph.test/w", Votes: intPtr(7)})
	assert.Contains(t, text, "📌 *Widget*\nMakes widgets")
	assert.Contains(t, text, "👍 7 votes")
	assert.Contains(t, text, "🔗 https://ph.test/w")
	assert.True(t, strings.HasSuffix(text, "Powered by Distilled"))
}

func manyPosts(n int, source models.Source) []models.Post {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, models.Post{
			ID: fmt.Sprintf("%s_%d", source, i), Source: source, Title: fmt.Sprintf("post %d", i), URL: "https://example.com",
		})
	}
	return posts
}

func TestProcessUserDeliveryCapsAndRecords(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550300", true)
	client := whatsapp.NewMockClient()
	cfg := testDigestConfig()
	svc := NewDeliveryService(conn, client, NewPreferenceService(conn, cfg), cfg)

	report, err := svc.ProcessUserDelivery(context.Background(), user.ID, "+15550300", manyPosts(8, models.SourceGitHub))
	require.NoError(t, err)
	assert.Equal(t, 8, report.Candidates)
	assert.Equal(t, 5, report.Eligible)
	assert.Equal(t, 5, report.Sent)
	assert.Equal(t, 5, client.CallCount("SendInteractiveButtons"))
	assert.Equal(t, "+15550300", client.Calls[0].Phone)
	assert.Equal(t, "💻 GitHub", client.Calls[0].Header)

	var records []models.WhatsAppMessage
	require.NoError(t, conn.Order("sent_at").Find(&records).Error)
	require.Len(t, records, 5)
	for _, r := range records {
		assert.Equal(t, models.MessageStatusSent, r.Status)
		assert.Equal(t, user.ID, r.UserID)
		require.NotNil(t, r.WhatsAppMessageID)
		assert.True(t, strings.HasPrefix(*r.WhatsAppMessageID, "wamid.mock."))
		assert.True(t, strings.HasPrefix(r.MessageBody, "Interactive: post "))
	}
}

func TestProcessUserDeliveryContinuesAfterSendFailure(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550301", true)
	client := whatsapp.NewMockClient()
	calls := 0
	client.SendInteractiveButtonsFunc = func(phone, body string, buttons []whatsapp.Button, header, footer string) (*whatsapp.SendResponse, error) {
		calls++
		if calls == 2 {
			return nil, &whatsapp.APIError{StatusCode: 400, Body: "invalid recipient"}
		}
		return &whatsapp.SendResponse{}, nil
	}
	cfg := testDigestConfig()
	svc := NewDeliveryService(conn, client, NewPreferenceService(conn, cfg), cfg)

	report, err := svc.ProcessUserDelivery(context.Background(), user.ID, "+15550301", manyPosts(3, models.SourceReddit))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)

	var failed models.WhatsAppMessage
	require.NoError(t, conn.Where("status = ?", models.MessageStatusFailed).First(&failed).Error)
	require.NotNil(t, failed.ErrorMessage)
	assert.Contains(t, *failed.ErrorMessage, "invalid recipient")
	assert.Nil(t, failed.WhatsAppMessageID)
}

func TestProcessUserDeliveryPacesSends(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550302", true)
	client := whatsapp.NewMockClient()
	cfg := testDigestConfig()
	cfg.SendInterval = 50 * time.Millisecond
	svc := NewDeliveryService(conn, client, NewPreferenceService(conn, cfg), cfg)

	start := time.Now()
	_, err := svc.ProcessUserDelivery(context.Background(), user.ID, "+15550302", manyPosts(3, models.SourceGitHub))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestProcessUserDeliveryStopsOnCancel(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550303", true)
	cfg := testDigestConfig()
	client := whatsapp.NewMockClient()
	svc := NewDeliveryService(conn, client, NewPreferenceService(conn, cfg), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.ProcessUserDelivery(ctx, user.ID, "+15550303", manyPosts(2, models.SourceGitHub))
	assert.Error(t, err)
	assert.Zero(t, client.CallCount("SendInteractiveButtons"))
}

func TestSendDigestTemplate(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550304", true)
	client := whatsapp.NewMockClient()
	var got []whatsapp.TemplateComponent
	client.SendTemplateFunc = func(phone, name, lang string, components []whatsapp.TemplateComponent) (*whatsapp.SendResponse, error) {
		assert.Equal(t, DigestTemplateName, name)
		assert.Equal(t, DigestTemplateLanguage, lang)
		got = components
		return &whatsapp.SendResponse{}, nil
	}
	cfg := testDigestConfig()
	svc := NewDeliveryService(conn, client, NewPreferenceService(conn, cfg), cfg)

	err := svc.SendDigestTemplate(context.Background(), user.ID, "+15550304", models.Post{ID: "ph_1", Title: "Widget", Content: "c", URL: "u", Votes: intPtr(9)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9", got[0].Parameters[2].Text)

	var record models.WhatsAppMessage
	require.NoError(t, conn.First(&record).Error)
	assert.Equal(t, "Template: daily_tech_digest | Widget", record.MessageBody)
}
