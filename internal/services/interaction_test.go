package services

import (
	"context"
	"testing"
	"time"

	"distilled/internal/db/dbtest"
	"distilled/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseButtonID(t *testing.T) {
	tests := []struct {
		in     string
		liked  bool
		postID string
		ok     bool
	}{
		{"like:ph_374983", true, "ph_374983", true},
		{"dislike:hn_1", false, "hn_1", true},
		{"like:weird:id", true, "weird:id", true},
		{"like", false, "", false},
		{"like:", false, "", false},
		{"love:ph_1", false, "", false},
		{"", false, "", false},
	}
	for _, tt := range tests {
		liked, postID, err := ParseButtonID(tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrInvalidButtonID, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.liked, liked, tt.in)
		assert.Equal(t, tt.postID, postID, tt.in)
	}
}

func newTestRecorder(t *testing.T) (*InteractionRecorder, *models.User) {
	t.Helper()
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550200", true)
	createPost(t, conn, "ph_374983", models.SourceProductHunt)
	return NewInteractionRecorder(conn, NewUserDirectory(conn), NewPostStore(conn)), &user
}

func TestHandleInteractiveResponseRecordsLike(t *testing.T) {
	rec, user := newTestRecorder(t)

	outcome := rec.HandleInteractiveResponse(context.Background(), "+15550200", "like:ph_374983")
	assert.Equal(t, OutcomeRecorded, outcome)

	var rows []models.Interaction
	require.NoError(t, rec.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, user.ID, rows[0].UserID)
	assert.Equal(t, "ph_374983", rows[0].PostID)
	assert.True(t, rows[0].Liked)
}

func TestHandleInteractiveResponseLastClickWins(t *testing.T) {
	rec, _ := newTestRecorder(t)
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	rec.now = func() time.Time { return first }
	require.Equal(t, OutcomeRecorded, rec.HandleInteractiveResponse(ctx, "+15550200", "like:ph_374983"))
	rec.now = func() time.Time { return second }
	require.Equal(t, OutcomeRecorded, rec.HandleInteractiveResponse(ctx, "+15550200", "dislike:ph_374983"))

	var rows []models.Interaction
	require.NoError(t, rec.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Liked)
	assert.True(t, rows[0].CreatedAt.Equal(second))
}

func TestHandleInteractiveResponseDropsBadInput(t *testing.T) {
	rec, _ := newTestRecorder(t)
	ctx := context.Background()

	assert.Equal(t, OutcomeMalformed, rec.HandleInteractiveResponse(ctx, "+15550200", "ph_374983"))
	assert.Equal(t, OutcomeMalformed, rec.HandleInteractiveResponse(ctx, "+15550200", "meh:ph_374983"))
	assert.Equal(t, OutcomeUnknownUser, rec.HandleInteractiveResponse(ctx, "+19999999", "like:ph_374983"))
	assert.Equal(t, OutcomeUnknownPost, rec.HandleInteractiveResponse(ctx, "+15550200", "like:gh_missing"))

	var count int64
	require.NoError(t, rec.db.Model(&models.Interaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandleInteractiveResponseAfterPhoneChangesHands(t *testing.T) {
	rec, old := newTestRecorder(t)
	ctx := context.Background()
	require.Equal(t, OutcomeRecorded, rec.HandleInteractiveResponse(ctx, "+15550200", "like:ph_374983"))

	// 号码缓存仍指向旧用户
	require.NoError(t, rec.db.Where("id = ?", old.ID).Delete(&models.User{}).Error)
	fresh := createUser(t, rec.db, "+15550200", true)

	require.Equal(t, OutcomeRecorded, rec.HandleInteractiveResponse(ctx, "+15550200", "dislike:ph_374983"))

	var rows []models.Interaction
	require.NoError(t, rec.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, fresh.ID, rows[0].UserID)
	assert.False(t, rows[0].Liked)
}

func TestHandleInteractiveResponseAfterUserDeleted(t *testing.T) {
	rec, user := newTestRecorder(t)
	ctx := context.Background()
	require.Equal(t, OutcomeRecorded, rec.HandleInteractiveResponse(ctx, "+15550200", "like:ph_374983"))

	require.NoError(t, rec.db.Where("id = ?", user.ID).Delete(&models.User{}).Error)

	assert.Equal(t, OutcomeUnknownUser, rec.HandleInteractiveResponse(ctx, "+15550200", "like:ph_374983"))
}
