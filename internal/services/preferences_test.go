package services

import (
	"context"
	"testing"

	"distilled/internal/db/dbtest"
	"distilled/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postsFrom(sources ...models.Source) []models.Post {
	posts := make([]models.Post, 0, len(sources))
	for i, s := range sources {
		posts = append(posts, models.Post{ID: string(s) + "_" + string(rune('0'+i)), Source: s})
	}
	return posts
}

func TestCalculateSourcePreferences(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550100", true)
	other := createUser(t, conn, "+15550101", true)
	seedInteractions(t, conn, user.ID, models.SourceGitHub, 3, 0)
	seedInteractions(t, conn, user.ID, models.SourceReddit, 1, 4)
	seedInteractions(t, conn, user.ID, models.SourceHackerNews, 2, 2)
	seedInteractions(t, conn, other.ID, models.SourceProductHunt, 0, 3)

	svc := NewPreferenceService(conn, testDigestConfig())
	prefs, err := svc.CalculateSourcePreferences(context.Background(), user.ID)
	require.NoError(t, err)

	require.Len(t, prefs, 3)
	assert.Equal(t, SourcePreference{Source: models.SourceGitHub, Likes: 3, Dislikes: 0, Score: 1}, prefs[models.SourceGitHub])
	assert.InDelta(t, -0.6, prefs[models.SourceReddit].Score, 1e-9)
	assert.Equal(t, 0.0, prefs[models.SourceHackerNews].Score)
	assert.NotContains(t, prefs, models.SourceProductHunt)
}

func TestFilterPostsLearningPhase(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550102", true)
	seedInteractions(t, conn, user.ID, models.SourceReddit, 0, 4)

	svc := NewPreferenceService(conn, testDigestConfig())
	input := postsFrom(models.SourceReddit, models.SourceGitHub, models.SourceReddit)

	got, err := svc.FilterPostsForUser(context.Background(), user.ID, input)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestFilterPostsBlocksDislikedSource(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550103", true)
	seedInteractions(t, conn, user.ID, models.SourceGitHub, 3, 0)
	seedInteractions(t, conn, user.ID, models.SourceReddit, 1, 4)

	svc := NewPreferenceService(conn, testDigestConfig())
	input := postsFrom(models.SourceGitHub, models.SourceReddit, models.SourceHackerNews, models.SourceGitHub)

	got, err := svc.FilterPostsForUser(context.Background(), user.ID, input)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, input[0], got[0])
	assert.Equal(t, input[2], got[1])
	assert.Equal(t, input[3], got[2])
}

func TestFilterPostsBoundaryScore(t *testing.T) {
	conn := dbtest.New(t)
	user := createUser(t, conn, "+15550104", true)
	// 2 likes, 3 dislikes -> -0.2, exactly at the threshold
	seedInteractions(t, conn, user.ID, models.SourceProductHunt, 2, 3)

	svc := NewPreferenceService(conn, testDigestConfig())
	input := postsFrom(models.SourceProductHunt)

	got, err := svc.FilterPostsForUser(context.Background(), user.ID, input)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
