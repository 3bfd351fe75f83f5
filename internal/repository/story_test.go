package repository

import (
	"context"
	"testing"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryRepository_ExpiredStoriesAreHidden(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db)
	repo := NewStoryRepository(db)
	now := time.Now().UTC()

	live := &models.Story{UserID: user.ID, Text: "live", ExpiresAt: now.Add(time.Hour)}
	dead := &models.Story{UserID: user.ID, Text: "dead", Media: models.MediaList([]string{"m"}), ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, dead))

	_, err := repo.GetActive(ctx, dead.ID, user.ID, now)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	active, err := repo.ListActiveByUser(ctx, user.ID, user.ID, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)

	expired, err := repo.ListExpired(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, []string{"m"}, []string(expired[0].Media))

	n, err := repo.DeleteExpired(ctx, []uint{expired[0].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestStoryRepository_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db)
	repo := NewStoryRepository(db)
	now := time.Now().UTC()

	s := &models.Story{UserID: user.ID, Text: "a", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, s))
	require.NoError(t, NewLikeRepository(db).Like(ctx, LikeStory, s.ID, user.ID))

	s.Text = "b"
	s.Media = models.MediaList([]string{"x"})
	require.NoError(t, repo.Update(ctx, s))

	got, err := repo.GetActive(ctx, s.ID, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Text)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.Liked)

	require.NoError(t, repo.Delete(ctx, s.ID))
	err = repo.Delete(ctx, s.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
