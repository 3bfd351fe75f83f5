package repository

import (
	"context"
	"testing"

	"socialhub/internal/cache"
	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationRepository_FollowTwice(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)
	repo := NewRelationRepository(db)

	require.NoError(t, repo.Follow(ctx, a.ID, b.ID))
	err := repo.Follow(ctx, a.ID, b.ID)
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)

	followers, err := repo.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 1)

	require.NoError(t, repo.Unfollow(ctx, a.ID, b.ID))
	err = repo.Unfollow(ctx, a.ID, b.ID)
	assert.True(t, models.IsCode(err, models.CodeInvalidState), "got %v", err)
}

func TestRelationRepository_BlockRemovesFollowsBothWays(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)
	repo := NewRelationRepository(db)

	require.NoError(t, repo.Follow(ctx, a.ID, b.ID))
	require.NoError(t, repo.Follow(ctx, b.ID, a.ID))
	require.NoError(t, repo.Block(ctx, a.ID, b.ID))

	for _, pair := range [][2]uint{{a.ID, b.ID}, {b.ID, a.ID}} {
		following, err := repo.IsFollowing(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.False(t, following)
	}

	blocked, err := repo.BlockList(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, b.ID, blocked[0].ID)

	either, err := repo.IsBlockedEitherWay(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, either)

	err = repo.Block(ctx, a.ID, b.ID)
	assert.True(t, models.IsCode(err, models.CodeConflict))

	require.NoError(t, repo.Unblock(ctx, a.ID, b.ID))
	err = repo.Unblock(ctx, a.ID, b.ID)
	assert.True(t, models.IsCode(err, models.CodeInvalidState))
}

func TestRelationRepository_UnblockInvalidatesProfiles(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := newTestDB(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)
	repo := NewRelationRepository(db)

	require.NoError(t, repo.Block(ctx, a.ID, b.ID))
	for _, id := range []uint{a.ID, b.ID} {
		require.NoError(t, mr.Set(cache.UserProfileKey(id), `{"id":1}`))
	}

	require.NoError(t, repo.Unblock(ctx, a.ID, b.ID))
	assert.False(t, mr.Exists(cache.UserProfileKey(a.ID)))
	assert.False(t, mr.Exists(cache.UserProfileKey(b.ID)))
}
