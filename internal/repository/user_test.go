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

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := testutil.FakeUser()
	require.NoError(t, repo.Create(ctx, u))

	dup := testutil.FakeUser()
	dup.Username = "  " + u.Username + " "
	err := repo.Create(ctx, dup)
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
}

func TestUserRepository_GetByLogin(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)

	byName, err := repo.GetByLogin(ctx, " "+u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := repo.GetByLogin(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByLogin(ctx, "nobody")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_ExistsExcludesSelf(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := testutil.CreateUser(t, db)

	taken, err := repo.ExistsByUsername(ctx, u.Username, 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByUsername(ctx, u.Username, u.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepository_ProfileCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)
	c := testutil.CreateUser(t, db)
	rel := NewRelationRepository(db)
	require.NoError(t, rel.Follow(ctx, b.ID, a.ID))
	require.NoError(t, rel.Follow(ctx, c.ID, a.ID))
	require.NoError(t, rel.Follow(ctx, a.ID, c.ID))
	createPost(t, db, a.ID)

	profile, err := NewUserRepository(db).GetProfile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.FollowersCount)
	assert.Equal(t, 1, profile.FollowingCount)
	assert.Equal(t, 1, profile.PostsCount)
}

func TestUserRepository_Search(t *testing.T) {
	db := newTestDB(t)
	u := testutil.FakeUser()
	u.Username = "gopher_zqxvalice"
	require.NoError(t, db.Create(u).Error)
	testutil.CreateUser(t, db)

	users, err := NewUserRepository(db).Search(context.Background(), "ZQXVALICE", 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "gopher_zqxvalice", users[0].Username)
	assert.Empty(t, users[0].Email)
}

func TestUserRepository_UpdateDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)

	err := NewUserRepository(db).Update(context.Background(), b.ID, map[string]interface{}{"username": a.Username})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
}

// A posts twice, B comments on each, B follows A. Deleting A removes the
// posts, B's comments on them and B's follow edge.
func TestUserRepository_DeleteCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, db)
	b := testutil.CreateUser(t, db)
	c := testutil.CreateUser(t, db)

	p1 := createPost(t, db, a.ID, "media/a1")
	p2 := createPost(t, db, a.ID, "media/a2", "media/a3")
	c1 := createComment(t, db, p1.ID, b.ID)
	createComment(t, db, p2.ID, b.ID)
	require.NoError(t, NewRelationRepository(db).Follow(ctx, b.ID, a.ID))

	// A's footprint on other users' content.
	cPost := createPost(t, db, c.ID)
	createComment(t, db, cPost.ID, a.ID)
	cComment := createComment(t, db, cPost.ID, b.ID)
	likes := NewLikeRepository(db)
	require.NoError(t, likes.Like(ctx, LikePost, cPost.ID, a.ID))
	require.NoError(t, likes.Like(ctx, LikeComment, cComment.ID, a.ID))
	require.NoError(t, likes.Like(ctx, LikeComment, c1.ID, b.ID))
	require.NoError(t, NewRelationRepository(db).Block(ctx, c.ID, a.ID))

	reply := &models.Reply{CommentID: cComment.ID, UserID: a.ID, Text: "hi"}
	require.NoError(t, NewCommentRepository(db).CreateReply(ctx, reply))
	story := &models.Story{UserID: a.ID, Text: "s", Media: models.MediaList([]string{"media/s1"}), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, NewStoryRepository(db).Create(ctx, story))

	result, err := NewUserRepository(db).DeleteCascade(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"media/a1", "media/a2", "media/a3", "media/s1"}, result.MediaIDs)
	assert.EqualValues(t, 2, result.Posts)
	assert.EqualValues(t, 3, result.Comments)
	assert.EqualValues(t, 1, result.Stories)

	var count int64
	db.Model(&models.Post{}).Where("user_id = ?", a.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Comment{}).Where("post_id IN ?", []uint{p1.ID, p2.ID}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Comment{}).Where("user_id = ?", a.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Reply{}).Where("user_id = ?", a.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.CommentLike{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.PostLike{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Block{}).Count(&count)
	assert.Zero(t, count)

	following, err := NewRelationRepository(db).Following(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, following)

	var remaining models.Post
	require.NoError(t, db.First(&remaining, cPost.ID).Error)
	assert.Equal(t, 1, remaining.CommentsCount, "only B's comment is left on C's post")

	_, err = NewUserRepository(db).GetByID(ctx, a.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = NewUserRepository(db).GetByID(ctx, b.ID)
	assert.NoError(t, err)
}

func TestUserRepository_DeleteCascadeMissingUser(t *testing.T) {
	db := newTestDB(t)
	_, err := NewUserRepository(db).DeleteCascade(context.Background(), 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
