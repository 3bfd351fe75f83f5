package repository

import (
	"context"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListWithReplies(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	post := createPost(t, db, owner.ID)
	first := createComment(t, db, post.ID, other.ID)
	createComment(t, db, post.ID, owner.ID)

	repo := NewCommentRepository(db)
	require.NoError(t, repo.CreateReply(ctx, &models.Reply{CommentID: first.ID, UserID: owner.ID, Text: "reply"}))

	comments, err := repo.ListByPost(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	require.Len(t, comments[0].Replies, 1)
	require.NotNil(t, comments[0].Replies[0].User)
	assert.Equal(t, owner.Username, comments[0].Replies[0].User.Username)
	require.NotNil(t, comments[0].User)
	assert.Equal(t, other.Username, comments[0].User.Username)

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Equal(t, 2, reloaded.CommentsCount)
}

func TestCommentRepository_CreateOnMissingPost(t *testing.T) {
	db := newTestDB(t)
	user := testutil.CreateUser(t, db)
	err := NewCommentRepository(db).Create(context.Background(), &models.Comment{PostID: 77, UserID: user.ID, Text: "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCommentRepository_GetReplyChecksParent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db)
	post := createPost(t, db, user.ID)
	c1 := createComment(t, db, post.ID, user.ID)
	c2 := createComment(t, db, post.ID, user.ID)

	repo := NewCommentRepository(db)
	reply := &models.Reply{CommentID: c1.ID, UserID: user.ID, Text: "r"}
	require.NoError(t, repo.CreateReply(ctx, reply))

	_, err := repo.GetReply(ctx, c1.ID, reply.ID)
	require.NoError(t, err)
	_, err = repo.GetReply(ctx, c2.ID, reply.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCommentRepository_DeleteDecrementsCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db)
	post := createPost(t, db, user.ID)
	c := createComment(t, db, post.ID, user.ID)
	repo := NewCommentRepository(db)
	require.NoError(t, repo.CreateReply(ctx, &models.Reply{CommentID: c.ID, UserID: user.ID, Text: "r"}))

	require.NoError(t, repo.Delete(ctx, c))

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Zero(t, reloaded.CommentsCount)
	var replies int64
	db.Model(&models.Reply{}).Count(&replies)
	assert.Zero(t, replies)
}
