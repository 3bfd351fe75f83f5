package repository

import (
	"context"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewTestDB(t)
}

func createPost(t *testing.T, db *gorm.DB, ownerID uint, media ...string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: ownerID, Caption: "caption", Media: models.MediaList(media)}
	require.NoError(t, NewPostRepository(db).CreateWithOwner(context.Background(), post))
	return post
}

func createComment(t *testing.T, db *gorm.DB, postID, userID uint) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, UserID: userID, Text: "nice"}
	require.NoError(t, NewCommentRepository(db).Create(context.Background(), c))
	return c
}
