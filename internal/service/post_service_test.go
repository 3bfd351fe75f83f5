package service

import (
	"context"
	"errors"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub overrides selected repository.PostRepository methods.
type postRepoStub struct {
	repository.PostRepository
	createWithOwnerFn func(context.Context, *models.Post) error
	updateFn          func(context.Context, *models.Post) error
}

func (s *postRepoStub) CreateWithOwner(ctx context.Context, post *models.Post) error {
	if s.createWithOwnerFn != nil {
		return s.createWithOwnerFn(ctx, post)
	}
	return s.PostRepository.CreateWithOwner(ctx, post)
}

func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, post)
	}
	return s.PostRepository.Update(ctx, post)
}

func TestPostService_CreateKeepsUploadOrder(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t)
	names := []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg", "7.jpg", "8.jpg", "9.jpg", "10.jpg"}

	post, err := h.postService().CreatePost(context.Background(), CreatePostInput{
		UserID:  owner.ID,
		Caption: "  hello  ",
		Files:   files(names...),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Caption)
	assert.Equal(t, h.store.Uploads(), []string(post.Media))
	assert.Len(t, post.MediaURLs, 10)

	stored, err := h.posts.GetByID(context.Background(), post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, h.store.Uploads(), []string(stored.Media))

	reloaded, err := h.users.GetByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.PostsCount)
}

func TestPostService_CreateRejectsTooManyFiles(t *testing.T) {
	h := newHarness(t)
	owner := h.user(t)
	many := make([]string, 11)
	for i := range many {
		many[i] = "f.jpg"
	}
	_, err := h.postService().CreatePost(context.Background(), CreatePostInput{UserID: owner.ID, Caption: "x", Files: files(many...)})
	assert.True(t, models.IsCode(err, models.CodeValidation))
	assert.Empty(t, h.store.Uploads())
}

func TestPostService_CreateRequiresCaption(t *testing.T) {
	h := newHarness(t)
	_, err := h.postService().CreatePost(context.Background(), CreatePostInput{UserID: 1, Caption: "   "})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestPostService_CreatePersistenceFailureDeletesEveryUpload(t *testing.T) {
	h := newHarness(t)
	stub := &postRepoStub{
		PostRepository: h.posts,
		createWithOwnerFn: func(context.Context, *models.Post) error {
			return errors.New("insert failed")
		},
	}
	svc := NewPostService(stub, h.likes, h.users, h.relations, h.media, h.flags)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Caption: "x", Files: files("a.jpg", "b.jpg", "c.jpg")})
	require.EqualError(t, err, "insert failed")
	require.Len(t, h.store.Uploads(), 3)
	assert.ElementsMatch(t, h.store.Uploads(), h.store.Deletes())
}

func TestPostService_CreateForMissingOwnerCompensates(t *testing.T) {
	h := newHarness(t)
	_, err := h.postService().CreatePost(context.Background(), CreatePostInput{UserID: 999, Caption: "x", Files: files("a.jpg")})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.ElementsMatch(t, h.store.Uploads(), h.store.Deletes())
}

func TestPostService_UpdateRejectsForeignMediaWithoutDeleting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.user(t)
	svc := h.postService()
	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: owner.ID, Caption: "x", Files: files("a.jpg", "b.jpg")})
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, UpdatePostInput{
		UserID:      owner.ID,
		PostID:      post.ID,
		DeleteMedia: []string{post.Media[0], "media/not-mine"},
	})
	assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
	assert.Empty(t, h.store.Deletes())

	stored, err := h.posts.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string(post.Media), []string(stored.Media))
}

func TestPostService_UpdateDeltaAndCaption(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.user(t)
	svc := h.postService()
	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: owner.ID, Caption: "x", Files: files("a.jpg", "b.jpg")})
	require.NoError(t, err)
	a, b := post.Media[0], post.Media[1]

	updated, err := svc.UpdatePost(ctx, UpdatePostInput{
		UserID:      owner.ID,
		PostID:      post.ID,
		Caption:     strPtr("new caption"),
		DeleteMedia: []string{a},
		Files:       files("c.jpg"),
	})
	require.NoError(t, err)
	uploads := h.store.Uploads()
	assert.Equal(t, []string{uploads[2], b}, []string(updated.Media))
	assert.Equal(t, "new caption", updated.Caption)
	assert.Equal(t, []string{a}, h.store.Deletes())
}

func TestPostService_UpdateRequiresAChange(t *testing.T) {
	h := newHarness(t)
	_, err := h.postService().UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 1})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestPostService_UpdatePersistenceFailureRollsBackOnlyNewUploads(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.user(t)
	post, err := h.postService().CreatePost(ctx, CreatePostInput{UserID: owner.ID, Caption: "x", Files: files("a.jpg", "b.jpg")})
	require.NoError(t, err)
	removed := post.Media[0]

	stub := &postRepoStub{
		PostRepository: h.posts,
		updateFn: func(context.Context, *models.Post) error {
			return errors.New("update failed")
		},
	}
	svc := NewPostService(stub, h.likes, h.users, h.relations, h.media, h.flags)
	_, err = svc.UpdatePost(ctx, UpdatePostInput{
		UserID:      owner.ID,
		PostID:      post.ID,
		DeleteMedia: []string{removed},
		Files:       files("c.jpg", "d.jpg"),
	})
	require.EqualError(t, err, "update failed")

	uploads := h.store.Uploads()
	newIDs := uploads[2:]
	assert.ElementsMatch(t, append([]string{removed}, newIDs...), h.store.Deletes())
}

func TestPostService_OnlyOwnerMayEditOrDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.user(t)
	other := h.user(t)
	svc := h.postService()
	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: owner.ID, Caption: "x"})
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, UpdatePostInput{UserID: other.ID, PostID: post.ID, Caption: strPtr("mine now")})
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	err = svc.DeletePost(ctx, other.ID, post.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden))
}

func TestPostService_DeletePurgesMedia(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.user(t)
	svc := h.postService()
	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: owner.ID, Caption: "x", Files: files("a.jpg", "b.jpg")})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, owner.ID, post.ID))
	assert.ElementsMatch(t, []string(post.Media), h.store.Deletes())

	_, err = svc.GetPost(ctx, post.ID, 0)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostService_DeleteWithoutPurgeFlagKeepsMedia(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.user(t)
	svc := NewPostService(h.posts, h.likes, h.users, h.relations, h.media, nil)
	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: owner.ID, Caption: "x", Files: files("a.jpg")})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, owner.ID, post.ID))
	assert.Empty(t, h.store.Deletes())
}

func TestPostService_LikeTwiceConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.user(t)
	fan := h.user(t)
	svc := h.postService()
	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: owner.ID, Caption: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.LikePost(ctx, fan.ID, post.ID))
	err = svc.LikePost(ctx, fan.ID, post.ID)
	assert.True(t, models.IsCode(err, models.CodeConflict))

	require.NoError(t, svc.UnlikePost(ctx, fan.ID, post.ID))
	err = svc.UnlikePost(ctx, fan.ID, post.ID)
	assert.True(t, models.IsCode(err, models.CodeInvalidState))

	err = svc.LikePost(ctx, fan.ID, 12345)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostService_ListUserPostsHonoursBlocks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.user(t)
	viewer := h.user(t)
	svc := h.postService()
	_, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Caption: "x"})
	require.NoError(t, err)

	posts, err := svc.ListUserPosts(ctx, viewer.ID, author.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	require.NoError(t, h.relations.Block(ctx, author.ID, viewer.ID))
	_, err = svc.ListUserPosts(ctx, viewer.ID, author.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	_, err = svc.ListUserPosts(ctx, viewer.ID, 9999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestParseMediaList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseMediaList(" a, ,b ,"))
	assert.Nil(t, ParseMediaList(""))
	assert.Equal(t, []string{"a", "b"}, ParseMediaList("a,b,a"))
}
