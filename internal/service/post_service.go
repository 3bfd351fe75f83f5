package service

import (
	"context"
	"fmt"
	"strings"

	"socialhub/internal/featureflags"
	"socialhub/internal/mediastore"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
)

type PostService struct {
	posts     repository.PostRepository
	likes     repository.LikeRepository
	users     repository.UserRepository
	relations repository.RelationRepository
	media     *Media
	flags     featureflags.Checker
}

type CreatePostInput struct {
	UserID  uint
	Caption string
	Files   []mediastore.File
}

type UpdatePostInput struct {
	UserID      uint
	PostID      uint
	Caption     *string
	DeleteMedia []string
	Files       []mediastore.File
}

func NewPostService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	relations repository.RelationRepository,
	media *Media,
	flags featureflags.Checker,
) *PostService {
	return &PostService{
		posts:     posts,
		likes:     likes,
		users:     users,
		relations: relations,
		media:     media,
		flags:     flags,
	}
}

func (s *PostService) withURLs(p *models.Post) *models.Post {
	p.MediaURLs = s.media.URLs(p.Media)
	return p
}

// CreatePost uploads the files in order, then persists the post and bumps the
// owner's post count. Uploaded media is deleted again if persisting fails.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.StartCoordinatorSpan(ctx, "PostService", "CreatePost")
	defer span.End()

	caption, err := requireText(in.Caption, "caption")
	if err != nil {
		return nil, err
	}
	if len(in.Files) > s.media.MaxFiles() {
		return nil, models.NewValidationError(fmt.Sprintf("a post can have at most %d images", s.media.MaxFiles()))
	}

	ids, err := s.media.UploadAll(ctx, "post.create", in.Files)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	post := &models.Post{
		UserID:  in.UserID,
		Caption: caption,
		Media:   models.MediaList(ids),
	}
	if err := s.posts.CreateWithOwner(ctx, post); err != nil {
		span.SetError(err)
		s.media.Compensate(ctx, "post.create", ids)
		return nil, err
	}
	return s.withURLs(post), nil
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.withURLs(post), nil
}

// ListUserPosts returns a user's posts unless either side blocked the other.
func (s *PostService) ListUserPosts(ctx context.Context, viewerID, userID uint) ([]models.Post, error) {
	if err := checkVisible(ctx, s.users, s.relations, viewerID, userID); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		s.withURLs(&posts[i])
	}
	return posts, nil
}

// UpdatePost applies a caption change and a media delta. Removed media is
// not restored if persisting fails; only the new uploads are compensated.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	span, ctx := observability.StartCoordinatorSpan(ctx, "PostService", "UpdatePost")
	defer span.End()

	if in.Caption == nil && len(in.DeleteMedia) == 0 && len(in.Files) == 0 {
		return nil, models.NewValidationError("nothing to update")
	}
	var caption string
	if in.Caption != nil {
		var err error
		if caption, err = requireText(*in.Caption, "caption"); err != nil {
			return nil, err
		}
	}

	post, err := s.posts.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(post.UserID, in.UserID, "edit your own posts"); err != nil {
		return nil, err
	}

	media, uploaded, err := s.media.ApplyDelta(ctx, "post.update", post.Media, in.DeleteMedia, in.Files)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	post.Media = models.MediaList(media)
	if in.Caption != nil {
		post.Caption = caption
	}

	if err := s.posts.Update(ctx, post); err != nil {
		span.SetError(err)
		s.media.Compensate(ctx, "post.update", uploaded)
		return nil, err
	}
	return s.withURLs(post), nil
}

// DeletePost removes the post with its comments and likes, then purges its
// media when enabled.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	span, ctx := observability.StartCoordinatorSpan(ctx, "PostService", "DeletePost")
	defer span.End()

	post, err := s.posts.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if err := requireOwner(post.UserID, userID, "delete your own posts"); err != nil {
		return err
	}
	if err := s.posts.DeleteWithDependents(ctx, post); err != nil {
		span.SetError(err)
		return err
	}
	if purgeEnabled(s.flags, userID) {
		s.media.DeleteAll(ctx, DeleteReasonPurge, "post.delete", post.Media)
	}
	return nil
}

func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.posts.GetByID(ctx, postID, userID); err != nil {
		return err
	}
	return s.likes.Like(ctx, repository.LikePost, postID, userID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.posts.GetByID(ctx, postID, userID); err != nil {
		return err
	}
	return s.likes.Unlike(ctx, repository.LikePost, postID, userID)
}

// ParseMediaList splits a comma separated list of media IDs.
func ParseMediaList(raw string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

// checkVisible returns NotFound for a missing target and Forbidden when
// either user blocked the other.
func checkVisible(ctx context.Context, users repository.UserRepository, relations repository.RelationRepository, viewerID, targetID uint) error {
	exists, err := users.Exists(ctx, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", targetID)
	}
	if viewerID == targetID {
		return nil
	}
	blocked, err := relations.IsBlocked(ctx, targetID, viewerID)
	if err != nil {
		return err
	}
	if blocked {
		return models.NewForbiddenError("this user has blocked you")
	}
	blocked, err = relations.IsBlocked(ctx, viewerID, targetID)
	if err != nil {
		return err
	}
	if blocked {
		return models.NewForbiddenError("you have blocked this user")
	}
	return nil
}
