package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"socialhub/internal/featureflags"
	"socialhub/internal/mediastore"
	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
)

const sweepBatchSize = 200

type StoryService struct {
	stories   repository.StoryRepository
	likes     repository.LikeRepository
	users     repository.UserRepository
	relations repository.RelationRepository
	media     *Media
	flags     featureflags.Checker
	ttl       time.Duration
	now       func() time.Time
}

type CreateStoryInput struct {
	UserID uint
	Text   string
	Files  []mediastore.File
}

type UpdateStoryInput struct {
	UserID      uint
	StoryID     uint
	Text        *string
	DeleteMedia []string
	Files       []mediastore.File
}

func NewStoryService(
	stories repository.StoryRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	relations repository.RelationRepository,
	media *Media,
	flags featureflags.Checker,
	ttl time.Duration,
) *StoryService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &StoryService{
		stories:   stories,
		likes:     likes,
		users:     users,
		relations: relations,
		media:     media,
		flags:     flags,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *StoryService) withURLs(st *models.Story) *models.Story {
	st.MediaURLs = s.media.URLs(st.Media)
	return st
}

// CreateStory requires text or at least one image.
func (s *StoryService) CreateStory(ctx context.Context, in CreateStoryInput) (*models.Story, error) {
	span, ctx := observability.StartCoordinatorSpan(ctx, "StoryService", "CreateStory")
	defer span.End()

	text := strings.TrimSpace(in.Text)
	if text == "" && len(in.Files) == 0 {
		return nil, models.NewValidationError("a story needs text or at least one image")
	}
	if len(in.Files) > s.media.MaxFiles() {
		return nil, models.NewValidationError(fmt.Sprintf("a story can have at most %d images", s.media.MaxFiles()))
	}
	exists, err := s.users.Exists(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", in.UserID)
	}

	ids, err := s.media.UploadAll(ctx, "story.create", in.Files)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	now := s.now().UTC()
	story := &models.Story{
		UserID:    in.UserID,
		Text:      text,
		Media:     models.MediaList(ids),
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.stories.Create(ctx, story); err != nil {
		span.SetError(err)
		s.media.Compensate(ctx, "story.create", ids)
		return nil, err
	}
	return s.withURLs(story), nil
}

// GetStory returns an unexpired story to its owner.
func (s *StoryService) GetStory(ctx context.Context, userID, storyID uint) (*models.Story, error) {
	story, err := s.stories.GetActive(ctx, storyID, userID, s.now())
	if err != nil {
		return nil, err
	}
	if err := requireOwner(story.UserID, userID, "view your own story here"); err != nil {
		return nil, err
	}
	return s.withURLs(story), nil
}

// ListUserStories returns unexpired stories, newest first. An empty result
// is reported as not found.
func (s *StoryService) ListUserStories(ctx context.Context, viewerID, userID uint) ([]models.Story, error) {
	if err := checkVisible(ctx, s.users, s.relations, viewerID, userID); err != nil {
		return nil, err
	}
	stories, err := s.stories.ListActiveByUser(ctx, userID, viewerID, s.now())
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, models.NewNotFoundError("Stories for user", userID)
	}
	for i := range stories {
		s.withURLs(&stories[i])
	}
	return stories, nil
}

func (s *StoryService) UpdateStory(ctx context.Context, in UpdateStoryInput) (*models.Story, error) {
	span, ctx := observability.StartCoordinatorSpan(ctx, "StoryService", "UpdateStory")
	defer span.End()

	if in.Text == nil && len(in.DeleteMedia) == 0 && len(in.Files) == 0 {
		return nil, models.NewValidationError("nothing to update")
	}

	story, err := s.stories.GetActive(ctx, in.StoryID, in.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if err := requireOwner(story.UserID, in.UserID, "edit your own stories"); err != nil {
		return nil, err
	}

	text := story.Text
	if in.Text != nil {
		text = strings.TrimSpace(*in.Text)
	}
	if text == "" && remainingMedia(story.Media, in.DeleteMedia)+len(in.Files) == 0 {
		return nil, models.NewValidationError("a story needs text or at least one image")
	}

	media, uploaded, err := s.media.ApplyDelta(ctx, "story.update", story.Media, in.DeleteMedia, in.Files)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	story.Text = text
	story.Media = models.MediaList(media)

	if err := s.stories.Update(ctx, story); err != nil {
		span.SetError(err)
		s.media.Compensate(ctx, "story.update", uploaded)
		return nil, err
	}
	return s.withURLs(story), nil
}

func (s *StoryService) DeleteStory(ctx context.Context, userID, storyID uint) error {
	story, err := s.stories.GetActive(ctx, storyID, userID, s.now())
	if err != nil {
		return err
	}
	if err := requireOwner(story.UserID, userID, "delete your own stories"); err != nil {
		return err
	}
	if err := s.stories.Delete(ctx, storyID); err != nil {
		return err
	}
	if purgeEnabled(s.flags, userID) {
		s.media.DeleteAll(ctx, DeleteReasonPurge, "story.delete", story.Media)
	}
	return nil
}

func (s *StoryService) LikeStory(ctx context.Context, userID, storyID uint) error {
	if _, err := s.stories.GetActive(ctx, storyID, userID, s.now()); err != nil {
		return err
	}
	return s.likes.Like(ctx, repository.LikeStory, storyID, userID)
}

func (s *StoryService) UnlikeStory(ctx context.Context, userID, storyID uint) error {
	if _, err := s.stories.GetActive(ctx, storyID, userID, s.now()); err != nil {
		return err
	}
	return s.likes.Unlike(ctx, repository.LikeStory, storyID, userID)
}

// SweepExpired deletes stories past their expiry in batches and purges their
// media. It returns the number of stories removed.
func (s *StoryService) SweepExpired(ctx context.Context) (int64, error) {
	now := s.now()
	var total int64
	for {
		expired, err := s.stories.ListExpired(ctx, now, sweepBatchSize)
		if err != nil {
			return total, err
		}
		if len(expired) == 0 {
			return total, nil
		}

		ids := make([]uint, 0, len(expired))
		var media []string
		for _, st := range expired {
			ids = append(ids, st.ID)
			media = append(media, st.Media...)
		}
		n, err := s.stories.DeleteExpired(ctx, ids)
		if err != nil {
			return total, err
		}
		total += n
		observability.StoriesExpired.Add(float64(n))

		if purgeEnabled(s.flags, 0) {
			s.media.DeleteAll(ctx, DeleteReasonExpired, "story.expire", media)
		}
		middleware.Logger.DebugContext(ctx, "expired stories removed",
			slog.Int64("count", n),
			slog.Int("media", len(media)),
		)
		if len(expired) < sweepBatchSize {
			return total, nil
		}
	}
}
