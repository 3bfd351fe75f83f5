package repository

import (
	"context"
	"time"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines the interface for story data operations. Reads
// never return a story whose expiry has passed, swept or not.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetActive(ctx context.Context, id, viewerID uint, now time.Time) (*models.Story, error)
	ListActiveByUser(ctx context.Context, userID, viewerID uint, now time.Time) ([]models.Story, error)
	Update(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id uint) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Story, error)
	DeleteExpired(ctx context.Context, ids []uint) (int64, error)
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	if story.Media == nil {
		story.Media = models.MediaList(nil)
	}
	story.ExpiresAt = story.ExpiresAt.UTC()
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepository) activeStories(db *gorm.DB, viewerID uint, now time.Time) *gorm.DB {
	return db.Model(&models.Story{}).
		Select(`stories.*,
			(SELECT COUNT(*) FROM story_likes WHERE story_likes.story_id = stories.id) AS likes_count,
			EXISTS(SELECT 1 FROM story_likes WHERE story_likes.story_id = stories.id AND story_likes.user_id = ?) AS liked`, viewerID).
		Preload("User", selectUserSummary).
		Where("stories.expires_at > ?", now.UTC())
}

func (r *storyRepository) GetActive(ctx context.Context, id, viewerID uint, now time.Time) (*models.Story, error) {
	var story models.Story
	err := r.activeStories(r.db.WithContext(ctx), viewerID, now).
		Where("stories.id = ?", id).
		First(&story).Error
	if err != nil {
		return nil, notFoundOr(err, "Story", id)
	}
	return &story, nil
}

func (r *storyRepository) ListActiveByUser(ctx context.Context, userID, viewerID uint, now time.Time) ([]models.Story, error) {
	var stories []models.Story
	err := r.activeStories(r.db.WithContext(ctx), viewerID, now).
		Where("stories.user_id = ?", userID).
		Order("stories.created_at DESC").
		Order("stories.id DESC").
		Find(&stories).Error
	return stories, err
}

func (r *storyRepository) Update(ctx context.Context, story *models.Story) error {
	if story.Media == nil {
		story.Media = models.MediaList(nil)
	}
	res := r.db.WithContext(ctx).Model(&models.Story{}).
		Where("id = ?", story.ID).
		Updates(map[string]interface{}{
			"text":  story.Text,
			"media": story.Media,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Story", story.ID)
	}
	return nil
}

func (r *storyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", id).Delete(&models.StoryLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Story{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Story", id)
		}
		return nil
	})
}

// ListExpired returns stories whose expiry is at or before now, oldest first.
func (r *storyRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Story, error) {
	if limit <= 0 {
		limit = 500
	}
	var stories []models.Story
	err := r.db.WithContext(ctx).
		Select("id, user_id, media, expires_at").
		Where("expires_at <= ?", now.UTC()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&stories).Error
	return stories, err
}

// DeleteExpired removes the given stories and their likes.
func (r *storyRepository) DeleteExpired(ctx context.Context, ids []uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := deleteIn(tx, &models.StoryLike{}, "story_id", ids); err != nil {
			return err
		}
		n, err := deleteIn(tx, &models.Story{}, "id", ids)
		deleted = n
		return err
	})
	return deleted, err
}
