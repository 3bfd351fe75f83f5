package repository

import (
	"context"
	"fmt"

	"socialhub/internal/cache"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreateWithOwner(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	ListByUser(ctx context.Context, userID uint, viewerID uint) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	DeleteWithDependents(ctx context.Context, post *models.Post) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// CreateWithOwner inserts the post and bumps the owner's post count in one
// transaction.
func (r *postRepository) CreateWithOwner(ctx context.Context, post *models.Post) error {
	if post.Media == nil {
		post.Media = models.MediaList(nil)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", post.UserID)
		}
		return nil
	})
	if err == nil {
		cache.InvalidateUser(ctx, post.UserID)
	}
	return err
}

func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Model(&models.Post{}).
		Select(`posts.*,
			(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS likes_count,
			EXISTS(SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id AND post_likes.user_id = ?) AS liked`, viewerID).
		Preload("User", selectUserSummary)
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, viewerID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error
	return posts, err
}

// Update persists caption and media list.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if post.Media == nil {
		post.Media = models.MediaList(nil)
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"caption": post.Caption,
			"media":   post.Media,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

// DeleteWithDependents removes the post, its likes, its comments with their
// replies and likes, and decrements the owner's post count.
func (r *postRepository) DeleteWithDependents(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs, err := pluckIDs(tx, &models.Comment{}, "post_id = ?", post.ID)
		if err != nil {
			return err
		}
		replyIDs := []uint{}
		if len(commentIDs) > 0 {
			if replyIDs, err = pluckIDs(tx, &models.Reply{}, "comment_id IN ?", commentIDs); err != nil {
				return err
			}
		}

		steps := []struct {
			model  interface{}
			column string
			ids    []uint
		}{
			{&models.ReplyLike{}, "reply_id", replyIDs},
			{&models.Reply{}, "id", replyIDs},
			{&models.CommentLike{}, "comment_id", commentIDs},
			{&models.Comment{}, "id", commentIDs},
			{&models.PostLike{}, "post_id", []uint{post.ID}},
		}
		for _, step := range steps {
			if _, err := deleteIn(tx, step.model, step.column, step.ids); err != nil {
				return fmt.Errorf("delete %T: %w", step.model, err)
			}
		}

		res := tx.Delete(&models.Post{}, post.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", post.ID)
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND posts_count > 0", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count - 1")).Error
	})
	if err == nil {
		cache.InvalidateUser(ctx, post.UserID)
	}
	return err
}
