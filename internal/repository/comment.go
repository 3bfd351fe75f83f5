package repository

import (
	"context"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment and reply operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, viewerID uint) ([]models.Comment, error)
	UpdateText(ctx context.Context, id uint, text string) error
	Delete(ctx context.Context, comment *models.Comment) error

	CreateReply(ctx context.Context, reply *models.Reply) error
	GetReply(ctx context.Context, commentID, replyID uint) (*models.Reply, error)
	UpdateReplyText(ctx context.Context, id uint, text string) error
	DeleteReply(ctx context.Context, id uint) error
}

// commentRepository implements CommentRepository
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and bumps the post's comment count.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		return tx.Create(comment).Error
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// ListByPost returns comments oldest first, each with replies and authors.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, viewerID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Select(`comments.*,
			(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id) AS likes_count,
			EXISTS(SELECT 1 FROM comment_likes WHERE comment_likes.comment_id = comments.id AND comment_likes.user_id = ?) AS liked`, viewerID).
		Preload("User", selectUserSummary).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Select(`replies.*,
				(SELECT COUNT(*) FROM reply_likes WHERE reply_likes.reply_id = replies.id) AS likes_count,
				EXISTS(SELECT 1 FROM reply_likes WHERE reply_likes.reply_id = replies.id AND reply_likes.user_id = ?) AS liked`, viewerID).
				Order("replies.created_at ASC").
				Order("replies.id ASC")
		}).
		Preload("Replies.User", selectUserSummary).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").
		Order("comments.id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) UpdateText(ctx context.Context, id uint, text string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("text", text)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

// Delete removes the comment with its replies and likes and decrements the
// post's comment count.
func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replyIDs, err := pluckIDs(tx, &models.Reply{}, "comment_id = ?", comment.ID)
		if err != nil {
			return err
		}
		if _, err := deleteIn(tx, &models.ReplyLike{}, "reply_id", replyIDs); err != nil {
			return err
		}
		if _, err := deleteIn(tx, &models.Reply{}, "id", replyIDs); err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, comment.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", comment.ID)
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND comments_count > 0", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - 1")).Error
	})
}

func (r *commentRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	return r.db.WithContext(ctx).Create(reply).Error
}

// GetReply loads a reply only if it belongs to commentID.
func (r *commentRepository) GetReply(ctx context.Context, commentID, replyID uint) (*models.Reply, error) {
	var reply models.Reply
	err := r.db.WithContext(ctx).
		Where("id = ? AND comment_id = ?", replyID, commentID).
		First(&reply).Error
	if err != nil {
		return nil, notFoundOr(err, "Reply", replyID)
	}
	return &reply, nil
}

func (r *commentRepository) UpdateReplyText(ctx context.Context, id uint, text string) error {
	res := r.db.WithContext(ctx).Model(&models.Reply{}).Where("id = ?", id).Update("text", text)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Reply", id)
	}
	return nil
}

func (r *commentRepository) DeleteReply(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reply_id = ?", id).Delete(&models.ReplyLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Reply{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Reply", id)
		}
		return nil
	})
}
