package repository

import (
	"context"
	"fmt"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// LikeTarget names a likeable record kind.
type LikeTarget string

const (
	LikePost    LikeTarget = "post"
	LikeComment LikeTarget = "comment"
	LikeReply   LikeTarget = "reply"
	LikeStory   LikeTarget = "story"
)

// LikeRepository adds and removes likers with an explicit state check.
type LikeRepository interface {
	Like(ctx context.Context, target LikeTarget, targetID, userID uint) error
	Unlike(ctx context.Context, target LikeTarget, targetID, userID uint) error
	IsLiked(ctx context.Context, target LikeTarget, targetID, userID uint) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func likeRecord(target LikeTarget, targetID, userID uint) (record interface{}, column string, err error) {
	switch target {
	case LikePost:
		return &models.PostLike{PostID: targetID, UserID: userID}, "post_id", nil
	case LikeComment:
		return &models.CommentLike{CommentID: targetID, UserID: userID}, "comment_id", nil
	case LikeReply:
		return &models.ReplyLike{ReplyID: targetID, UserID: userID}, "reply_id", nil
	case LikeStory:
		return &models.StoryLike{StoryID: targetID, UserID: userID}, "story_id", nil
	default:
		return nil, "", fmt.Errorf("unknown like target %q", target)
	}
}

// Like fails with a conflict when the user already likes the target.
func (r *likeRepository) Like(ctx context.Context, target LikeTarget, targetID, userID uint) error {
	record, column, err := likeRecord(target, targetID, userID)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(record).
			Where(column+" = ? AND user_id = ?", targetID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewConflictError(fmt.Sprintf("you have already liked this %s", target))
		}
		err := tx.Create(record).Error
		if isDuplicateKey(err) {
			return models.NewConflictError(fmt.Sprintf("you have already liked this %s", target))
		}
		return err
	})
}

// Unlike fails with a state error when the user does not like the target.
func (r *likeRepository) Unlike(ctx context.Context, target LikeTarget, targetID, userID uint) error {
	record, column, err := likeRecord(target, targetID, userID)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Where(column+" = ? AND user_id = ?", targetID, userID).
		Delete(record)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewStateError(fmt.Sprintf("you have not liked this %s", target))
	}
	return nil
}

func (r *likeRepository) IsLiked(ctx context.Context, target LikeTarget, targetID, userID uint) (bool, error) {
	record, column, err := likeRecord(target, targetID, userID)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(record).
		Where(column+" = ? AND user_id = ?", targetID, userID).
		Count(&count).Error
	return count > 0, err
}
