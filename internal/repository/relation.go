package repository

import (
	"context"

	"socialhub/internal/cache"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// RelationRepository manages follow and block edges between users.
type RelationRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	Block(ctx context.Context, blockerID, blockedID uint) error
	Unblock(ctx context.Context, blockerID, blockedID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	IsBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error)
	IsBlockedEitherWay(ctx context.Context, a, b uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	BlockList(ctx context.Context, userID uint) ([]models.User, error)
}

type relationRepository struct {
	db *gorm.DB
}

// NewRelationRepository creates a new relation repository
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewConflictError("already following this user")
		}
		err := tx.Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
		if isDuplicateKey(err) {
			return models.NewConflictError("already following this user")
		}
		return err
	})
	if err == nil {
		cache.InvalidateUser(ctx, followerID, followeeID)
	}
	return err
}

func (r *relationRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewStateError("not following this user")
	}
	cache.InvalidateUser(ctx, followerID, followeeID)
	return nil
}

// Block records the edge and drops follow edges in both directions.
func (r *relationRepository) Block(ctx context.Context, blockerID, blockedID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Block{}).
			Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewConflictError("user already blocked")
		}
		if err := tx.Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}).Error; err != nil {
			if isDuplicateKey(err) {
				return models.NewConflictError("user already blocked")
			}
			return err
		}
		return tx.Where(
			"(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
			blockerID, blockedID, blockedID, blockerID,
		).Delete(&models.Follow{}).Error
	})
	if err == nil {
		cache.InvalidateUser(ctx, blockerID, blockedID)
	}
	return err
}

func (r *relationRepository) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewStateError("user is not blocked")
	}
	cache.InvalidateUser(ctx, blockerID, blockedID)
	return nil
}

func (r *relationRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *relationRepository) IsBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

func (r *relationRepository) IsBlockedEitherWay(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (r *relationRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return r.usersVia(ctx, "SELECT follower_id FROM follows WHERE followee_id = ?", userID)
}

func (r *relationRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return r.usersVia(ctx, "SELECT followee_id FROM follows WHERE follower_id = ?", userID)
}

func (r *relationRepository) BlockList(ctx context.Context, userID uint) ([]models.User, error) {
	return r.usersVia(ctx, "SELECT blocked_id FROM blocks WHERE blocker_id = ?", userID)
}

func (r *relationRepository) usersVia(ctx context.Context, subquery string, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Select(userSummaryColumns).
		Where("id IN ("+subquery+")", userID).
		Order("username ASC").
		Find(&users).Error
	return users, err
}
