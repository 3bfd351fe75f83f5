package repository

import (
	"context"
	"log/slog"
	"strings"

	"socialhub/internal/cache"
	"socialhub/internal/middleware"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ExistsByUsername(ctx context.Context, username string, excludeID uint) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) error
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	DeleteCascade(ctx context.Context, id uint) (*CascadeResult, error)
}

// CascadeResult reports what a cascading user delete removed. MediaIDs lists
// every media object the removed records referenced.
type CascadeResult struct {
	MediaIDs []string
	Posts    int64
	Comments int64
	Replies  int64
	Stories  int64
	Follows  int64
	Blocks   int64
	Likes    int64
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return models.NewConflictError("username or email already taken")
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetProfile returns the public view of a user with relation counts.
func (r *userRepository) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserProfileKey(id), &user, cache.UserTTL, func() error {
		return r.db.WithContext(ctx).
			Select(`users.*,
				(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) AS followers_count,
				(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) AS following_count`).
			First(&user, id).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByLogin finds a user by username or email.
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	login = models.NormalizeIdentity(login)
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, "User", login)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string, excludeID uint) (bool, error) {
	return r.existsBy(ctx, "username", models.NormalizeIdentity(username), excludeID)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.existsBy(ctx, "email", models.NormalizeIdentity(email), excludeID)
}

func (r *userRepository) existsBy(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) error {
	for _, key := range []string{"username", "email"} {
		if v, ok := updates[key].(string); ok {
			updates[key] = models.NormalizeIdentity(v)
		}
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return models.NewConflictError("username or email already taken")
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// Search matches username, full name or email case-insensitively.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var users []models.User
	err := r.db.WithContext(ctx).
		Select(userSummaryColumns).
		Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// DeleteCascade removes a user and everything that references them in a
// single transaction. Media objects are returned, not deleted.
func (r *userRepository) DeleteCascade(ctx context.Context, id uint) (*CascadeResult, error) {
	result := &CascadeResult{}
	var relatedUsers []uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		for _, mediaID := range []string{user.ProfilePictureID, user.CoverPictureID} {
			if mediaID != "" {
				result.MediaIDs = append(result.MediaIDs, mediaID)
			}
		}

		// Posts owned by the user, with their likes.
		var posts []models.Post
		if err := tx.Select("id, media").Where("user_id = ?", id).Find(&posts).Error; err != nil {
			return err
		}
		postIDs := make([]uint, 0, len(posts))
		for _, p := range posts {
			postIDs = append(postIDs, p.ID)
			result.MediaIDs = append(result.MediaIDs, p.Media...)
		}
		n, err := deleteIn(tx, &models.PostLike{}, "post_id", postIDs)
		if err != nil {
			return err
		}
		result.Likes += n
		if result.Posts, err = deleteIn(tx, &models.Post{}, "id", postIDs); err != nil {
			return err
		}

		// Comments by the user or on the user's posts, with replies and likes.
		if err := r.decrementForeignCommentCounts(tx, id, postIDs); err != nil {
			return err
		}
		commentQuery := tx.Model(&models.Comment{}).Where("user_id = ?", id)
		if len(postIDs) > 0 {
			commentQuery = commentQuery.Or("post_id IN ?", postIDs)
		}
		var commentIDs []uint
		if err := commentQuery.Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		var replyIDs []uint
		replyQuery := tx.Model(&models.Reply{}).Where("user_id = ?", id)
		if len(commentIDs) > 0 {
			replyQuery = replyQuery.Or("comment_id IN ?", commentIDs)
		}
		if err := replyQuery.Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		if n, err = deleteIn(tx, &models.ReplyLike{}, "reply_id", replyIDs); err != nil {
			return err
		}
		result.Likes += n
		if result.Replies, err = deleteIn(tx, &models.Reply{}, "id", replyIDs); err != nil {
			return err
		}
		if n, err = deleteIn(tx, &models.CommentLike{}, "comment_id", commentIDs); err != nil {
			return err
		}
		result.Likes += n
		if result.Comments, err = deleteIn(tx, &models.Comment{}, "id", commentIDs); err != nil {
			return err
		}

		// The user's likes on other comments and replies.
		for _, model := range []interface{}{&models.CommentLike{}, &models.ReplyLike{}} {
			res := tx.Where("user_id = ?", id).Delete(model)
			if res.Error != nil {
				return res.Error
			}
			result.Likes += res.RowsAffected
		}

		// Stories, including expired ones not yet swept.
		var stories []models.Story
		if err := tx.Select("id, media").Where("user_id = ?", id).Find(&stories).Error; err != nil {
			return err
		}
		storyIDs := make([]uint, 0, len(stories))
		for _, s := range stories {
			storyIDs = append(storyIDs, s.ID)
			result.MediaIDs = append(result.MediaIDs, s.Media...)
		}
		if n, err = deleteIn(tx, &models.StoryLike{}, "story_id", storyIDs); err != nil {
			return err
		}
		result.Likes += n
		if result.Stories, err = deleteIn(tx, &models.Story{}, "id", storyIDs); err != nil {
			return err
		}
		res := tx.Where("user_id = ?", id).Delete(&models.StoryLike{})
		if res.Error != nil {
			return res.Error
		}
		result.Likes += res.RowsAffected

		// Follow and block edges in both directions.
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ?", id).Pluck("followee_id", &relatedUsers).Error; err != nil {
			return err
		}
		var followers []uint
		if err := tx.Model(&models.Follow{}).
			Where("followee_id = ?", id).Pluck("follower_id", &followers).Error; err != nil {
			return err
		}
		relatedUsers = append(relatedUsers, followers...)

		res = tx.Where("follower_id = ? OR followee_id = ?", id, id).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		result.Follows = res.RowsAffected
		res = tx.Where("blocker_id = ? OR blocked_id = ?", id, id).Delete(&models.Block{})
		if res.Error != nil {
			return res.Error
		}
		result.Blocks = res.RowsAffected

		// The user's likes on other posts.
		res = tx.Where("user_id = ?", id).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		result.Likes += res.RowsAffected

		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, append(relatedUsers, id)...)
	middleware.Logger.InfoContext(ctx, "user cascade delete committed",
		slog.Uint64("user_id", uint64(id)),
		slog.Int64("posts", result.Posts),
		slog.Int64("comments", result.Comments),
		slog.Int64("replies", result.Replies),
		slog.Int64("stories", result.Stories),
		slog.Int64("follows", result.Follows),
		slog.Int64("blocks", result.Blocks),
		slog.Int64("likes", result.Likes),
		slog.Int("media", len(result.MediaIDs)),
	)
	return result, nil
}

// decrementForeignCommentCounts lowers comments_count on posts the user
// commented on that are not being deleted with the user.
func (r *userRepository) decrementForeignCommentCounts(tx *gorm.DB, userID uint, ownPostIDs []uint) error {
	type postCount struct {
		PostID uint
		N      int
	}
	q := tx.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("user_id = ?", userID)
	if len(ownPostIDs) > 0 {
		q = q.Where("post_id NOT IN ?", ownPostIDs)
	}
	var counts []postCount
	if err := q.Group("post_id").Scan(&counts).Error; err != nil {
		return err
	}
	for _, c := range counts {
		err := tx.Model(&models.Post{}).
			Where("id = ?", c.PostID).
			UpdateColumn("comments_count", gorm.Expr("CASE WHEN comments_count >= ? THEN comments_count - ? ELSE 0 END", c.N, c.N)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
