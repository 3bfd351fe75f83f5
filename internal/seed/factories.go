// Package seed provides helpers to create demo data for development
// databases and tests.
package seed

import (
	"fmt"
	"strings"
	"time"

	"socialhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password given to every seeded account.
const DefaultPassword = "SeedPassword123!"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db      *gorm.DB
	faker   *gofakeit.Faker
	maxDays int
	hash    string
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, maxDays int) (*Factory, error) {
	if maxDays <= 0 {
		maxDays = 90
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		db:      db,
		faker:   gofakeit.New(seed),
		maxDays: maxDays,
		hash:    string(hash),
	}, nil
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

func (f *Factory) username(i int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(f.faker.Username()) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
		if b.Len() >= 20 {
			break
		}
	}
	if b.Len() < 3 {
		b.WriteString("user")
	}
	return fmt.Sprintf("%s_%d", b.String(), i)
}

// CreateUser persists a user with generated identity fields.
func (f *Factory) CreateUser(i int, overrides ...func(*models.User)) (*models.User, error) {
	username := f.username(i)
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  f.hash,
		FullName:  f.faker.Name(),
		Bio:       f.faker.Sentence(10),
		CreatedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return user, nil
}

// BuildPost returns an unsaved post for user. Media IDs point at the
// "seed/" prefix and are never uploaded.
func (f *Factory) BuildPost(user *models.User) *models.Post {
	ids := make([]string, f.faker.Number(0, 3))
	for i := range ids {
		ids[i] = fmt.Sprintf("seed/%s.jpg", f.faker.UUID())
	}
	created := f.pastTime()
	return &models.Post{
		UserID:    user.ID,
		Caption:   f.faker.Sentence(f.faker.Number(4, 16)),
		Media:     models.MediaList(ids),
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// CreatePostsBatch persists posts and bumps each author's post counter.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	perUser := map[uint]int{}
	for _, p := range posts {
		perUser[p.UserID]++
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(posts, 100).Error; err != nil {
			return err
		}
		for userID, n := range perUser {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("posts_count", gorm.Expr("posts_count + ?", n)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateComment persists a comment and bumps the post's comment counter.
func (f *Factory) CreateComment(post *models.Post, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		PostID: post.ID,
		UserID: author.ID,
		Text:   f.faker.Sentence(f.faker.Number(3, 12)),
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReply persists a reply under comment.
func (f *Factory) CreateReply(comment *models.Comment, author *models.User) (*models.Reply, error) {
	reply := &models.Reply{
		CommentID: comment.ID,
		UserID:    author.ID,
		Text:      f.faker.Sentence(f.faker.Number(2, 8)),
	}
	if err := f.db.Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}

// Follow records follower -> followee, ignoring duplicates.
func (f *Factory) Follow(followerID, followeeID uint) error {
	if followerID == followeeID {
		return nil
	}
	return f.db.Where(models.Follow{FollowerID: followerID, FolloweeID: followeeID}).
		FirstOrCreate(&models.Follow{}).Error
}

// LikePost records a like, ignoring duplicates.
func (f *Factory) LikePost(postID, userID uint) error {
	return f.db.Where(models.PostLike{PostID: postID, UserID: userID}).
		FirstOrCreate(&models.PostLike{}).Error
}
