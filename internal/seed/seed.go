package seed

import (
	"context"
	"fmt"
	"log/slog"

	"socialhub/internal/middleware"
	"socialhub/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers        int
	PostsPerUser    int
	FollowsPerUser  int
	CommentsPerPost int
	MaxDays         int
	// Seed makes runs reproducible when non-zero.
	Seed  int64
	Clean bool
}

// Result counts what a run created.
type Result struct {
	Users    int
	Posts    int
	Follows  int
	Comments int
	Replies  int
	Likes    int
}

// DefaultOptions is the preset used by cmd/seed.
func DefaultOptions() Options {
	return Options{
		NumUsers:        25,
		PostsPerUser:    4,
		FollowsPerUser:  5,
		CommentsPerPost: 2,
		MaxDays:         60,
	}
}

// Seed populates db with a connected social graph.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	if opts.NumUsers < 2 {
		return nil, fmt.Errorf("seed needs at least 2 users, got %d", opts.NumUsers)
	}
	db = db.WithContext(ctx)

	if opts.Clean {
		if err := Clean(db); err != nil {
			return nil, fmt.Errorf("clean: %w", err)
		}
	}

	f, err := NewFactory(db, opts.Seed, opts.MaxDays)
	if err != nil {
		return nil, err
	}
	res := &Result{}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(i)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	res.Users = len(users)
	middleware.Logger.Info("seeded users", slog.Int("count", res.Users))

	for i, u := range users {
		for k := 1; k <= opts.FollowsPerUser && k < len(users); k++ {
			target := users[(i+k*7)%len(users)]
			if target.ID == u.ID {
				continue
			}
			if err := f.Follow(u.ID, target.ID); err != nil {
				return nil, fmt.Errorf("follow: %w", err)
			}
			res.Follows++
		}
	}

	posts := make([]*models.Post, 0, opts.NumUsers*opts.PostsPerUser)
	for _, u := range users {
		for k := 0; k < opts.PostsPerUser; k++ {
			posts = append(posts, f.BuildPost(u))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	res.Posts = len(posts)
	middleware.Logger.Info("seeded posts", slog.Int("count", res.Posts))

	for i, p := range posts {
		for k := 0; k < opts.CommentsPerPost; k++ {
			author := users[(i+k+1)%len(users)]
			comment, err := f.CreateComment(p, author)
			if err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			res.Comments++
			if k == 0 {
				if _, err := f.CreateReply(comment, users[i%len(users)]); err != nil {
					return nil, fmt.Errorf("create reply: %w", err)
				}
				res.Replies++
			}
			if err := f.LikePost(p.ID, author.ID); err != nil {
				return nil, fmt.Errorf("like post: %w", err)
			}
			res.Likes++
		}
	}

	middleware.Logger.Info("database seeding completed",
		slog.Int("users", res.Users),
		slog.Int("posts", res.Posts),
		slog.Int("follows", res.Follows),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}

// Clean removes all seeded content, children first.
func Clean(db *gorm.DB) error {
	if err := db.Model(&models.Conversation{}).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Update("last_message_id", nil).Error; err != nil {
		return err
	}
	tables := []interface{}{
		&models.MessageRead{}, &models.Message{}, &models.Conversation{},
		&models.StoryLike{}, &models.Story{},
		&models.ReplyLike{}, &models.Reply{}, &models.CommentLike{}, &models.Comment{},
		&models.PostLike{}, &models.Post{},
		&models.Follow{}, &models.Block{}, &models.User{},
	}
	for _, t := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
			return err
		}
	}
	return nil
}
