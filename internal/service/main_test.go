package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"socialhub/internal/featureflags"
	"socialhub/internal/mediastore"
	"socialhub/internal/models"
	"socialhub/internal/notifications"
	"socialhub/internal/repository"
	"socialhub/internal/testutil"

	"gorm.io/gorm"
)

var fastRetry = RetryConfig{
	MaxRetries:      1,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	Multiplier:      1.5,
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Type  string
	Users []uint
}

func (p *recordingPublisher) PublishEvent(_ context.Context, event notifications.Event, userIDs ...uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: event.Type, Users: userIDs})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// harness wires every service to a private sqlite database and a recording
// media store.
type harness struct {
	db        *gorm.DB
	store     *testutil.MediaStore
	media     *Media
	flags     *featureflags.Manager
	events    *recordingPublisher
	users     repository.UserRepository
	relations repository.RelationRepository
	likes     repository.LikeRepository
	posts     repository.PostRepository
	comments  repository.CommentRepository
	stories   repository.StoryRepository
	chats     repository.ChatRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := &testutil.MediaStore{}
	return &harness{
		db:        db,
		store:     store,
		media:     NewMedia(store, fastRetry, 10),
		flags:     featureflags.NewManager("media_purge_on_delete=on"),
		events:    &recordingPublisher{},
		users:     repository.NewUserRepository(db),
		relations: repository.NewRelationRepository(db),
		likes:     repository.NewLikeRepository(db),
		posts:     repository.NewPostRepository(db),
		comments:  repository.NewCommentRepository(db),
		stories:   repository.NewStoryRepository(db),
		chats:     repository.NewChatRepository(db),
	}
}

func (h *harness) postService() *PostService {
	return NewPostService(h.posts, h.likes, h.users, h.relations, h.media, h.flags)
}

func (h *harness) storyService() *StoryService {
	return NewStoryService(h.stories, h.likes, h.users, h.relations, h.media, h.flags, 24*time.Hour)
}

func (h *harness) commentService() *CommentService {
	return NewCommentService(h.comments, h.posts, h.likes)
}

func (h *harness) relationService() *RelationService {
	return NewRelationService(h.relations, h.users, h.events)
}

func (h *harness) userService() *UserService {
	return NewUserService(h.users, h.media, h.flags)
}

func (h *harness) chatService() *ChatService {
	return NewChatService(h.chats, h.users, h.relations, h.events)
}

func (h *harness) user(t *testing.T) *models.User {
	return testutil.CreateUser(t, h.db)
}

func files(names ...string) []mediastore.File {
	out := make([]mediastore.File, 0, len(names))
	for _, name := range names {
		out = append(out, mediastore.File{
			Filename:    name,
			ContentType: "image/jpeg",
			Content:     strings.NewReader("data-" + name),
		})
	}
	return out
}

func strPtr(s string) *string { return &s }
