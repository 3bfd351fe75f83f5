package repository

import (
	"context"
	"errors"
	"time"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for conversation and message operations
type ChatRepository interface {
	FindConversation(ctx context.Context, a, b uint) (*models.Conversation, error)
	CreateConversation(ctx context.Context, a, b uint) (conv *models.Conversation, created bool, err error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error)
	DeleteConversation(ctx context.Context, id uint) error

	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id uint) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error)
	MarkRead(ctx context.Context, messageID, userID uint) (*models.MessageRead, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// FindConversation returns the conversation between a and b, in either order.
func (r *chatRepository) FindConversation(ctx context.Context, a, b uint) (*models.Conversation, error) {
	low, high := models.NormalizePair(a, b)
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateConversation returns the existing pair conversation or creates one.
// The unique pair index resolves concurrent creates: the loser re-reads.
func (r *chatRepository) CreateConversation(ctx context.Context, a, b uint) (*models.Conversation, bool, error) {
	existing, err := r.FindConversation(ctx, a, b)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	low, high := models.NormalizePair(a, b)
	conv := &models.Conversation{UserLowID: low, UserHighID: high}
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		if isDuplicateKey(err) {
			winner, findErr := r.FindConversation(ctx, a, b)
			if findErr != nil {
				return nil, false, findErr
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	return conv, true, nil
}

func (r *chatRepository) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("LastMessage").
		First(&conv, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Conversation", id)
	}
	if err := r.attachParticipants(ctx, []*models.Conversation{&conv}); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns the user's conversations, most recent first.
func (r *chatRepository) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.WithContext(ctx).
		Preload("LastMessage").
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.Conversation, len(convs))
	for i := range convs {
		ptrs[i] = &convs[i]
	}
	if err := r.attachParticipants(ctx, ptrs); err != nil {
		return nil, err
	}
	return convs, nil
}

// attachParticipants fills Participants with one user query for all
// conversations. Deleted users are omitted.
func (r *chatRepository) attachParticipants(ctx context.Context, convs []*models.Conversation) error {
	if len(convs) == 0 {
		return nil
	}
	idSet := make(map[uint]struct{}, 2*len(convs))
	for _, c := range convs {
		idSet[c.UserLowID] = struct{}{}
		idSet[c.UserHighID] = struct{}{}
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Select(userSummaryColumns).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return err
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, c := range convs {
		c.Participants = make([]models.User, 0, 2)
		for _, id := range []uint{c.UserLowID, c.UserHighID} {
			if u, ok := byID[id]; ok {
				c.Participants = append(c.Participants, u)
			}
		}
	}
	return nil
}

// DeleteConversation removes the conversation with its messages and reads.
func (r *chatRepository) DeleteConversation(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messageIDs, err := pluckIDs(tx, &models.Message{}, "conversation_id = ?", id)
		if err != nil {
			return err
		}
		if _, err := deleteIn(tx, &models.MessageRead{}, "message_id", messageIDs); err != nil {
			return err
		}
		if _, err := deleteIn(tx, &models.Message{}, "id", messageIDs); err != nil {
			return err
		}
		res := tx.Delete(&models.Conversation{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Conversation", id)
		}
		return nil
	})
}

// CreateMessage inserts the message and makes it the conversation's last
// message in one transaction.
func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			UpdateColumns(map[string]interface{}{
				"last_message_id": msg.ID,
				"updated_at":      time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Conversation", msg.ConversationID)
		}
		return nil
	})
}

func (r *chatRepository) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).Preload("Reads").First(&msg, id).Error; err != nil {
		return nil, notFoundOr(err, "Message", id)
	}
	return &msg, nil
}

// ListMessages returns messages oldest first.
func (r *chatRepository) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender", selectUserSummary).
		Preload("Reads").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}

// MarkRead records a reader. A second read by the same user is a conflict.
func (r *chatRepository) MarkRead(ctx context.Context, messageID, userID uint) (*models.MessageRead, error) {
	read := &models.MessageRead{MessageID: messageID, UserID: userID, ReadAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MessageRead{}).
			Where("message_id = ? AND user_id = ?", messageID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewConflictError("message already marked as read")
		}
		err := tx.Create(read).Error
		if isDuplicateKey(err) {
			return models.NewConflictError("message already marked as read")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return read, nil
}
