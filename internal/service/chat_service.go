package service

import (
	"context"

	"socialhub/internal/models"
	"socialhub/internal/notifications"
	"socialhub/internal/repository"
)

type ChatService struct {
	chats     repository.ChatRepository
	users     repository.UserRepository
	relations repository.RelationRepository
	events    EventPublisher
}

// ConversationDetail is a conversation with its messages.
type ConversationDetail struct {
	*models.Conversation
	Messages []models.Message `json:"messages"`
}

func NewChatService(
	chats repository.ChatRepository,
	users repository.UserRepository,
	relations repository.RelationRepository,
	events EventPublisher,
) *ChatService {
	return &ChatService{chats: chats, users: users, relations: relations, events: publisherOrNoop(events)}
}

// StartConversation returns the existing conversation for the pair or
// creates one. created reports which happened.
func (s *ChatService) StartConversation(ctx context.Context, actorID, participantID uint) (*models.Conversation, bool, error) {
	if participantID == 0 {
		return nil, false, models.NewValidationError("participantId is required")
	}
	if actorID == participantID {
		return nil, false, models.NewValidationError("you cannot start a conversation with yourself")
	}
	exists, err := s.users.Exists(ctx, participantID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, models.NewNotFoundError("User", participantID)
	}
	blocked, err := s.relations.IsBlockedEitherWay(ctx, actorID, participantID)
	if err != nil {
		return nil, false, err
	}
	if blocked {
		return nil, false, models.NewForbiddenError("you cannot message this user")
	}

	conv, created, err := s.chats.CreateConversation(ctx, actorID, participantID)
	if err != nil {
		return nil, false, err
	}
	full, err := s.chats.GetConversation(ctx, conv.ID)
	if err != nil {
		return nil, false, err
	}
	return full, created, nil
}

func (s *ChatService) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	return s.chats.ListConversations(ctx, userID)
}

func (s *ChatService) participantConversation(ctx context.Context, userID, convID uint) (*models.Conversation, error) {
	conv, err := s.chats.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, models.NewForbiddenError("you are not a participant in this conversation")
	}
	return conv, nil
}

func (s *ChatService) GetConversation(ctx context.Context, userID, convID uint) (*ConversationDetail, error) {
	conv, err := s.participantConversation(ctx, userID, convID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.chats.ListMessages(ctx, convID)
	if err != nil {
		return nil, err
	}
	return &ConversationDetail{Conversation: conv, Messages: msgs}, nil
}

// SendMessage stores the message, makes it the conversation's last message
// and notifies the other participant.
func (s *ChatService) SendMessage(ctx context.Context, userID, convID uint, content string) (*models.Message, error) {
	content, err := requireText(content, "content")
	if err != nil {
		return nil, err
	}
	conv, err := s.participantConversation(ctx, userID, convID)
	if err != nil {
		return nil, err
	}
	other := conv.OtherParticipant(userID)
	blocked, err := s.relations.IsBlockedEitherWay(ctx, userID, other)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, models.NewForbiddenError("you cannot message this user")
	}

	msg := &models.Message{ConversationID: convID, SenderID: userID, Content: content}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.events.PublishEvent(ctx, notifications.NewEvent(notifications.EventMessageCreated, msg), other)
	return msg, nil
}

func (s *ChatService) DeleteConversation(ctx context.Context, userID, convID uint) error {
	conv, err := s.participantConversation(ctx, userID, convID)
	if err != nil {
		return err
	}
	if err := s.chats.DeleteConversation(ctx, convID); err != nil {
		return err
	}
	s.events.PublishEvent(ctx, notifications.NewEvent(notifications.EventConversationDeleted, map[string]uint{
		"conversation_id": convID,
	}), conv.OtherParticipant(userID))
	return nil
}

// MarkRead records that a recipient read a message. Senders cannot mark
// their own messages.
func (s *ChatService) MarkRead(ctx context.Context, userID, messageID uint) (*models.MessageRead, error) {
	msg, err := s.chats.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.participantConversation(ctx, userID, msg.ConversationID); err != nil {
		return nil, err
	}
	if msg.SenderID == userID {
		return nil, models.NewValidationError("you cannot mark your own message as read")
	}
	read, err := s.chats.MarkRead(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	s.events.PublishEvent(ctx, notifications.NewEvent(notifications.EventMessageRead, read), msg.SenderID)
	return read, nil
}
