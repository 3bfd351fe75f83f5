package service

import (
	"context"

	"socialhub/internal/models"
	"socialhub/internal/notifications"
	"socialhub/internal/repository"
)

type RelationService struct {
	relations repository.RelationRepository
	users     repository.UserRepository
	events    EventPublisher
}

func NewRelationService(relations repository.RelationRepository, users repository.UserRepository, events EventPublisher) *RelationService {
	return &RelationService{relations: relations, users: users, events: publisherOrNoop(events)}
}

func (s *RelationService) target(ctx context.Context, actorID, targetID uint, verb string) error {
	if actorID == targetID {
		return models.NewValidationError("you cannot " + verb + " yourself")
	}
	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", targetID)
	}
	return nil
}

// Follow rejects self, missing users, blocked pairs and duplicates.
func (s *RelationService) Follow(ctx context.Context, actorID, targetID uint) error {
	if err := s.target(ctx, actorID, targetID, "follow"); err != nil {
		return err
	}
	blocked, err := s.relations.IsBlockedEitherWay(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if blocked {
		return models.NewForbiddenError("you cannot follow this user")
	}
	if err := s.relations.Follow(ctx, actorID, targetID); err != nil {
		return err
	}
	s.events.PublishEvent(ctx, notifications.NewEvent(notifications.EventUserFollowed, map[string]uint{
		"follower_id": actorID,
	}), targetID)
	return nil
}

func (s *RelationService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	if err := s.target(ctx, actorID, targetID, "unfollow"); err != nil {
		return err
	}
	return s.relations.Unfollow(ctx, actorID, targetID)
}

// Block also removes follow edges in both directions.
func (s *RelationService) Block(ctx context.Context, actorID, targetID uint) error {
	if err := s.target(ctx, actorID, targetID, "block"); err != nil {
		return err
	}
	return s.relations.Block(ctx, actorID, targetID)
}

func (s *RelationService) Unblock(ctx context.Context, actorID, targetID uint) error {
	if err := s.target(ctx, actorID, targetID, "unblock"); err != nil {
		return err
	}
	return s.relations.Unblock(ctx, actorID, targetID)
}

func (s *RelationService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if err := s.mustExist(ctx, userID); err != nil {
		return nil, err
	}
	return s.relations.Followers(ctx, userID)
}

func (s *RelationService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if err := s.mustExist(ctx, userID); err != nil {
		return nil, err
	}
	return s.relations.Following(ctx, userID)
}

func (s *RelationService) BlockList(ctx context.Context, userID uint) ([]models.User, error) {
	return s.relations.BlockList(ctx, userID)
}

func (s *RelationService) mustExist(ctx context.Context, userID uint) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}
