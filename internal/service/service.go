// Package service implements the business rules and the cross-entity
// consistency protocol on top of the repositories and the media store.
package service

import (
	"context"
	"strings"

	"socialhub/internal/featureflags"
	"socialhub/internal/models"
	"socialhub/internal/notifications"
)

// EventPublisher delivers realtime events to users.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event notifications.Event, userIDs ...uint)
}

type noopPublisher struct{}

func (noopPublisher) PublishEvent(context.Context, notifications.Event, ...uint) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func purgeEnabled(flags featureflags.Checker, userID uint) bool {
	return flags != nil && flags.Enabled(featureflags.MediaPurgeOnDelete, userID)
}

func requireOwner(ownerID, actorID uint, action string) error {
	if ownerID != actorID {
		return models.NewForbiddenError("you can only " + action)
	}
	return nil
}

func requireText(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", models.NewValidationError(field + " is required")
	}
	return value, nil
}
