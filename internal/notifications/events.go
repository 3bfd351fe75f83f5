// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types delivered to websocket clients.
const (
	EventMessageCreated      = "message.created"
	EventMessageRead         = "message.read"
	EventConversationDeleted = "conversation.deleted"
	EventUserFollowed        = "user.followed"
)

// Event is the JSON envelope written to a user's channel.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, payload interface{}) Event {
	return Event{Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}
}

// Encode renders the event as a JSON string.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	return string(b), nil
}

// UserChannel is the Redis channel for one user's events.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}
