package models

import (
	"time"

	"gorm.io/datatypes"
)

// Story is ephemeral content hidden once ExpiresAt has passed.
type Story struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	UserID     uint                        `gorm:"not null;index" json:"user_id"`
	User       *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text       string                      `gorm:"type:text" json:"text"`
	Media      datatypes.JSONSlice[string] `json:"media"`
	MediaURLs  []string                    `gorm:"-" json:"media_urls"`
	LikesCount int                         `gorm:"->;-:migration" json:"likes_count"`
	Liked      bool                        `gorm:"->;-:migration" json:"liked"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
	ExpiresAt  time.Time                   `gorm:"not null;index" json:"expires_at"`
}

// TableName specifies the table name for GORM
func (Story) TableName() string {
	return "stories"
}

// Expired reports whether the story is past its expiry at now.
func (s *Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// StoryLike records that UserID liked StoryID.
type StoryLike struct {
	StoryID   uint      `gorm:"primaryKey;autoIncrement:false" json:"story_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (StoryLike) TableName() string {
	return "story_likes"
}
