// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is an account. Username and email are stored lowercased and trimmed.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"uniqueIndex;not null;size:30" json:"username"`
	Email            string    `gorm:"uniqueIndex;not null;size:254" json:"email"`
	Password         string    `gorm:"not null" json:"-"`
	FullName         string    `gorm:"not null" json:"full_name"`
	Bio              string    `gorm:"type:text" json:"bio"`
	ProfilePicture   string    `json:"profile_picture"`
	ProfilePictureID string    `json:"-"`
	CoverPicture     string    `json:"cover_picture"`
	CoverPictureID   string    `json:"-"`
	PostsCount       int       `gorm:"not null;default:0" json:"posts_count"`
	FollowersCount   int       `gorm:"->;-:migration" json:"followers_count"`
	FollowingCount   int       `gorm:"->;-:migration" json:"following_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave normalizes the unique identity fields.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Username = NormalizeIdentity(u.Username)
	u.Email = NormalizeIdentity(u.Email)
	return nil
}

// NormalizeIdentity lowercases and trims a username or email.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
