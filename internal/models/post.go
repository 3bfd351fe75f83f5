package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a user post with an ordered list of media IDs.
type Post struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	UserID    uint                        `gorm:"not null;index" json:"user_id"`
	User      *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Caption   string                      `gorm:"type:text;not null" json:"caption"`
	Media     datatypes.JSONSlice[string] `json:"media"`
	MediaURLs []string                    `gorm:"-" json:"media_urls"`
	// CommentsCount is maintained alongside comment writes.
	CommentsCount int `gorm:"not null;default:0" json:"comments_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// PostLike records that UserID liked PostID.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (PostLike) TableName() string {
	return "post_likes"
}

// MediaList builds a non-nil media column value.
func MediaList(ids []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(ids))
	return append(out, ids...)
}
