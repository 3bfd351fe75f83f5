package models

import "time"

// Comment belongs to a post and carries its replies.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Replies    []Reply   `gorm:"foreignKey:CommentID" json:"replies"`
	LikesCount int       `gorm:"->;-:migration" json:"likes_count"`
	Liked      bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// Reply is an answer to a comment.
type Reply struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CommentID  uint      `gorm:"not null;index" json:"comment_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	LikesCount int       `gorm:"->;-:migration" json:"likes_count"`
	Liked      bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Reply) TableName() string {
	return "replies"
}

// CommentLike records that UserID liked CommentID.
type CommentLike struct {
	CommentID uint      `gorm:"primaryKey;autoIncrement:false" json:"comment_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (CommentLike) TableName() string {
	return "comment_likes"
}

// ReplyLike records that UserID liked ReplyID.
type ReplyLike struct {
	ReplyID   uint      `gorm:"primaryKey;autoIncrement:false" json:"reply_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ReplyLike) TableName() string {
	return "reply_likes"
}
