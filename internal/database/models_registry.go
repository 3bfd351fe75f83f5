package database

import "socialhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Block{},
		&models.Post{},
		&models.PostLike{},
		&models.Comment{},
		&models.Reply{},
		&models.CommentLike{},
		&models.ReplyLike{},
		&models.Story{},
		&models.StoryLike{},
		&models.Conversation{},
		&models.Message{},
		&models.MessageRead{},
	}
}
