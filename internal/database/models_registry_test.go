package database

import (
	"testing"

	"socialhub/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesLikeTables(t *testing.T) {
	var post, comment, reply, story bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.PostLike:
			post = true
		case *models.CommentLike:
			comment = true
		case *models.ReplyLike:
			reply = true
		case *models.StoryLike:
			story = true
		}
	}
	require.True(t, post && comment && reply && story, "PersistentModels should include every like table")
}
