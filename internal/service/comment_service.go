package service

import (
	"context"

	"socialhub/internal/models"
	"socialhub/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	likes    repository.LikeRepository
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	likes repository.LikeRepository,
) *CommentService {
	return &CommentService{comments: comments, posts: posts, likes: likes}
}

func (s *CommentService) ListComments(ctx context.Context, postID, viewerID uint) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, viewerID)
}

// CreateComment adds a comment and bumps the post's comment count.
func (s *CommentService) CreateComment(ctx context.Context, userID, postID uint, text string) (*models.Comment, error) {
	text, err := requireText(text, "text")
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: postID, UserID: userID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID uint, text string) (*models.Comment, error) {
	text, err := requireText(text, "text")
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(comment.UserID, userID, "edit your own comments"); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateText(ctx, commentID, text); err != nil {
		return nil, err
	}
	comment.Text = text
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := requireOwner(comment.UserID, userID, "delete your own comments"); err != nil {
		return err
	}
	return s.comments.Delete(ctx, comment)
}

func (s *CommentService) LikeComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return err
	}
	return s.likes.Like(ctx, repository.LikeComment, commentID, userID)
}

func (s *CommentService) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return err
	}
	return s.likes.Unlike(ctx, repository.LikeComment, commentID, userID)
}

func (s *CommentService) CreateReply(ctx context.Context, userID, commentID uint, text string) (*models.Reply, error) {
	text, err := requireText(text, "text")
	if err != nil {
		return nil, err
	}
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	reply := &models.Reply{CommentID: commentID, UserID: userID, Text: text}
	if err := s.comments.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *CommentService) UpdateReply(ctx context.Context, userID, commentID, replyID uint, text string) (*models.Reply, error) {
	text, err := requireText(text, "text")
	if err != nil {
		return nil, err
	}
	reply, err := s.comments.GetReply(ctx, commentID, replyID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(reply.UserID, userID, "edit your own replies"); err != nil {
		return nil, err
	}
	if err := s.comments.UpdateReplyText(ctx, replyID, text); err != nil {
		return nil, err
	}
	reply.Text = text
	return reply, nil
}

func (s *CommentService) DeleteReply(ctx context.Context, userID, commentID, replyID uint) error {
	reply, err := s.comments.GetReply(ctx, commentID, replyID)
	if err != nil {
		return err
	}
	if err := requireOwner(reply.UserID, userID, "delete your own replies"); err != nil {
		return err
	}
	return s.comments.DeleteReply(ctx, replyID)
}

func (s *CommentService) LikeReply(ctx context.Context, userID, commentID, replyID uint) error {
	if _, err := s.comments.GetReply(ctx, commentID, replyID); err != nil {
		return err
	}
	return s.likes.Like(ctx, repository.LikeReply, replyID, userID)
}

func (s *CommentService) UnlikeReply(ctx context.Context, userID, commentID, replyID uint) error {
	if _, err := s.comments.GetReply(ctx, commentID, replyID); err != nil {
		return err
	}
	return s.likes.Unlike(ctx, repository.LikeReply, replyID, userID)
}
