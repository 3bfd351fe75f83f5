package server

import (
	"github.com/gofiber/fiber/v2"
)

type textRequest struct {
	Text string `json:"text"`
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{text=string} true "New text"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), currentUserID(c), id, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// LikeComment handles POST /api/comments/:id/like
// @Summary Like a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /comments/{id}/like [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.LikeComment(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment liked"})
}

// UnlikeComment handles DELETE /api/comments/:id/like
// @Summary Unlike a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /comments/{id}/like [delete]
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.UnlikeComment(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment unliked"})
}

// CreateReply handles POST /api/comments/:id/replies
// @Summary Reply to a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body object{text=string} true "Reply"
// @Success 201 {object} models.Reply
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/replies [post]
func (s *Server) CreateReply(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	reply, err := s.commentService.CreateReply(c.UserContext(), currentUserID(c), id, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// replyIDs parses both route IDs of a reply route.
func (s *Server) replyIDs(c *fiber.Ctx) (commentID, replyID uint, err error) {
	if commentID, err = s.parseID(c, "id"); err != nil {
		return 0, 0, err
	}
	if replyID, err = s.parseID(c, "replyId"); err != nil {
		return 0, 0, err
	}
	return commentID, replyID, nil
}

// UpdateReply handles PUT /api/comments/:id/replies/:replyId
// @Summary Edit a reply
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param replyId path int true "Reply ID"
// @Param request body object{text=string} true "New text"
// @Success 200 {object} models.Reply
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/replies/{replyId} [put]
func (s *Server) UpdateReply(c *fiber.Ctx) error {
	commentID, replyID, err := s.replyIDs(c)
	if err != nil {
		return nil
	}
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	reply, err := s.commentService.UpdateReply(c.UserContext(), currentUserID(c), commentID, replyID, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reply)
}

// DeleteReply handles DELETE /api/comments/:id/replies/:replyId
// @Summary Delete a reply
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param replyId path int true "Reply ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id}/replies/{replyId} [delete]
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	commentID, replyID, err := s.replyIDs(c)
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteReply(c.UserContext(), currentUserID(c), commentID, replyID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reply deleted"})
}

// LikeReply handles POST /api/comments/:id/replies/:replyId/like
// @Summary Like a reply
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param replyId path int true "Reply ID"
// @Success 200 {object} object{message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /comments/{id}/replies/{replyId}/like [post]
func (s *Server) LikeReply(c *fiber.Ctx) error {
	commentID, replyID, err := s.replyIDs(c)
	if err != nil {
		return nil
	}
	if err := s.commentService.LikeReply(c.UserContext(), currentUserID(c), commentID, replyID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reply liked"})
}

// UnlikeReply handles DELETE /api/comments/:id/replies/:replyId/like
// @Summary Unlike a reply
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param replyId path int true "Reply ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /comments/{id}/replies/{replyId}/like [delete]
func (s *Server) UnlikeReply(c *fiber.Ctx) error {
	commentID, replyID, err := s.replyIDs(c)
	if err != nil {
		return nil
	}
	if err := s.commentService.UnlikeReply(c.UserContext(), currentUserID(c), commentID, replyID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reply unliked"})
}
