package server

import (
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateStory handles POST /api/stories
// @Summary Create a story
// @Description Needs text, images or both. Expires after the configured story lifetime.
// @Tags stories
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param text formData string false "Text"
// @Param images formData file false "Up to 10 images"
// @Success 201 {object} models.Story
// @Failure 400 {object} models.ErrorResponse
// @Router /stories [post]
func (s *Server) CreateStory(c *fiber.Ctx) error {
	form, body, err := readForm(c)
	if err != nil {
		return respondError(c, err)
	}
	text, _ := formValue(form, body, "text")
	images, err := s.formImages(form, "images")
	if err != nil {
		return respondError(c, err)
	}

	story, err := s.storyService.CreateStory(c.UserContext(), service.CreateStoryInput{
		UserID: currentUserID(c),
		Text:   text,
		Files:  images,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// GetStory handles GET /api/stories/:id
// @Summary Get own story
// @Tags stories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Success 200 {object} models.Story
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /stories/{id} [get]
func (s *Server) GetStory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	story, err := s.storyService.GetStory(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(story)
}

// UpdateStory handles PUT /api/stories/:id
// @Summary Update a story
// @Tags stories
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Param text formData string false "Text"
// @Param deleteImages formData string false "Media IDs to remove"
// @Param images formData file false "New images"
// @Success 200 {object} models.Story
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /stories/{id} [put]
func (s *Server) UpdateStory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	form, body, err := readForm(c)
	if err != nil {
		return respondError(c, err)
	}

	in := service.UpdateStoryInput{UserID: currentUserID(c), StoryID: id}
	if text, ok := formValue(form, body, "text"); ok {
		in.Text = &text
	}
	if raw, ok := formValue(form, body, "deleteImages"); ok {
		in.DeleteMedia = service.ParseMediaList(raw)
	}
	if in.Files, err = s.formImages(form, "images"); err != nil {
		return respondError(c, err)
	}

	story, err := s.storyService.UpdateStory(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(story)
}

// DeleteStory handles DELETE /api/stories/:id
// @Summary Delete a story
// @Tags stories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /stories/{id} [delete]
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.storyService.DeleteStory(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Story deleted"})
}

// LikeStory handles POST /api/stories/:id/like
// @Summary Like a story
// @Tags stories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Success 200 {object} object{message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /stories/{id}/like [post]
func (s *Server) LikeStory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.storyService.LikeStory(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Story liked"})
}

// UnlikeStory handles DELETE /api/stories/:id/like
// @Summary Unlike a story
// @Tags stories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /stories/{id}/like [delete]
func (s *Server) UnlikeStory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.storyService.UnlikeStory(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Story unliked"})
}
