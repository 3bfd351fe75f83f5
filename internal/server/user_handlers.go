package server

import (
	"context"

	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users/search/:query
// @Summary Search users
// @Description Case-insensitive match on username, full name or email
// @Tags users
// @Produce json
// @Param query path string true "Search text"
// @Success 200 {array} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/search/{query} [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.Search(c.UserContext(), c.Params("query"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetBlockList handles GET /api/users/blocklist
// @Summary Blocked users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /users/blocklist [get]
func (s *Server) GetBlockList(c *fiber.Ctx) error {
	users, err := s.relationService.BlockList(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update own profile
// @Description Multipart or JSON. An image replaces the profile or cover picture selected by imageType.
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param username formData string false "Username"
// @Param fullName formData string false "Full name"
// @Param email formData string false "Email"
// @Param bio formData string false "Bio"
// @Param imageType formData string false "profile or cover"
// @Param image formData file false "Image"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	form, body, err := readForm(c)
	if err != nil {
		return respondError(c, err)
	}

	in := service.UpdateProfileInput{ActorID: currentUserID(c), UserID: id}
	optional := func(key string) *string {
		if v, ok := formValue(form, body, key); ok {
			return &v
		}
		return nil
	}
	in.Username = optional("username")
	in.Email = optional("email")
	in.FullName = optional("fullName")
	in.Bio = optional("bio")
	in.ImageType, _ = formValue(form, body, "imageType")

	images, err := s.formImages(form, "image")
	if err != nil {
		return respondError(c, err)
	}
	if len(images) > 1 {
		return badRequest(c, "only one image can be uploaded")
	}
	if len(images) == 1 {
		in.Image = &images[0]
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id
// @Summary Delete own account
// @Description Removes the user and everything they own, then purges their media
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.userService.DeleteAccount(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	return s.relationAction(c, s.relationService.Follow, "Followed")
}

// UnfollowUser handles DELETE /api/users/:id/follow
// @Summary Unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	return s.relationAction(c, s.relationService.Unfollow, "Unfollowed")
}

// BlockUser handles POST /api/users/:id/block
// @Summary Block a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{id}/block [post]
func (s *Server) BlockUser(c *fiber.Ctx) error {
	return s.relationAction(c, s.relationService.Block, "Blocked")
}

// UnblockUser handles DELETE /api/users/:id/block
// @Summary Unblock a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/{id}/block [delete]
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	return s.relationAction(c, s.relationService.Unblock, "Unblocked")
}

func (s *Server) relationAction(
	c *fiber.Ctx, action func(ctx context.Context, actorID, targetID uint) error, message string,
) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := action(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": message})
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary Followers of a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} models.User
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.relationService.Followers(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/users/:id/following
// @Summary Users a user follows
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} models.User
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	users, err := s.relationService.Following(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary Posts of a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	posts, err := s.postService.ListUserPosts(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetUserStories handles GET /api/users/:id/stories
// @Summary Active stories of a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} models.Story
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/stories [get]
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	stories, err := s.storyService.ListUserStories(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stories)
}
