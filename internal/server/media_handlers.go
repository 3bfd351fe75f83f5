package server

import (
	"github.com/gofiber/fiber/v2"
)

// localMediaReader is implemented by stores that keep bytes in process.
type localMediaReader interface {
	Get(id string) ([]byte, string, bool)
}

// ServeLocalMedia handles GET /media/* for the in-memory media backend.
func (s *Server) ServeLocalMedia(c *fiber.Ctx) error {
	data, contentType, ok := s.localMedia.Get(c.Params("*"))
	if !ok {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
