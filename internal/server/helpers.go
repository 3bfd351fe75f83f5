package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"unicode"

	"socialhub/internal/mediastore"
	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "replyId" -> "reply ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// currentUserID returns the caller set by the auth middleware.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// respondError writes err with the status its code maps to. Unexpected
// errors are logged and reported as 500 without details.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

func badRequest(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(message))
}

// isMultipart reports whether the request carries a multipart form body.
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// formValue reads a field from a multipart form or a JSON/urlencoded body.
// The second result reports whether the field was sent at all.
func formValue(form *multipart.Form, body map[string]interface{}, key string) (string, bool) {
	if form != nil {
		values, ok := form.Value[key]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}
	raw, ok := body[key]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

// readForm parses either a multipart form or a JSON body into a form or a
// generic map. Exactly one of the two results is non-nil on success.
func readForm(c *fiber.Ctx) (*multipart.Form, map[string]interface{}, error) {
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, models.NewValidationError("Invalid multipart form")
		}
		return form, nil, nil
	}
	body := map[string]interface{}{}
	if len(c.Body()) == 0 {
		return nil, body, nil
	}
	if err := c.BodyParser(&body); err != nil {
		return nil, nil, models.NewValidationError("Invalid request body")
	}
	return nil, body, nil
}

// formImages reads uploaded images under the given field names, checking
// count, size and image type before anything reaches the media store.
func (s *Server) formImages(form *multipart.Form, fields ...string) ([]mediastore.File, error) {
	if form == nil {
		return nil, nil
	}
	var headers []*multipart.FileHeader
	for _, field := range fields {
		headers = append(headers, form.File[field]...)
	}
	if len(headers) > s.maxFiles {
		return nil, models.NewValidationError(fmt.Sprintf("at most %d images are allowed", s.maxFiles))
	}

	files := make([]mediastore.File, 0, len(headers))
	for _, fh := range headers {
		if s.maxUploadBytes > 0 && fh.Size > s.maxUploadBytes {
			return nil, models.NewValidationError(fmt.Sprintf("%s exceeds the %d MB limit", fh.Filename, s.maxUploadBytes>>20))
		}
		src, err := fh.Open()
		if err != nil {
			return nil, models.NewValidationError("Unable to read uploaded file")
		}
		contentType, data, err := validation.SniffImage(src, s.maxUploadBytes)
		_ = src.Close()
		if err != nil {
			return nil, models.NewValidationError(fmt.Sprintf("%s: %s", fh.Filename, err.Error()))
		}
		files = append(files, mediastore.File{
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        int64(len(data)),
			Content:     bytes.NewReader(data),
		})
	}
	return files, nil
}
