package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// BodyLimit rejects request bodies over maxBytes unless they are multipart uploads.
// Uploads are bounded by the server body limit and the admission filter instead.
func BodyLimit(maxBytes int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentType := strings.ToLower(c.Get(fiber.HeaderContentType))
		if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
			return c.Next()
		}

		if c.Request().Header.ContentLength() > maxBytes || len(c.Request().Body()) > maxBytes {
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "request body too large")
		}
		return c.Next()
	}
}
