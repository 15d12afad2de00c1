package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/superrabbithero/appmanage/repository"
)

// UploadToken hands out a short lived signed URL the client can PUT one
// object to.
func (h *Handler) UploadToken(c *fiber.Ctx) error {
	key := strings.TrimLeft(c.Query("key"), "/")
	if key == "" {
		return badRequest(c, "key is required")
	}
	contentType := c.Query("content_type", fiber.MIMEOctetStream)

	signed, err := h.store.SignUploadURL(key, contentType, h.signedURLTTL)
	if err != nil {
		return fail(c, repository.External(err, "failed to sign upload url"))
	}
	return ok(c, signed)
}
