package handler

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/superrabbithero/appmanage/clients"
	"github.com/superrabbithero/appmanage/repository"
	"github.com/superrabbithero/appmanage/storage"
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

func extensionFor(mimeType string) string {
	if ext, ok := imageExtensions[mimeType]; ok {
		return ext
	}
	return "png"
}

// GenerateImage renders an image from a prompt, stores it and records it
// as an uploaded image that documents can reference.
func (h *Handler) GenerateImage(c *fiber.Ctx) error {
	if h.generator == nil {
		return respondError(c, fiber.StatusServiceUnavailable, "image generation is not configured")
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Prompt == "" {
		return badRequest(c, "prompt is required")
	}
	if len(req.Prompt) > clients.MaxPromptLength {
		return badRequest(c, "prompt too long")
	}

	generated, err := h.generator.GenerateImage(c.UserContext(), req.Prompt)
	if err != nil {
		return fail(c, repository.External(err, "failed to generate image"))
	}

	key := storage.ImageKey("images/generated", extensionFor(generated.MIMEType), time.Now())
	url, err := h.store.Upload(c.UserContext(), bytes.NewReader(generated.Data), key, generated.MIMEType)
	if err != nil {
		return fail(c, repository.External(err, "failed to upload generated image"))
	}

	image, err := h.images.Create(c.UserContext(), key)
	if err != nil {
		return fail(c, err)
	}
	uploaded := true
	image, err = h.images.UpdateByKey(c.UserContext(), key, repository.ImageStatusUpdate{Uploaded: &uploaded})
	if err != nil {
		return fail(c, err)
	}

	log.WithFields(log.Fields{"image_id": image.ID, "key": key}).Info("generated image stored")
	return created(c, fiber.Map{"id": image.ID, "oss_key": key, "url": url})
}
