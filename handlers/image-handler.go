package handler

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/superrabbithero/appmanage/repository"
	"github.com/superrabbithero/appmanage/storage"
)

// ReserveImage creates an images row for a key the client will upload to.
func (h *Handler) ReserveImage(c *fiber.Ctx) error {
	var req struct {
		Ext    string `json:"ext"`
		Prefix string `json:"prefix"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	image, err := h.images.Create(c.UserContext(), storage.ImageKey(req.Prefix, req.Ext, time.Now()))
	if err != nil {
		return fail(c, err)
	}
	return created(c, fiber.Map{
		"id":      image.ID,
		"oss_key": image.OssKey,
		"url":     h.store.PublicURL(image.OssKey),
	})
}

func (h *Handler) BatchUpdateImageStatus(c *fiber.Ctx) error {
	var req struct {
		IDs      json.RawMessage `json:"ids"`
		Uploaded *bool           `json:"uploaded"`
		InUse    *bool           `json:"in_use"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	ids, err := parseIDList(req.IDs, "ids")
	if err != nil {
		return fail(c, err)
	}

	updated, err := h.images.BatchUpdate(c.UserContext(), ids, repository.ImageStatusUpdate{
		Uploaded: req.Uploaded,
		InUse:    req.InUse,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"updated": updated})
}

// UpdateDocumentImages makes the image set of a document equal to image_ids.
func (h *Handler) UpdateDocumentImages(c *fiber.Ctx) error {
	var req struct {
		DocID    json.Number     `json:"doc_id"`
		ImageIDs json.RawMessage `json:"image_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	docID, err := req.DocID.Int64()
	if err != nil || docID <= 0 {
		return badRequest(c, "doc_id must be a positive integer")
	}
	imageIDs, err := parseIDList(req.ImageIDs, "image_ids")
	if err != nil {
		return fail(c, err)
	}

	result, err := h.docImages.UpdateDocRelations(c.UserContext(), uint(docID), imageIDs)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

func (h *Handler) GetDocumentImages(c *fiber.Ctx) error {
	docID, err := pathID(c, "doc_id")
	if err != nil {
		return fail(c, err)
	}
	if _, err := h.documents.Get(c.UserContext(), docID); err != nil {
		return fail(c, err)
	}

	images, err := h.docImages.ImagesForDocument(c.UserContext(), docID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, images)
}

// GetImageDocuments lists the documents that reference an image.
func (h *Handler) GetImageDocuments(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	docs, err := h.docImages.DocumentsForImage(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, docs)
}
