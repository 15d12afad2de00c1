package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/superrabbithero/appmanage/middleware"
	"github.com/superrabbithero/appmanage/models"
	"github.com/superrabbithero/appmanage/repository"
	"github.com/superrabbithero/appmanage/storage"
)

func documentFilter(c *fiber.Ctx) (repository.DocumentFilter, error) {
	var f repository.DocumentFilter
	var err error

	if f.UserID, err = optionalQueryID(c, "user_id"); err != nil {
		return f, err
	}
	if f.CategoryID, err = optionalQueryID(c, "category_id"); err != nil {
		return f, err
	}
	if f.Statuses, err = queryInts(c, "status"); err != nil {
		return f, err
	}
	tagIDs, err := queryInts(c, "tag_id")
	if err != nil {
		return f, err
	}
	for _, id := range tagIDs {
		if id > 0 {
			f.TagIDs = append(f.TagIDs, uint(id))
		}
	}
	f.Title = c.Query("title")
	return f, nil
}

func pageResponse(p repository.Page[models.Document]) fiber.Map {
	return fiber.Map{
		"items":        p.Items,
		"total":        p.Total,
		"pages":        p.Pages,
		"current_page": p.Page,
	}
}

func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	f, err := documentFilter(c)
	if err != nil {
		return fail(c, err)
	}
	page, perPage := pageParams(c)

	p, err := h.documents.List(c.UserContext(), f, page, perPage)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, pageResponse(p))
}

// ListHomeDocuments lists published documents only.
func (h *Handler) ListHomeDocuments(c *fiber.Ctx) error {
	f, err := documentFilter(c)
	if err != nil {
		return fail(c, err)
	}
	f.Statuses = []int{models.DocumentPublished}
	page, perPage := pageParams(c)

	p, err := h.documents.List(c.UserContext(), f, page, perPage)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, pageResponse(p))
}

func (h *Handler) GetDocument(c *fiber.Ctx) error {
	id, err := queryID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	doc, err := h.documents.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	tags, err := h.docTags.TagsForDocument(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"document": doc, "tags": tags})
}

func (h *Handler) DeleteDocument(c *fiber.Ctx) error {
	id, err := queryID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.documents.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"id": id})
}

// ReserveDocument creates a draft document and a storage key for its body.
func (h *Handler) ReserveDocument(c *fiber.Ctx) error {
	var req struct {
		UserID       uint   `json:"user_id"`
		Title        string `json:"title"`
		ShortContent string `json:"short_content"`
		Prefix       string `json:"prefix"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserID == 0 {
		if id, ok := middleware.CurrentUserID(c); ok {
			req.UserID = id
		}
	}
	if req.UserID == 0 {
		return badRequest(c, "user_id is required")
	}

	key := storage.DocumentKey(req.Prefix, req.UserID, time.Now())
	doc, err := h.documents.Create(c.UserContext(), repository.NewDocument{
		UserID:       req.UserID,
		OssKey:       key,
		Title:        req.Title,
		ShortContent: req.ShortContent,
		Status:       models.DocumentDraft,
	})
	if err != nil {
		return fail(c, err)
	}

	upload, err := h.store.SignUploadURL(key, "text/markdown", h.signedURLTTL)
	if err != nil {
		return fail(c, repository.External(err, "failed to sign upload url"))
	}
	return created(c, fiber.Map{"document": doc, "upload": upload})
}

func (h *Handler) CreateDocument(c *fiber.Ctx) error {
	var req struct {
		UserID       uint   `json:"user_id"`
		OssKey       string `json:"oss_key"`
		Title        string `json:"title"`
		ShortContent string `json:"short_content"`
		Status       int    `json:"status"`
		CategoryID   *uint  `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	doc, err := h.documents.Create(c.UserContext(), repository.NewDocument{
		UserID:       req.UserID,
		OssKey:       req.OssKey,
		Title:        req.Title,
		ShortContent: req.ShortContent,
		Status:       req.Status,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, doc)
}

type documentUpdateRequest struct {
	ID           uint    `json:"id"`
	Title        *string `json:"title"`
	ShortContent *string `json:"short_content"`
	CoverImg     *string `json:"cover_img"`
	Status       *int    `json:"status"`
	CategoryID   *uint   `json:"category_id"`
}

func (r documentUpdateRequest) update() repository.DocumentUpdate {
	return repository.DocumentUpdate{
		Title:        r.Title,
		ShortContent: r.ShortContent,
		CoverImg:     r.CoverImg,
		Status:       r.Status,
		CategoryID:   r.CategoryID,
	}
}

func (h *Handler) UpdateDocument(c *fiber.Ctx) error {
	var req documentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ID == 0 {
		return badRequest(c, "id is required")
	}

	doc, err := h.documents.Update(c.UserContext(), req.ID, req.update())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, doc)
}

// PublishDocument stores the summary of a document and moves it to the
// requested status, published by default.
func (h *Handler) PublishDocument(c *fiber.Ctx) error {
	var req documentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.ID == 0 {
		return badRequest(c, "id is required")
	}
	if req.ShortContent == nil || *req.ShortContent == "" {
		return badRequest(c, "short_content is required")
	}
	if req.Status == nil {
		published := models.DocumentPublished
		req.Status = &published
	}

	doc, err := h.documents.Update(c.UserContext(), req.ID, repository.DocumentUpdate{
		ShortContent: req.ShortContent,
		CoverImg:     req.CoverImg,
		Status:       req.Status,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, doc)
}

func (h *Handler) GetCategoryTree(c *fiber.Ctx) error {
	tree, err := h.categories.Tree(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, tree)
}

func (h *Handler) GetCategoryChildren(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	children, err := h.categories.Children(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, children)
}

func (h *Handler) ListCategoryDocuments(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	page, perPage := pageParams(c)

	p, err := h.documents.ByCategory(c.UserContext(), id, page, perPage)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, pageResponse(p))
}

func (h *Handler) ListTagDocuments(c *fiber.Ctx) error {
	tagID, err := pathID(c, "tag_id")
	if err != nil {
		return fail(c, err)
	}
	page, perPage := pageParams(c)

	p, err := h.tags.DocumentsByTag(c.UserContext(), tagID, page, perPage)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, pageResponse(p))
}

func (h *Handler) SearchTags(c *fiber.Ctx) error {
	var (
		tags []models.Tag
		err  error
	)
	if name := c.Query("name"); name != "" {
		tags, err = h.tags.SearchByName(c.UserContext(), name)
	} else {
		tags, err = h.tags.All(c.UserContext())
	}
	if err != nil {
		return fail(c, err)
	}
	return ok(c, tags)
}

func (h *Handler) GetDocumentTags(c *fiber.Ctx) error {
	docID, err := pathID(c, "doc_id")
	if err != nil {
		return fail(c, err)
	}
	tags, err := h.docTags.TagsForDocument(c.UserContext(), docID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, tags)
}

// AddDocumentTag links an existing tag by tag_id, or creates the tag named
// name first.
func (h *Handler) AddDocumentTag(c *fiber.Ctx) error {
	docID, err := pathID(c, "doc_id")
	if err != nil {
		return fail(c, err)
	}
	var req struct {
		TagID uint   `json:"tag_id"`
		Name  string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	tagID := req.TagID
	if tagID == 0 {
		if req.Name == "" {
			return badRequest(c, "tag_id is required")
		}
		tag, err := h.tags.Create(c.UserContext(), req.Name)
		if err != nil {
			return fail(c, err)
		}
		tagID = tag.ID
	}

	if err := h.documents.AddTag(c.UserContext(), docID, tagID); err != nil {
		return fail(c, err)
	}
	return created(c, fiber.Map{"doc_id": docID, "tag_id": tagID})
}

func (h *Handler) RemoveDocumentTag(c *fiber.Ctx) error {
	docID, err := pathID(c, "doc_id")
	if err != nil {
		return fail(c, err)
	}
	tagID, err := pathID(c, "tag_id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.documents.RemoveTag(c.UserContext(), docID, tagID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"doc_id": docID, "tag_id": tagID})
}
