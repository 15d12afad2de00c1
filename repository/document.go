package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

const defaultDocumentTitle = "新建文章"

type NewDocument struct {
	UserID       uint
	OssKey       string
	Title        string
	ShortContent string
	Status       int
	CategoryID   *uint
}

// DocumentUpdate lists the editable fields; nil fields are left untouched.
type DocumentUpdate struct {
	Title        *string
	ShortContent *string
	CoverImg     *string
	Status       *int
	CategoryID   *uint
}

// DocumentFilter narrows a document listing. Zero values disable a filter.
type DocumentFilter struct {
	UserID     *uint
	Statuses   []int
	Title      string
	CategoryID *uint
	TagIDs     []uint
}

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Get(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, notFoundOr(err, NotFound("document %d not found", id), "failed to load document")
	}
	return &doc, nil
}

func (r *DocumentRepository) Create(ctx context.Context, in NewDocument) (*models.Document, error) {
	if in.UserID == 0 {
		return nil, InvalidArgument("user_id is required")
	}
	if in.OssKey == "" {
		return nil, InvalidArgument("oss_key is required")
	}
	if in.Title == "" {
		in.Title = defaultDocumentTitle
	}

	doc := &models.Document{
		UserID:       in.UserID,
		OssKey:       in.OssKey,
		Title:        in.Title,
		ShortContent: in.ShortContent,
		Status:       in.Status,
		CategoryID:   in.CategoryID,
	}
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, wrap(err, "failed to create document")
	}
	return doc, nil
}

// Update writes the non-nil fields of u and always bumps updated_at.
func (r *DocumentRepository) Update(ctx context.Context, id uint, u DocumentUpdate) (*models.Document, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cols := map[string]interface{}{"updated_at": time.Now()}
	if u.Title != nil && *u.Title != "" {
		cols["title"] = *u.Title
	}
	if u.ShortContent != nil && *u.ShortContent != "" {
		cols["short_content"] = *u.ShortContent
	}
	if u.CoverImg != nil && *u.CoverImg != "" {
		cols["cover_img"] = *u.CoverImg
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.CategoryID != nil {
		cols["category_id"] = *u.CategoryID
	}

	if err := r.db.WithContext(ctx).Model(doc).Updates(cols).Error; err != nil {
		return nil, wrap(err, "failed to update document")
	}
	return r.Get(ctx, id)
}

// Delete removes the document together with its tag and image relations.
// Image relations go through the reconciler so in_use stays consistent.
func (r *DocumentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := reconcileImages(tx, id, nil); err != nil {
			return err
		}
		if err := tx.Where("doc_id = ?", id).Delete(&models.DocTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, id).Error
	})
	return wrap(err, "failed to delete document")
}

// List returns one page of documents, newest first.
func (r *DocumentRepository) List(ctx context.Context, f DocumentFilter, page, perPage int) (Page[models.Document], error) {
	q := r.db.WithContext(ctx).Model(&models.Document{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if title := strings.TrimSpace(f.Title); title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(title)+"%")
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if len(f.TagIDs) > 0 {
		q = q.Where("id IN (?)", r.db.Model(&models.DocTag{}).Select("doc_id").Where("tag_id IN ?", f.TagIDs))
	}

	p, err := paginate[models.Document](q, "created_at DESC, id DESC", page, perPage)
	if err != nil {
		return Page[models.Document]{}, wrap(err, "failed to list documents")
	}
	return p, nil
}

func (r *DocumentRepository) ByCategory(ctx context.Context, categoryID uint, page, perPage int) (Page[models.Document], error) {
	return r.List(ctx, DocumentFilter{CategoryID: &categoryID}, page, perPage)
}

// AddTag links a tag to a document. Linking twice is not an error.
func (r *DocumentRepository) AddTag(ctx context.Context, docID, tagID uint) error {
	db := r.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Document{}).Where("id = ?", docID).Count(&n).Error; err != nil {
		return wrap(err, "failed to load document")
	}
	if n == 0 {
		return NotFound("document %d not found", docID)
	}
	if err := db.Model(&models.Tag{}).Where("id = ?", tagID).Count(&n).Error; err != nil {
		return wrap(err, "failed to load tag")
	}
	if n == 0 {
		return NotFound("tag %d not found", tagID)
	}

	if err := db.Model(&models.DocTag{}).Where("doc_id = ? AND tag_id = ?", docID, tagID).Count(&n).Error; err != nil {
		return wrap(err, "failed to load document tags")
	}
	if n > 0 {
		return nil
	}
	return wrap(db.Create(&models.DocTag{DocID: docID, TagID: tagID}).Error, "failed to add tag")
}

func (r *DocumentRepository) RemoveTag(ctx context.Context, docID, tagID uint) error {
	res := r.db.WithContext(ctx).Where("doc_id = ? AND tag_id = ?", docID, tagID).Delete(&models.DocTag{})
	if res.Error != nil {
		return wrap(res.Error, "failed to remove tag")
	}
	if res.RowsAffected == 0 {
		return NotFound("document %d has no tag %d", docID, tagID)
	}
	return nil
}
