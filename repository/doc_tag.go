package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

type DocTagRepository struct {
	db *gorm.DB
}

func NewDocTagRepository(db *gorm.DB) *DocTagRepository {
	return &DocTagRepository{db: db}
}

func (r *DocTagRepository) TagsForDocument(ctx context.Context, docID uint) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN doc_tag ON doc_tag.tag_id = tags.id").
		Where("doc_tag.doc_id = ?", docID).
		Order("tags.name").
		Find(&tags).Error
	if err != nil {
		return nil, wrap(err, "failed to load document tags")
	}
	return tags, nil
}

func (r *DocTagRepository) DocumentsForTag(ctx context.Context, tagID uint) ([]models.Document, error) {
	docs := make([]models.Document, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN doc_tag ON doc_tag.doc_id = documents.id").
		Where("doc_tag.tag_id = ?", tagID).
		Order("documents.created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, wrap(err, "failed to load tag documents")
	}
	return docs, nil
}

func (r *DocTagRepository) AllRelations(ctx context.Context) ([]models.DocTag, error) {
	rows := make([]models.DocTag, 0)
	if err := r.db.WithContext(ctx).Order("doc_id, tag_id").Find(&rows).Error; err != nil {
		return nil, wrap(err, "failed to load document tags")
	}
	return rows, nil
}

func (r *DocTagRepository) DeleteRelationsForDocument(ctx context.Context, docID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("doc_id = ?", docID).Delete(&models.DocTag{})
	if res.Error != nil {
		return 0, wrap(res.Error, "failed to delete document tags")
	}
	return res.RowsAffected, nil
}
