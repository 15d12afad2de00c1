package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) All(ctx context.Context) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, wrap(err, "failed to list tags")
	}
	return tags, nil
}

func (r *TagRepository) Get(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFoundOr(err, NotFound("tag %d not found", id), "failed to load tag")
	}
	return &tag, nil
}

func (r *TagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, InvalidArgument("tag name is required")
	}
	tag := &models.Tag{Name: name}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, wrap(err, "failed to create tag")
	}
	return tag, nil
}

func (r *TagRepository) Update(ctx context.Context, id uint, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, InvalidArgument("tag name is required")
	}
	tag, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(tag).Update("name", name).Error; err != nil {
		return nil, wrap(err, "failed to update tag")
	}
	return tag, nil
}

// Delete drops the tag and every document relation pointing at it.
func (r *TagRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.First(&tag, id).Error; err != nil {
			return notFoundOr(err, NotFound("tag %d not found", id), "failed to load tag")
		}
		if err := tx.Where("tag_id = ?", id).Delete(&models.DocTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	return wrap(err, "failed to delete tag")
}

func (r *TagRepository) DocumentsByTag(ctx context.Context, tagID uint, page, perPage int) (Page[models.Document], error) {
	q := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id IN (?)", r.db.Model(&models.DocTag{}).Select("doc_id").Where("tag_id = ?", tagID))

	p, err := paginate[models.Document](q, "created_at DESC, id DESC", page, perPage)
	if err != nil {
		return Page[models.Document]{}, wrap(err, "failed to list tag documents")
	}
	return p, nil
}

func (r *TagRepository) SearchByName(ctx context.Context, name string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%").
		Order("name").
		Find(&tags).Error
	if err != nil {
		return nil, wrap(err, "failed to search tags")
	}
	return tags, nil
}
