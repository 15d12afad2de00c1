package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

type IconRepository struct {
	db *gorm.DB
}

func NewIconRepository(db *gorm.DB) *IconRepository {
	return &IconRepository{db: db}
}

func (r *IconRepository) Get(ctx context.Context, id uint) (*models.Icon, error) {
	var icon models.Icon
	if err := r.db.WithContext(ctx).First(&icon, id).Error; err != nil {
		return nil, notFoundOr(err, NotFound("icon %d not found", id), "failed to load icon")
	}
	return &icon, nil
}

func (r *IconRepository) Create(ctx context.Context, name, url string) (*models.Icon, error) {
	icon := &models.Icon{Name: name, URL: url}
	if err := r.db.WithContext(ctx).Create(icon).Error; err != nil {
		return nil, wrap(err, "failed to create icon")
	}
	return icon, nil
}

// IDByName returns the id of the icon named name, or 0 when there is none.
func (r *IconRepository) IDByName(ctx context.Context, name string) (uint, error) {
	var icon models.Icon
	err := r.db.WithContext(ctx).Select("id").Where("name = ?", name).First(&icon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrap(err, "failed to load icon")
	}
	return icon.ID, nil
}
