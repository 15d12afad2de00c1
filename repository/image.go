package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

// ImageStatusUpdate carries the optional flags of an image status change.
type ImageStatusUpdate struct {
	Uploaded *bool `json:"uploaded"`
	InUse    *bool `json:"in_use"`
}

func (u ImageStatusUpdate) empty() bool {
	return u.Uploaded == nil && u.InUse == nil
}

func (u ImageStatusUpdate) columns() map[string]interface{} {
	cols := make(map[string]interface{}, 2)
	if u.Uploaded != nil {
		cols["uploaded"] = *u.Uploaded
	}
	if u.InUse != nil {
		cols["in_use"] = *u.InUse
	}
	return cols
}

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create reserves a storage key. The row starts not uploaded and not in use.
func (r *ImageRepository) Create(ctx context.Context, ossKey string) (*models.Image, error) {
	if ossKey == "" {
		return nil, InvalidArgument("oss_key is required")
	}
	image := &models.Image{OssKey: ossKey}
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return nil, wrap(err, "failed to create image")
	}
	return image, nil
}

func (r *ImageRepository) Get(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		return nil, notFoundOr(err, NotFound("image %d not found", id), "failed to load image")
	}
	return &image, nil
}

func (r *ImageRepository) GetByKey(ctx context.Context, ossKey string) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).Where("oss_key = ?", ossKey).First(&image).Error; err != nil {
		return nil, notFoundOr(err, NotFound("image %s not found", ossKey), "failed to load image")
	}
	return &image, nil
}

// UpdateByKey changes the flags of the image stored under ossKey.
func (r *ImageRepository) UpdateByKey(ctx context.Context, ossKey string, update ImageStatusUpdate) (*models.Image, error) {
	if update.empty() {
		return nil, InvalidArgument("uploaded or in_use is required")
	}
	image, err := r.GetByKey(ctx, ossKey)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(image).Updates(update.columns()).Error; err != nil {
		return nil, wrap(err, "failed to update image")
	}
	return image, nil
}

// BatchUpdate applies update to every image in ids with a single statement
// and returns the number of affected rows. It is an administrative override:
// in_use is written as given even if it disagrees with doc_image.
func (r *ImageRepository) BatchUpdate(ctx context.Context, ids []int64, update ImageStatusUpdate) (int64, error) {
	if len(ids) == 0 {
		return 0, InvalidArgument("ids must be a non-empty array")
	}
	if update.empty() {
		return 0, InvalidArgument("uploaded or in_use is required")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("id IN ?", ids).
		Updates(update.columns())
	if res.Error != nil {
		return 0, wrap(res.Error, "failed to update images")
	}
	return res.RowsAffected, nil
}
