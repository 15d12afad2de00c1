package repository

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

// RelationResult describes what a reconciliation changed. All slices are
// sorted ascending and never nil.
type RelationResult struct {
	DocID         uint   `json:"doc_id"`
	Added         []uint `json:"added"`
	Removed       []uint `json:"removed"`
	FinalImageIDs []uint `json:"final_image_ids"`
}

type DocImageRepository struct {
	db *gorm.DB
}

func NewDocImageRepository(db *gorm.DB) *DocImageRepository {
	return &DocImageRepository{db: db}
}

func (r *DocImageRepository) ImagesForDocument(ctx context.Context, docID uint) ([]models.Image, error) {
	images := make([]models.Image, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN doc_image ON doc_image.image_id = images.id").
		Where("doc_image.doc_id = ?", docID).
		Order("images.id").
		Find(&images).Error
	if err != nil {
		return nil, wrap(err, "failed to load document images")
	}
	return images, nil
}

func (r *DocImageRepository) DocumentsForImage(ctx context.Context, imageID uint) ([]models.Document, error) {
	docs := make([]models.Document, 0)
	err := r.db.WithContext(ctx).
		Joins("JOIN doc_image ON doc_image.doc_id = documents.id").
		Where("doc_image.image_id = ?", imageID).
		Order("documents.id").
		Find(&docs).Error
	if err != nil {
		return nil, wrap(err, "failed to load image documents")
	}
	return docs, nil
}

func (r *DocImageRepository) AllRelations(ctx context.Context) ([]models.DocImage, error) {
	rows := make([]models.DocImage, 0)
	if err := r.db.WithContext(ctx).Order("doc_id, image_id").Find(&rows).Error; err != nil {
		return nil, wrap(err, "failed to load document images")
	}
	return rows, nil
}

// UpdateDocRelations makes the image set of docID equal to imageIDs and
// keeps images.in_use true exactly for images that still have a relation.
// Ids that do not name an existing image are dropped without error.
func (r *DocImageRepository) UpdateDocRelations(ctx context.Context, docID uint, imageIDs []int64) (RelationResult, error) {
	var result RelationResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = reconcileImages(tx, docID, imageIDs)
		return err
	})
	if err != nil {
		return RelationResult{}, wrap(err, "failed to update document images")
	}

	log.WithFields(log.Fields{
		"doc_id":  docID,
		"added":   result.Added,
		"removed": result.Removed,
	}).Debug("document images reconciled")
	return result, nil
}

// reconcileImages runs inside tx; the caller owns commit and rollback.
func reconcileImages(tx *gorm.DB, docID uint, imageIDs []int64) (RelationResult, error) {
	var doc models.Document
	if err := tx.Select("id").Take(&doc, docID).Error; err != nil {
		return RelationResult{}, notFoundOr(err, NotFound("document %d not found", docID), "failed to load document")
	}

	var existing []uint
	if err := tx.Model(&models.DocImage{}).Where("doc_id = ?", docID).Pluck("image_id", &existing).Error; err != nil {
		return RelationResult{}, err
	}

	current := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		current[id] = struct{}{}
	}
	target := make(map[uint]struct{}, len(imageIDs))
	for _, id := range imageIDs {
		if id > 0 {
			target[uint(id)] = struct{}{}
		}
	}

	toAdd := difference(target, current)
	toRemove := difference(current, target)

	added := make([]uint, 0, len(toAdd))
	if len(toAdd) > 0 {
		if err := tx.Model(&models.Image{}).Where("id IN ?", toAdd).Pluck("id", &added).Error; err != nil {
			return RelationResult{}, err
		}
	}
	if len(added) > 0 {
		rows := make([]models.DocImage, 0, len(added))
		for _, id := range added {
			rows = append(rows, models.DocImage{DocID: docID, ImageID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return RelationResult{}, err
		}
		if err := tx.Model(&models.Image{}).Where("id IN ?", added).Update("in_use", true).Error; err != nil {
			return RelationResult{}, err
		}
	}

	if len(toRemove) > 0 {
		if err := tx.Where("doc_id = ? AND image_id IN ?", docID, toRemove).Delete(&models.DocImage{}).Error; err != nil {
			return RelationResult{}, err
		}

		var stillUsed []uint
		err := tx.Model(&models.DocImage{}).
			Distinct("image_id").
			Where("image_id IN ?", toRemove).
			Pluck("image_id", &stillUsed).Error
		if err != nil {
			return RelationResult{}, err
		}

		used := make(map[uint]struct{}, len(stillUsed))
		for _, id := range stillUsed {
			used[id] = struct{}{}
		}
		released := make([]uint, 0, len(toRemove))
		for _, id := range toRemove {
			if _, ok := used[id]; !ok {
				released = append(released, id)
			}
		}
		if len(released) > 0 {
			if err := tx.Model(&models.Image{}).Where("id IN ?", released).Update("in_use", false).Error; err != nil {
				return RelationResult{}, err
			}
		}
	}

	final := make([]uint, 0)
	if err := tx.Model(&models.DocImage{}).Where("doc_id = ?", docID).Order("image_id").Pluck("image_id", &final).Error; err != nil {
		return RelationResult{}, err
	}

	sortIDs(added)
	return RelationResult{
		DocID:         docID,
		Added:         nonNil(added),
		Removed:       nonNil(toRemove),
		FinalImageIDs: nonNil(final),
	}, nil
}

// difference returns the sorted members of a that are not in b.
func difference(a, b map[uint]struct{}) []uint {
	out := make([]uint, 0)
	for id := range a {
		if _, ok := b[id]; !ok {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []uint) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func nonNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}
