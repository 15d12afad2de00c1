package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superrabbithero/appmanage/models"
)

func boolPtr(b bool) *bool { return &b }

func TestBatchUpdateRejectsEmptyInput(t *testing.T) {
	db := newTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	_, err := repo.BatchUpdate(ctx, nil, ImageStatusUpdate{Uploaded: boolPtr(true)})
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	_, err = repo.BatchUpdate(ctx, ids(1), ImageStatusUpdate{})
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestBatchUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()
	img := seedImages(t, db, "images/a.png", "images/b.png", "images/c.png")

	n, err := repo.BatchUpdate(ctx, ids(int64(img[0]), int64(img[2]), 999), ImageStatusUpdate{Uploaded: boolPtr(true)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	var images []models.Image
	require.NoError(t, db.Order("id").Find(&images).Error)
	assert.True(t, images[0].Uploaded)
	assert.False(t, images[1].Uploaded)
	assert.True(t, images[2].Uploaded)
	assert.False(t, images[0].InUse)
}

func TestImageCreateAndUpdateByKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "")
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	img, err := repo.Create(ctx, "images/2024-01-01/x.png")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "images/2024-01-01/x.png")
	assert.Equal(t, KindConflict, KindOf(err))

	updated, err := repo.UpdateByKey(ctx, img.OssKey, ImageStatusUpdate{Uploaded: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Uploaded)

	_, err = repo.UpdateByKey(ctx, "images/missing.png", ImageStatusUpdate{Uploaded: boolPtr(true)})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = repo.Get(ctx, 404)
	assert.Equal(t, KindNotFound, KindOf(err))
}
