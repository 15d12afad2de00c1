package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/superrabbithero/appmanage/database"
	"github.com/superrabbithero/appmanage/models"
)

// newTestDB returns a migrated private in-memory database. A single
// connection keeps every query on the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:", logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.MigrateModels(db))
	return db
}

func seedDocument(t *testing.T, db *gorm.DB, title string) *models.Document {
	t.Helper()
	doc, err := NewDocumentRepository(db).Create(context.Background(), NewDocument{
		UserID: 1,
		OssKey: "documents/1/" + title + ".md",
		Title:  title,
	})
	require.NoError(t, err)
	return doc
}

func seedImages(t *testing.T, db *gorm.DB, keys ...string) []uint {
	t.Helper()
	repo := NewImageRepository(db)
	ids := make([]uint, 0, len(keys))
	for _, key := range keys {
		img, err := repo.Create(context.Background(), key)
		require.NoError(t, err)
		ids = append(ids, img.ID)
	}
	return ids
}

// assertInUseConsistent checks that in_use is set exactly for images that
// have at least one document relation.
func assertInUseConsistent(t *testing.T, db *gorm.DB) {
	t.Helper()

	var images []models.Image
	require.NoError(t, db.Find(&images).Error)
	for _, img := range images {
		var n int64
		require.NoError(t, db.Model(&models.DocImage{}).Where("image_id = ?", img.ID).Count(&n).Error)
		require.Equalf(t, n > 0, img.InUse, "image %d has %d relations but in_use=%v", img.ID, n, img.InUse)
	}
}

func ids(v ...int64) []int64 { return v }
