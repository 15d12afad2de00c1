package models

import "time"

// Image is a reserved object-storage slot for a picture embedded in documents.
// InUse must be true exactly when at least one DocImage row points at it.
type Image struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OssKey    string    `json:"oss_key" gorm:"size:256;not null;uniqueIndex"`
	Uploaded  bool      `json:"uploaded" gorm:"not null;default:false"`
	InUse     bool      `json:"in_use" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

// DocImage is the document/image junction. Rows are only written by
// repository.DocImageRepository.UpdateDocRelations.
type DocImage struct {
	DocID   uint `json:"doc_id" gorm:"primaryKey;autoIncrement:false"`
	ImageID uint `json:"image_id" gorm:"primaryKey;autoIncrement:false;index"`
}

func (DocImage) TableName() string { return "doc_image" }
