package models

import "time"

const (
	DocumentDraft = iota
	DocumentReviewing
	DocumentRejected
	DocumentPublished
)

type Document struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	OssKey       string    `json:"oss_key" gorm:"size:256;not null"`
	Title        string    `json:"title" gorm:"size:256;not null;default:'新建文章'"`
	ShortContent string    `json:"short_content" gorm:"type:text"`
	CoverImg     string    `json:"cover_img" gorm:"size:256"`
	Status       int       `json:"status" gorm:"not null;default:0;index"`
	CategoryID   *uint     `json:"category_id" gorm:"index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"size:64;not null"`
	ParentID *uint  `json:"parent_id" gorm:"index"`
	Path     string `json:"path" gorm:"size:256"`
}

type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:64;not null;uniqueIndex"`
}

type DocTag struct {
	DocID uint `json:"doc_id" gorm:"primaryKey;autoIncrement:false"`
	TagID uint `json:"tag_id" gorm:"primaryKey;autoIncrement:false;index"`
}

func (DocTag) TableName() string { return "doc_tag" }
