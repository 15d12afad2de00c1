package models

import "time"

type Package struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	AppName     string    `json:"appname" gorm:"column:appname;size:128;not null;index"`
	Version     string    `json:"version" gorm:"size:64;not null"`
	Name        string    `json:"name" gorm:"size:256;not null"`
	Size        int64     `json:"size" gorm:"not null"`
	System      string    `json:"system" gorm:"size:64;not null"`
	CreateTime  time.Time `json:"create_time" gorm:"not null;autoCreateTime"`
	IsDebug     bool      `json:"is_debug" gorm:"not null"`
	Comment     string    `json:"comment" gorm:"type:text"`
	Ar          string    `json:"ar" gorm:"size:256"`
	PackageName string    `json:"package_name" gorm:"size:256;not null"`
	OssKey      string    `json:"oss_key" gorm:"size:256;not null"`
	IconID      *uint     `json:"icon_id"`

	Icon *Icon `json:"icon" gorm:"foreignKey:IconID"`
}

// Icon is deduplicated by Name, the md5 of the uploaded icon payload.
type Icon struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	URL  string `json:"url" gorm:"size:255;not null"`
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`
}
