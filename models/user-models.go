package models

import "time"

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserName  string    `json:"user_name" gorm:"size:50;not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	Phone     *string   `json:"phone" gorm:"size:20;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "user" }
