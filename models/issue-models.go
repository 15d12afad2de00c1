package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	IssuePending  = "pending"
	IssueClaimed  = "claimed"
	IssueResolved = "resolved"
	IssueIgnored  = "ignored"
)

type Issue struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	Content       string                      `json:"content" gorm:"type:text;not null"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	SubmitterID   string                      `json:"submitter_id" gorm:"size:64"`
	SubmitterName string                      `json:"submitter_name" gorm:"size:64"`
	Status        string                      `json:"status" gorm:"size:16;not null;default:'pending';index"`
	HandlerID     string                      `json:"handler_id" gorm:"size:64"`
	HandlerName   string                      `json:"handler_name" gorm:"size:64"`
	GiteeURL      string                      `json:"gitee_url" gorm:"size:256"`
	IgnoreReason  string                      `json:"ignore_reason" gorm:"type:text"`
	CreatedAt     time.Time                   `json:"created_at" gorm:"index"`
	ResolvedAt    *time.Time                  `json:"resolved_at"`

	History []StatusChangeRecord `json:"history,omitempty" gorm:"foreignKey:IssueID"`
}

type StatusChangeRecord struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	IssueID      uint              `json:"issue_id" gorm:"not null;index"`
	OldStatus    string            `json:"old_status" gorm:"size:16"`
	NewStatus    string            `json:"new_status" gorm:"size:16;not null"`
	OperatorID   string            `json:"operator_id" gorm:"size:64"`
	OperatorName string            `json:"operator_name" gorm:"size:64"`
	ExtraInfo    datatypes.JSONMap `json:"extra_info"`
	CreatedAt    time.Time         `json:"created_at"`
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{}, &Icon{}, &Package{},
		&Category{}, &Tag{}, &Document{}, &DocTag{},
		&Image{}, &DocImage{},
		&Issue{}, &StatusChangeRecord{},
	}
}
