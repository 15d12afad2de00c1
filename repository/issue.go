package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/superrabbithero/appmanage/models"
)

type NewIssue struct {
	Content       string
	Images        []string
	SubmitterID   string
	SubmitterName string
}

// StatusChange moves an issue to a new status on behalf of an operator.
type StatusChange struct {
	Status       string
	OperatorID   string
	OperatorName string
	GiteeURL     string
	IgnoreReason string
}

// IssueFilter narrows an issue listing. The time range only applies when
// both ends are set.
type IssueFilter struct {
	Start  *time.Time
	End    *time.Time
	Status string
}

var issueStatuses = map[string]bool{
	models.IssuePending:  true,
	models.IssueClaimed:  true,
	models.IssueResolved: true,
	models.IssueIgnored:  true,
}

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Create(ctx context.Context, in NewIssue) (*models.Issue, error) {
	if in.Content == "" {
		return nil, InvalidArgument("content is required")
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	issue := &models.Issue{
		Content:       in.Content,
		Images:        datatypes.JSONSlice[string](images),
		SubmitterID:   in.SubmitterID,
		SubmitterName: in.SubmitterName,
		Status:        models.IssuePending,
	}
	if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
		return nil, wrap(err, "failed to create issue")
	}
	return issue, nil
}

func (r *IssueRepository) Get(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&issue, id).Error
	if err != nil {
		return nil, notFoundOr(err, NotFound("issue %d not found", id), "failed to load issue")
	}
	return &issue, nil
}

func (r *IssueRepository) List(ctx context.Context, f IssueFilter) ([]models.Issue, error) {
	q := r.db.WithContext(ctx).Model(&models.Issue{})
	if f.Start != nil && f.End != nil {
		q = q.Where("created_at BETWEEN ? AND ?", *f.Start, *f.End)
	}
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}

	issues := make([]models.Issue, 0)
	if err := q.Order("created_at DESC, id DESC").Find(&issues).Error; err != nil {
		return nil, wrap(err, "failed to list issues")
	}
	return issues, nil
}

// UpdateStatus records the transition and applies it in one transaction.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id uint, change StatusChange) (*models.Issue, error) {
	if !issueStatuses[change.Status] {
		return nil, InvalidArgument("unknown status %q", change.Status)
	}

	var issue models.Issue
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&issue, id).Error; err != nil {
			return notFoundOr(err, NotFound("issue %d not found", id), "failed to load issue")
		}

		record := models.StatusChangeRecord{
			IssueID:      id,
			OldStatus:    issue.Status,
			NewStatus:    change.Status,
			OperatorID:   change.OperatorID,
			OperatorName: change.OperatorName,
			ExtraInfo: datatypes.JSONMap{
				"gitee_url":     change.GiteeURL,
				"ignore_reason": change.IgnoreReason,
			},
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		cols := map[string]interface{}{
			"status":       change.Status,
			"handler_id":   change.OperatorID,
			"handler_name": change.OperatorName,
		}
		switch change.Status {
		case models.IssueClaimed:
			cols["gitee_url"] = change.GiteeURL
		case models.IssueResolved:
			cols["gitee_url"] = change.GiteeURL
			cols["resolved_at"] = time.Now()
		case models.IssueIgnored:
			cols["ignore_reason"] = change.IgnoreReason
			cols["resolved_at"] = time.Now()
		}
		return tx.Model(&issue).Updates(cols).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to update issue status")
	}
	return r.Get(ctx, id)
}

func (r *IssueRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Issue{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFound("issue %d not found", id)
		}
		return tx.Where("issue_id = ?", id).Delete(&models.StatusChangeRecord{}).Error
	})
	return wrap(err, "failed to delete issue")
}
