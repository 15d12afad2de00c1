package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superrabbithero/appmanage/models"
)

func TestIssueStatusHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	issue, err := repo.Create(ctx, NewIssue{Content: "crash on login", Images: []string{"https://cdn/a.png"}, SubmitterID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, models.IssuePending, issue.Status)

	_, err = repo.UpdateStatus(ctx, issue.ID, StatusChange{Status: "done"})
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	claimed, err := repo.UpdateStatus(ctx, issue.ID, StatusChange{Status: models.IssueClaimed, OperatorID: "op", OperatorName: "Op", GiteeURL: "https://gitee.com/x/issues/1"})
	require.NoError(t, err)
	assert.Equal(t, models.IssueClaimed, claimed.Status)
	assert.Equal(t, "https://gitee.com/x/issues/1", claimed.GiteeURL)
	assert.Nil(t, claimed.ResolvedAt)

	ignored, err := repo.UpdateStatus(ctx, issue.ID, StatusChange{Status: models.IssueIgnored, OperatorID: "op", IgnoreReason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, "duplicate", ignored.IgnoreReason)
	assert.NotNil(t, ignored.ResolvedAt)
	assert.Equal(t, []string{"https://cdn/a.png"}, []string(ignored.Images))

	require.Len(t, ignored.History, 2)
	assert.Equal(t, models.IssuePending, ignored.History[0].OldStatus)
	assert.Equal(t, models.IssueClaimed, ignored.History[0].NewStatus)
	assert.Equal(t, models.IssueIgnored, ignored.History[1].NewStatus)
	assert.Equal(t, "duplicate", ignored.History[1].ExtraInfo["ignore_reason"])

	_, err = repo.UpdateStatus(ctx, 999, StatusChange{Status: models.IssueClaimed})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestIssueListAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	a, err := repo.Create(ctx, NewIssue{Content: "a"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, NewIssue{Content: "b"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, NewIssue{})
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	_, err = repo.UpdateStatus(ctx, a.ID, StatusChange{Status: models.IssueResolved})
	require.NoError(t, err)

	all, err := repo.List(ctx, IssueFilter{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := repo.List(ctx, IssueFilter{Status: models.IssuePending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].Content)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	ranged, err := repo.List(ctx, IssueFilter{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	past := start.Add(-time.Hour)
	ranged, err = repo.List(ctx, IssueFilter{Start: &past, End: &start})
	require.NoError(t, err)
	assert.Empty(t, ranged)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.Equal(t, KindNotFound, KindOf(repo.Delete(ctx, a.ID)))

	var records int64
	require.NoError(t, db.Model(&models.StatusChangeRecord{}).Where("issue_id = ?", a.ID).Count(&records).Error)
	assert.Zero(t, records)
}
