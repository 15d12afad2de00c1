package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superrabbithero/appmanage/models"
)

func TestIssueWorkflow(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/issues", map[string]interface{}{"content": ""}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := s.do(t, http.MethodPost, "/api/issues", map[string]interface{}{
		"content":        "crash on launch",
		"images":         []string{"https://cdn/a.png"},
		"submitter_id":   "u1",
		"submitter_name": "alice",
	}, "")
	require.Equal(t, http.StatusCreated, status, env.Msg)
	var issue models.Issue
	decode(t, env, &issue)
	assert.Equal(t, models.IssuePending, issue.Status)

	status, _ = s.do(t, http.MethodPut, "/api/issues/1/status", map[string]string{"status": "claimed"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPut, "/api/issues/1/status", map[string]string{
		"status": "bogus", "operator_id": "op", "operator_name": "Op",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodPut, "/api/issues/1/status", map[string]string{
		"status": "resolved", "operator_id": "op", "operator_name": "Op", "gitee_url": "https://gitee.com/x/1",
	}, "")
	require.Equal(t, http.StatusOK, status, env.Msg)
	decode(t, env, &issue)
	assert.Equal(t, models.IssueResolved, issue.Status)
	assert.Equal(t, "Op", issue.HandlerName)
	assert.NotNil(t, issue.ResolvedAt)
	require.Len(t, issue.History, 1)
	assert.Equal(t, models.IssuePending, issue.History[0].OldStatus)

	status, env = s.do(t, http.MethodGet, "/api/issues?status=pending", nil, "")
	require.Equal(t, http.StatusOK, status)
	var listed []models.Issue
	decode(t, env, &listed)
	assert.Empty(t, listed)

	status, _ = s.do(t, http.MethodGet, "/api/issues?start_time=yesterday", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodDelete, "/api/issues/1", nil, "")
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/issues/1", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestImportIssues(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/issues/fetch", map[string]interface{}{
		"items": []map[string]interface{}{
			{"description": "one"},
			{"description": "two", "source": "crawler"},
		},
	}, "")
	require.Equal(t, http.StatusCreated, status, env.Msg)
	var res struct {
		Items []models.Issue `json:"items"`
		Count int            `json:"count"`
	}
	decode(t, env, &res)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, "System Fetch", res.Items[0].SubmitterName)
	assert.Equal(t, "crawler", res.Items[1].SubmitterName)
}

func TestDingTalkWebhook(t *testing.T) {
	s := newTestServer(t)

	webhook := func(content string) map[string]interface{} {
		return map[string]interface{}{
			"text":       map[string]string{"content": content},
			"senderId":   "ding-1",
			"senderNick": "bob",
		}
	}

	// The webhook replies in its own format, so decode the raw body.
	req := func(content string) map[string]interface{} {
		raw, err := json.Marshal(webhook(content))
		require.NoError(t, err)
		resp := s.raw(t, http.MethodPost, "/api/issues/dingtalk/webhook", raw)
		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(resp, &out))
		return out
	}

	assert.Equal(t, "ignored", req("hello there")["message"])

	reply := req("%bug  login button broken")
	assert.Equal(t, "markdown", reply["msgtype"])

	var issue models.Issue
	require.NoError(t, s.db.First(&issue).Error)
	assert.Equal(t, "login button broken", issue.Content)
	assert.Equal(t, "bob", issue.SubmitterName)
	assert.Equal(t, "ding-1", issue.SubmitterID)
}
