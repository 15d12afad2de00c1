package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/superrabbithero/appmanage/repository"
)

const bugPrefix = "%bug"

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, repository.InvalidArgument("invalid time %q", v)
}

func (h *Handler) ListIssues(c *fiber.Ctx) error {
	start, err := parseTime(c.Query("start_time"))
	if err != nil {
		return fail(c, err)
	}
	end, err := parseTime(c.Query("end_time"))
	if err != nil {
		return fail(c, err)
	}

	issues, err := h.issues.List(c.UserContext(), repository.IssueFilter{Start: start, End: end, Status: c.Query("status")})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, issues)
}

func (h *Handler) GetIssue(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	issue, err := h.issues.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, issue)
}

type newIssueRequest struct {
	Content       string   `json:"content"`
	Images        []string `json:"images"`
	SubmitterID   string   `json:"submitter_id"`
	SubmitterName string   `json:"submitter_name"`
}

func (h *Handler) CreateIssue(c *fiber.Ctx) error {
	var req newIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	issue, err := h.issues.Create(c.UserContext(), repository.NewIssue(req))
	if err != nil {
		return fail(c, err)
	}
	return created(c, issue)
}

// ImportIssues creates one issue per fetched item.
func (h *Handler) ImportIssues(c *fiber.Ctx) error {
	var req struct {
		Items []struct {
			Description string   `json:"description"`
			Images      []string `json:"images"`
			Source      string   `json:"source"`
		} `json:"items"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	imported := make([]interface{}, 0, len(req.Items))
	for _, item := range req.Items {
		source := item.Source
		if source == "" {
			source = "System Fetch"
		}
		issue, err := h.issues.Create(c.UserContext(), repository.NewIssue{
			Content:       item.Description,
			Images:        item.Images,
			SubmitterName: source,
		})
		if err != nil {
			return fail(c, err)
		}
		imported = append(imported, issue)
	}
	return created(c, fiber.Map{"items": imported, "count": len(imported)})
}

func (h *Handler) UpdateIssueStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req struct {
		Status       string `json:"status"`
		OperatorID   string `json:"operator_id"`
		OperatorName string `json:"operator_name"`
		GiteeURL     string `json:"gitee_url"`
		IgnoreReason string `json:"ignore_reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Status == "" || req.OperatorID == "" || req.OperatorName == "" {
		return badRequest(c, "status, operator_id and operator_name are required")
	}

	issue, err := h.issues.UpdateStatus(c.UserContext(), id, repository.StatusChange(req))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, issue)
}

func (h *Handler) DeleteIssue(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.issues.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"id": id})
}

// DingTalkWebhook records group messages starting with "%bug" as issues and
// answers with a markdown receipt the robot posts back to the group.
// The reply is in DingTalk's own format, not the usual envelope.
func (h *Handler) DingTalkWebhook(c *fiber.Ctx) error {
	var req struct {
		Text struct {
			Content string `json:"content"`
		} `json:"text"`
		SenderID   string `json:"senderId"`
		SenderNick string `json:"senderNick"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	content := strings.TrimSpace(req.Text.Content)
	if !strings.HasPrefix(content, bugPrefix) {
		return c.JSON(fiber.Map{"message": "ignored"})
	}
	content = strings.TrimSpace(strings.TrimPrefix(content, bugPrefix))

	issue, err := h.issues.Create(c.UserContext(), repository.NewIssue{
		Content:       content,
		SubmitterID:   req.SenderID,
		SubmitterName: req.SenderNick,
	})
	if err != nil {
		return fail(c, err)
	}

	text := fmt.Sprintf("### Bug 已记录\n\n**ID:** #%d\n**提交人:** @%s\n**内容:** %s\n\n> 状态: 待处理",
		issue.ID, req.SenderNick, issue.Content)
	return c.JSON(fiber.Map{
		"msgtype":  "markdown",
		"markdown": fiber.Map{"title": "Bug已记录", "text": text},
		"at":       fiber.Map{"atUserIds": []string{req.SenderID}, "isAtAll": false},
	})
}
