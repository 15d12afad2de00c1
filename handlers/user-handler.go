package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/superrabbithero/appmanage/auth"
	"github.com/superrabbithero/appmanage/middleware"
	"github.com/superrabbithero/appmanage/repository"
)

type credentials struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserName == "" || req.Password == "" {
		return badRequest(c, "username and password are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fail(c, repository.External(err, "failed to hash password"))
	}
	user, err := h.users.Create(c.UserContext(), req.UserName, hash)
	if err != nil {
		return fail(c, err)
	}
	return created(c, fiber.Map{"user_id": user.ID})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.UserName == "" || req.Password == "" {
		return badRequest(c, "username and password are required")
	}

	user, err := h.users.GetByUserName(c.UserContext(), req.UserName)
	if err != nil {
		return fail(c, err)
	}
	if !auth.CheckPassword(req.Password, user.Password) {
		return respondError(c, fiber.StatusUnauthorized, "invalid username or password")
	}

	tokenStr, err := h.tokens.Issue(user)
	if err != nil {
		return fail(c, repository.External(err, "failed to generate token"))
	}

	c.Cookie(&fiber.Cookie{
		Name:     "JWT",
		Value:    tokenStr,
		Expires:  time.Now().Add(h.tokens.TTL()),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return ok(c, fiber.Map{
		"token":      tokenStr,
		"user_id":    user.ID,
		"user_name":  user.UserName,
		"expires_in": int(h.tokens.TTL().Seconds()),
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "JWT",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return ok(c, nil)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, user)
}

func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	userID, found := middleware.CurrentUserID(c)
	if !found {
		return respondError(c, fiber.StatusUnauthorized, "not logged in")
	}
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return badRequest(c, "old_password and new_password are required")
	}

	user, err := h.users.Get(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}
	if !auth.CheckPassword(req.OldPassword, user.Password) {
		return respondError(c, fiber.StatusForbidden, "old password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fail(c, repository.External(err, "failed to hash password"))
	}
	if err := h.users.UpdatePassword(c.UserContext(), userID, hash); err != nil {
		return fail(c, err)
	}
	return ok(c, nil)
}
