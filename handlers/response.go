package handler

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/superrabbithero/appmanage/repository"
)

// Every response is wrapped as {code, msg, data}; code 0 means success.
const (
	codeOK   = 0
	codeFail = 1
)

func ok(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": codeOK,
		"msg":  "success",
		"data": data,
	})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code": codeOK,
		"msg":  "created",
		"data": data,
	})
}

func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"code": codeFail,
		"msg":  msg,
		"data": nil,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return respondError(c, fiber.StatusBadRequest, msg)
}

func statusOf(kind repository.Kind) int {
	switch kind {
	case repository.KindInvalidArgument:
		return fiber.StatusBadRequest
	case repository.KindNotFound:
		return fiber.StatusNotFound
	case repository.KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// fail maps err to its status code. Server side failures are logged and
// their details kept out of the response.
func fail(c *fiber.Ctx, err error) error {
	kind := repository.KindOf(err)
	status := statusOf(kind)
	if status >= fiber.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"kind":   kind.String(),
		}).WithError(err).Error("request failed")
	}
	return respondError(c, status, repository.Message(err))
}
