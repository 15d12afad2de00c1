package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/superrabbithero/appmanage/repository"
)

// GetAnswerCard proxies the exam platform. Every call logs in and fetches
// the card again.
func (h *Handler) GetAnswerCard(c *fiber.Ctx) error {
	env := c.Query("env", "test1")
	cardType := c.Query("card_type", "exam")
	paperID := c.Query("paper_id", "1")

	card, err := h.answerCards.AnswerCard(c.UserContext(), env, cardType, paperID)
	if err != nil {
		return fail(c, repository.External(err, err.Error()))
	}
	return ok(c, card)
}
