package middleware

import (
	"strings"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/superrabbithero/appmanage/auth"
)

const userKey = "user"

// TokenParser validates a bearer token and returns its user.
type TokenParser interface {
	Parse(tokenStr string) (token.User, error)
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"code": 1,
		"msg":  msg,
		"data": nil,
	})
}

// AuthMiddleware accepts a token from the Authorization header or the JWT
// cookie and stores its user in the request locals.
func AuthMiddleware(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tokenStr string
		if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
			tokenStr = strings.TrimSpace(header[len("Bearer "):])
		} else {
			tokenStr = c.Cookies("JWT")
		}

		if tokenStr == "" {
			return unauthorized(c, "missing token")
		}

		user, err := tokens.Parse(tokenStr)
		if err != nil {
			log.WithError(err).Debug("rejected token")
			return unauthorized(c, "invalid token")
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUserID returns the id of the authenticated user, or false when the
// request did not pass through AuthMiddleware.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	user, ok := c.Locals(userKey).(token.User)
	if !ok {
		return 0, false
	}
	id, err := auth.UserID(user)
	if err != nil {
		log.WithField("user", user.ID).Warn("failed to parse user id")
		return 0, false
	}
	return id, true
}
