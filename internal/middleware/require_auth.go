package middleware

import (
	"github.com/gofiber/fiber/v2"

	"feed_workspace/internal/authctx"
)

// RequireAuth gates write routes: the request must carry a user id that
// parses as an object id, anything else gets 401 before the handler runs.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := authctx.UserIDFrom(c); !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Next()
	}
}
