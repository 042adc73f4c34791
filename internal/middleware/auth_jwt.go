package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTUidOnly extracts the user id from a Bearer token and stores it in
// Locals("user_id"). Requests without a header pass through anonymous;
// RequireAuth decides which routes need the id.
func JWTUidOnly(secret string) fiber.Handler {
	type uidClaims struct {
		UID string `json:"uid,omitempty"`
		jwt.RegisteredClaims
	}

	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" || !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			return c.Next()
		}
		if secret == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing JWT_SECRET")
		}

		tokenStr := strings.TrimSpace(auth[7:])
		var claims uidClaims

		token, err := jwt.ParseWithClaims(
			tokenStr,
			&claims,
			func(t *jwt.Token) (any, error) {
				// HS256 only
				if t.Method != jwt.SigningMethodHS256 {
					return nil, fiber.ErrUnauthorized
				}
				return []byte(secret), nil
			},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		uid := claims.UID
		if uid == "" {
			uid = claims.Subject
		}
		if uid != "" {
			c.Locals("user_id", uid)
		}
		return c.Next()
	}
}
