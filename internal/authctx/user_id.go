package authctx

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserIDFrom returns the authenticated user id injected by the JWT
// middleware. The core treats it as always available once a write is allowed
// to run; unauthenticated callers are rejected upstream by RequireAuth.
func UserIDFrom(c *fiber.Ctx) (bson.ObjectID, bool) {
	v := c.Locals("user_id")
	if v == nil {
		return bson.NilObjectID, false
	}
	s, ok := v.(string)
	if !ok {
		return bson.NilObjectID, false
	}
	oid, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return bson.NilObjectID, false
	}
	return oid, true
}
