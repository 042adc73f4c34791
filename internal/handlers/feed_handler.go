package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"feed_workspace/dto"
	"feed_workspace/internal/cursor"
	"feed_workspace/services"
)

func FeedHandler(paginator *services.FeedPaginator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var page int64
		if raw := c.Query("cursor"); raw != "" {
			p, err := cursor.DecodeFeedCursor(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid cursor"})
			}
			page = p
		}

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		ids, next, err := paginator.NextPage(ctx, page)
		if err != nil {
			return fail(c, err)
		}

		resp := dto.FeedPageResponse{PostIDs: make([]string, 0, len(ids))}
		for _, id := range ids {
			resp.PostIDs = append(resp.PostIDs, id.Hex())
		}
		if next != nil {
			enc := cursor.EncodeFeedCursor(*next)
			resp.NextCursor = &enc
		}
		return c.JSON(resp)
	}
}
