package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"feed_workspace/dto"
	"feed_workspace/internal/authctx"
	"feed_workspace/internal/cache"
	"feed_workspace/internal/dispatch"
	"feed_workspace/model"
	"feed_workspace/services"
)

// CreatePostHandler accepts multipart form data: a postText field plus zero
// or more image file parts under "images".
func CreatePostHandler(d *dispatch.Dispatcher, pub *services.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authctx.UserIDFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		content := c.FormValue("postText")
		if content == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "postText is required"})
		}

		var attachments []services.Attachment
		if form, err := c.MultipartForm(); err == nil && form != nil {
			for _, fh := range form.File["images"] {
				f, err := fh.Open()
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "unreadable image: " + fh.Filename})
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "unreadable image: " + fh.Filename})
				}
				attachments = append(attachments, services.Attachment{Name: fh.Filename, Data: data})
			}
		}

		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()

		// double-submit protection: one publish in flight per author
		out, err := d.Dispatch(ctx, dispatch.KindPostCreate, userID.Hex(), dispatch.Mutation{
			Call: func(ctx context.Context) (any, error) {
				return pub.PublishPost(ctx, userID, content, attachments)
			},
			Invalidates: []cache.Scope{services.ScopePostList},
		})
		if err != nil {
			return fail(c, err)
		}

		post := out.(model.Post)
		return c.Status(fiber.StatusCreated).JSON(toPostResponse(post, false))
	}
}
