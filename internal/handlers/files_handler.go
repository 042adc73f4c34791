package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"feed_workspace/internal/repository"
)

// FilesHandler serves attachment blobs back out of GridFS; public references
// produced by the publish path point here.
func FilesHandler(blobs *repository.GridFSBlobStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()

		err := blobs.Download(ctx, c.Params("id"), c.Response().BodyWriter())
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "file not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return nil
	}
}
