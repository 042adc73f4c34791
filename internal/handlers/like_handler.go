package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/dto"
	"feed_workspace/internal/authctx"
	"feed_workspace/internal/dispatch"
	"feed_workspace/model"
	"feed_workspace/services"
)

// LikeToggleHandler flips the viewer's like on a post. The cached view is
// patched optimistically (flag and counter in the same patch) and rolled back
// if the toggle fails; a toggle already in flight for the same (post, viewer)
// is not re-issued.
func LikeToggleHandler(d *dispatch.Dispatcher, likeSvc *services.LikeService, view *services.PostViewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authctx.UserIDFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		var body dto.LikeRequestDTO
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid body"})
		}
		postID, err := bson.ObjectIDFromHex(body.PostID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid postId"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		// make sure the view is cached so the optimistic patch has a value
		if _, err := view.Get(ctx, postID); err != nil {
			return fail(c, err)
		}

		uid := userID.Hex()
		entity := postID.Hex() + "/" + uid

		out, err := d.Dispatch(ctx, dispatch.KindLikeToggle, entity, dispatch.Mutation{
			Key: services.PostKey(postID),
			Patch: func(v any) any {
				fp, ok := v.(model.FrontPost)
				if !ok {
					return v
				}
				return fp.WithLikeToggled(uid)
			},
			// commits the re-read view: server truth replaces the
			// optimistic guess even when another session toggled meanwhile
			Call: func(ctx context.Context) (any, error) {
				if _, err := likeSvc.Toggle(ctx, postID, userID); err != nil {
					return nil, err
				}
				return view.Fetch(ctx, postID)
			},
			UseServerValue: true,
		})
		if err != nil {
			if errors.Is(err, dispatch.ErrConflictingMutation) {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Message: "like toggle already in flight"})
			}
			return fail(c, err)
		}

		fp := out.(model.FrontPost)
		return c.JSON(dto.LikeResponse{
			PostID:    postID.Hex(),
			IsLiked:   fp.IsLikedBy(uid),
			LikeCount: fp.LikeCount,
		})
	}
}
