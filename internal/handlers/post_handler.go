package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/dto"
	"feed_workspace/internal/authctx"
	"feed_workspace/internal/cache"
	"feed_workspace/internal/dispatch"
	"feed_workspace/model"
	"feed_workspace/services"
)

func GetPostHandler(view *services.PostViewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid post id"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		fp, err := view.Get(ctx, id)
		if err != nil {
			return fail(c, err)
		}

		viewer := ""
		if uid, ok := authctx.UserIDFrom(c); ok {
			viewer = uid.Hex()
		}
		return c.JSON(dto.PostResponse{
			ID:           fp.ID.Hex(),
			UserID:       fp.UserID.Hex(),
			PostText:     fp.PostText,
			ImageURLs:    fp.ImageURLs,
			LikeCount:    fp.LikeCount,
			CommentCount: fp.CommentCount,
			IsLiked:      viewer != "" && fp.IsLikedBy(viewer),
			CreatedAt:    fp.CreatedAt.Format(time.RFC3339),
		})
	}
}

func UpdatePostHandler(d *dispatch.Dispatcher, pub *services.Publisher, view *services.PostViewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authctx.UserIDFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid post id"})
		}

		var body dto.UpdatePostDTO
		if err := c.BodyParser(&body); err != nil || body.PostText == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "postText is required"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()

		fp, err := view.Get(ctx, id)
		if err != nil {
			return fail(c, err)
		}
		if fp.UserID != userID {
			return fiber.NewError(fiber.StatusForbidden, "not the author")
		}

		likedBy := fp.LikedBy
		out, err := d.Dispatch(ctx, dispatch.KindPostUpdate, id.Hex(), dispatch.Mutation{
			Key: services.PostKey(id),
			Patch: func(v any) any {
				cur, ok := v.(model.FrontPost)
				if !ok {
					return v
				}
				cur.PostText = body.PostText
				return cur
			},
			Call: func(ctx context.Context) (any, error) {
				updated, err := pub.UpdatePost(ctx, id, bson.M{"post_text": body.PostText})
				if err != nil {
					return nil, err
				}
				return model.FrontPostOf(updated, likedBy), nil
			},
			UseServerValue: true,
		})
		if err != nil {
			return fail(c, err)
		}

		updated := out.(model.FrontPost)
		return c.JSON(dto.PostResponse{
			ID:           updated.ID.Hex(),
			UserID:       updated.UserID.Hex(),
			PostText:     updated.PostText,
			ImageURLs:    updated.ImageURLs,
			LikeCount:    updated.LikeCount,
			CommentCount: updated.CommentCount,
			IsLiked:      updated.IsLikedBy(userID.Hex()),
			CreatedAt:    updated.CreatedAt.Format(time.RFC3339),
		})
	}
}

func DeletePostHandler(d *dispatch.Dispatcher, pub *services.Publisher, view *services.PostViewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authctx.UserIDFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid post id"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()

		fp, err := view.Get(ctx, id)
		if err != nil {
			return fail(c, err)
		}
		if fp.UserID != userID {
			return fiber.NewError(fiber.StatusForbidden, "not the author")
		}

		_, err = d.Dispatch(ctx, dispatch.KindPostDelete, id.Hex(), dispatch.Mutation{
			Call: func(ctx context.Context) (any, error) {
				return nil, pub.DeletePost(ctx, id)
			},
			Invalidates: []cache.Scope{services.ScopePostList, services.PostScope(id)},
		})
		if err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
