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

func CreateCommentHandler(d *dispatch.Dispatcher, commentSvc *services.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authctx.UserIDFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		postID, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid post id"})
		}

		var body dto.CreateCommentDTO
		if err := c.BodyParser(&body); err != nil || body.Text == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "text is required"})
		}

		var parentID *bson.ObjectID
		if body.ParentID != "" {
			pid, err := bson.ObjectIDFromHex(body.ParentID)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid parentId"})
			}
			parentID = &pid
		}

		ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
		defer cancel()

		entity := postID.Hex() + "/" + userID.Hex()
		out, err := d.Dispatch(ctx, dispatch.KindCommentCreate, entity, dispatch.Mutation{
			Key: services.PostKey(postID),
			Patch: func(v any) any {
				fp, ok := v.(model.FrontPost)
				if !ok {
					return v
				}
				fp.CommentCount++
				return fp
			},
			Call: func(ctx context.Context) (any, error) {
				return commentSvc.Create(ctx, postID, userID, parentID, body.Text)
			},
			// a new comment stales the post's comment pages, not the feed
			Invalidates: []cache.Scope{services.CommentsScope(postID)},
		})
		if err != nil {
			return fail(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(toCommentResponse(out.(model.Comment)))
	}
}

func ListCommentsHandler(commentSvc *services.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "invalid post id"})
		}

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		items, next, err := commentSvc.ListByPost(ctx, postID, c.Query("cursor"), int64(c.QueryInt("limit", 20)))
		if err != nil {
			return fail(c, err)
		}

		resp := dto.CommentPageResponse{
			Items:      make([]dto.CommentResponse, 0, len(items)),
			NextCursor: next,
		}
		for _, cm := range items {
			resp.Items = append(resp.Items, toCommentResponse(cm))
		}
		return c.JSON(resp)
	}
}
