package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"feed_workspace/dto"
	"feed_workspace/internal/cursor"
	"feed_workspace/internal/dispatch"
	"feed_workspace/model"
	"feed_workspace/services"
)

// statusFor maps the error taxonomy onto HTTP statuses. Everything surfaces
// as a single human-readable message; internal cache keys and tokens never
// leave the core.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrConflictingMutation):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrParentCommentNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrParentCommentMismatch),
		errors.Is(err, services.ErrReplyToReply),
		errors.Is(err, cursor.ErrMalformed):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrAttachmentUploadFailed),
		errors.Is(err, services.ErrRecordCreateFailed),
		errors.Is(err, services.ErrRecordUpdateFailed),
		errors.Is(err, services.ErrRecordDeleteFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(dto.ErrorResponse{Message: err.Error()})
}

func toPostResponse(p model.Post, isLiked bool) dto.PostResponse {
	return dto.PostResponse{
		ID:           p.ID.Hex(),
		UserID:       p.UserID.Hex(),
		PostText:     p.PostText,
		ImageURLs:    p.ImageURLs,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		IsLiked:      isLiked,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

func toCommentResponse(cm model.Comment) dto.CommentResponse {
	out := dto.CommentResponse{
		ID:        cm.ID.Hex(),
		PostID:    cm.PostID.Hex(),
		UserID:    cm.UserID.Hex(),
		Text:      cm.Text,
		CreatedAt: cm.CreatedAt.Format(time.RFC3339),
	}
	if cm.ParentID != nil {
		out.ParentID = cm.ParentID.Hex()
	}
	return out
}
