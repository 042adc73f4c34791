package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/internal/repository"
	"feed_workspace/model"
)

// LikeService implements the server side of the like toggle: "set the
// opposite of the stored state", idempotent per (post, user). A client that
// saw an ambiguous failure must call State before retrying instead of
// blindly re-toggling.
type LikeService struct {
	likes repository.LikeRepository
	posts repository.PostRepository
	log   *slog.Logger
}

func NewLikeService(likes repository.LikeRepository, posts repository.PostRepository, logger *slog.Logger) *LikeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LikeService{likes: likes, posts: posts, log: logger}
}

// Toggle flips the stored like for (postID, userID) and returns the new
// state. The unique like index makes the insert side idempotent; the delete
// side is naturally so.
func (s *LikeService) Toggle(ctx context.Context, postID, userID bson.ObjectID) (liked bool, err error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return false, ErrPostNotFound
	}

	dup, err := s.likes.Insert(ctx, model.Like{
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, err
	}
	if !dup {
		if err := s.likes.IncLikeCount(ctx, postID, 1); err != nil {
			s.log.Warn("like counter bump failed", "post", postID.Hex(), "err", err)
		}
		return true, nil
	}

	// already liked: toggle means unlike
	found, err := s.likes.Delete(ctx, postID, userID)
	if err != nil {
		return true, err
	}
	if found {
		if err := s.likes.IncLikeCount(ctx, postID, -1); err != nil {
			s.log.Warn("like counter bump failed", "post", postID.Hex(), "err", err)
		}
	}
	return false, nil
}

// State re-reads server truth for one (post, user) pair. Retry policy after
// an ambiguous Toggle failure: resync through here first, then decide whether
// a toggle is still wanted.
func (s *LikeService) State(ctx context.Context, postID, userID bson.ObjectID) (liked bool, likeCount int, err error) {
	liked, err = s.likes.Exists(ctx, postID, userID)
	if err != nil {
		return false, 0, err
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	return liked, post.LikeCount, nil
}
