package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/internal/cache"
	"feed_workspace/internal/cursor"
	"feed_workspace/internal/repository"
	"feed_workspace/model"
)

// CommentsScope labels every cached comment page of one post; creating a
// comment invalidates the scope so the new row shows up on the next read.
func CommentsScope(postID bson.ObjectID) cache.Scope {
	return cache.Scope("comments:" + postID.Hex())
}

func commentPageKey(postID bson.ObjectID, cursorStr string, limit int64) cache.Key {
	return cache.Key(fmt.Sprintf("comments:%s:%s:%d", postID.Hex(), cursorStr, limit))
}

// commentPage is the cached unit of ListByPost: one page plus its forward
// cursor.
type commentPage struct {
	items []model.Comment
	next  *string
}

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	cache    *cache.Store
	log      *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, store *cache.Store, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{comments: comments, posts: posts, cache: store, log: logger}
}

// Create inserts a comment, or a one-level-deep reply when parentID is set.
// A reply's parent must exist, belong to the same post, and be top-level.
func (s *CommentService) Create(ctx context.Context, postID, userID bson.ObjectID, parentID *bson.ObjectID, text string) (model.Comment, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Comment{}, ErrPostNotFound
		}
		return model.Comment{}, err
	}

	if parentID != nil {
		parent, err := s.comments.FindByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.Comment{}, ErrParentCommentNotFound
			}
			return model.Comment{}, err
		}
		if parent.PostID != postID {
			return model.Comment{}, ErrParentCommentMismatch
		}
		if parent.ParentID != nil {
			return model.Comment{}, ErrReplyToReply
		}
	}

	created, err := s.comments.Insert(ctx, model.Comment{
		PostID:    postID,
		ParentID:  parentID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return model.Comment{}, err
	}

	if err := s.comments.IncCommentCount(ctx, postID, 1); err != nil {
		s.log.Warn("comment counter bump failed", "post", postID.Hex(), "err", err)
	}
	return created, nil
}

// ListByPost pages comments newest-first behind an opaque cursor. Pages land
// in the cache under the post's comment scope until a new comment drops them.
func (s *CommentService) ListByPost(ctx context.Context, postID bson.ObjectID, cursorStr string, limit int64) ([]model.Comment, *string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	key := commentPageKey(postID, cursorStr, limit)
	if v, ok := s.cache.Read(key); ok {
		if pg, ok := v.(commentPage); ok {
			return pg.items, pg.next, nil
		}
	}

	var before time.Time
	var beforeID bson.ObjectID
	if cursorStr != "" {
		t, oid, err := cursor.DecodeCommentCursor(cursorStr)
		if err != nil {
			return nil, nil, err
		}
		before, beforeID = t, oid
	}

	items, err := s.comments.ListByPost(ctx, postID, before, beforeID, limit+1)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if int64(len(items)) == limit+1 {
		items = items[:limit]
		last := items[len(items)-1]
		c := cursor.EncodeCommentCursor(last.CreatedAt, last.ID)
		next = &c
	}

	s.cache.Write(key, commentPage{items: items, next: next}, CommentsScope(postID))
	return items, next, nil
}
