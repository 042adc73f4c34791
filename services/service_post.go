package services

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/internal/cache"
	"feed_workspace/internal/repository"
	"feed_workspace/model"
)

// PostViewService is the read-through path for single posts: cache hit wins,
// misses are fetched and cached under the post's own scope.
type PostViewService struct {
	posts repository.PostRepository
	likes repository.LikeRepository
	cache *cache.Store
	log   *slog.Logger
}

func NewPostViewService(posts repository.PostRepository, likes repository.LikeRepository, store *cache.Store, logger *slog.Logger) *PostViewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostViewService{posts: posts, likes: likes, cache: store, log: logger}
}

func (s *PostViewService) Get(ctx context.Context, id bson.ObjectID) (model.FrontPost, error) {
	key := PostKey(id)
	if v, ok := s.cache.Read(key); ok {
		if fp, ok := v.(model.FrontPost); ok {
			return fp, nil
		}
	}

	fp, err := s.Fetch(ctx, id)
	if err != nil {
		return model.FrontPost{}, err
	}
	s.cache.Write(key, fp, PostScope(id))
	return fp, nil
}

// Fetch rebuilds the view from the stores, bypassing the cache. Mutations
// that settle with a server value use it to hand the dispatcher fresh truth.
func (s *PostViewService) Fetch(ctx context.Context, id bson.ObjectID) (model.FrontPost, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.FrontPost{}, ErrPostNotFound
		}
		return model.FrontPost{}, err
	}
	likedBy, err := s.likes.ListUserIDs(ctx, id)
	if err != nil {
		return model.FrontPost{}, err
	}
	return model.FrontPostOf(post, likedBy), nil
}
