package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/internal/cache"
	"feed_workspace/internal/repository"
	"feed_workspace/model"
)

// ScopePostList labels every cached feed page; creating or deleting a post
// invalidates the whole scope so no stale page is ever served.
const ScopePostList cache.Scope = "post-list"

func FeedPageKey(page int64) cache.Key {
	return cache.Key(fmt.Sprintf("feed:page:%d", page))
}

func PostKey(id bson.ObjectID) cache.Key {
	return cache.Key("post:" + id.Hex())
}

func PostScope(id bson.ObjectID) cache.Scope {
	return cache.Scope("post:" + id.Hex())
}

// FeedPaginator assembles a forward-growing, deduplicated, descending feed of
// post ids. Pages are offset windows of pageSize posts; rows land in the
// cache both per page (scoped "post-list") and per post.
type FeedPaginator struct {
	posts    repository.PostRepository
	cache    *cache.Store
	pageSize int64
	log      *slog.Logger

	mu   sync.Mutex
	seen map[bson.ObjectID]struct{}
}

func NewFeedPaginator(posts repository.PostRepository, store *cache.Store, pageSize int64, logger *slog.Logger) *FeedPaginator {
	if pageSize <= 0 {
		pageSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedPaginator{
		posts:    posts,
		cache:    store,
		pageSize: pageSize,
		log:      logger,
		seen:     make(map[bson.ObjectID]struct{}),
	}
}

// NextPage returns the ids of page `page` and the next page index, or
// next=nil at the end of the feed. Page zero restarts the emission sequence,
// so a refetch after invalidation starts a fresh dedup window.
func (f *FeedPaginator) NextPage(ctx context.Context, page int64) (ids []bson.ObjectID, next *int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if page == 0 {
		f.seen = make(map[bson.ObjectID]struct{})
	}

	rows, err := f.pageRows(ctx, page)
	if err != nil {
		return nil, nil, err
	}

	ids = make([]bson.ObjectID, 0, len(rows))
	for _, post := range rows {
		if _, dup := f.seen[post.ID]; dup {
			continue
		}
		f.seen[post.ID] = struct{}{}
		ids = append(ids, post.ID)
	}

	if int64(len(rows)) == f.pageSize {
		n := page + 1
		next = &n
	}
	return ids, next, nil
}

func (f *FeedPaginator) pageRows(ctx context.Context, page int64) ([]model.Post, error) {
	key := FeedPageKey(page)
	if v, ok := f.cache.Read(key); ok {
		if rows, ok := v.([]model.Post); ok {
			return rows, nil
		}
	}

	from := page * f.pageSize
	rows, err := f.posts.List(ctx, repository.RangeQuery{From: from, To: from + f.pageSize - 1})
	if err != nil {
		return nil, err
	}

	f.cache.Write(key, rows, ScopePostList)
	f.log.Debug("feed page fetched", "page", page, "rows", len(rows))
	return rows, nil
}
