package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/internal/cache"
	"feed_workspace/internal/dispatch"
	"feed_workspace/model"
)

func TestToggleSetsOppositeOfStoredState(t *testing.T) {
	posts := newFakePostRepo()
	likes := newFakeLikeRepo(posts)
	svc := NewLikeService(likes, posts, nil)

	post, err := posts.Insert(context.Background(), model.Post{
		UserID:    bson.NewObjectID(),
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	user := bson.NewObjectID()

	liked, err := svc.Toggle(context.Background(), post.ID, user)
	require.NoError(t, err)
	require.True(t, liked)

	liked, count, err := svc.State(context.Background(), post.ID, user)
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, 1, count)

	liked, err = svc.Toggle(context.Background(), post.ID, user)
	require.NoError(t, err)
	require.False(t, liked)

	liked, count, err = svc.State(context.Background(), post.ID, user)
	require.NoError(t, err)
	require.False(t, liked)
	require.Zero(t, count)
}

func TestToggleUnknownPost(t *testing.T) {
	posts := newFakePostRepo()
	svc := NewLikeService(newFakeLikeRepo(posts), posts, nil)

	_, err := svc.Toggle(context.Background(), bson.NewObjectID(), bson.NewObjectID())
	require.ErrorIs(t, err, ErrPostNotFound)
}

// A double tap while the first toggle is still on the wire must produce one
// network call and leave the cached view liked with the counter bumped once.
func TestDoubleTapTogglesOnce(t *testing.T) {
	posts := newFakePostRepo()
	likes := newFakeLikeRepo(posts)
	svc := NewLikeService(likes, posts, nil)
	store := cache.New()
	view := NewPostViewService(posts, likes, store, nil)
	d := dispatch.New(store, nil)

	post, err := posts.Insert(context.Background(), model.Post{
		UserID:    bson.NewObjectID(),
		LikeCount: 2,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	user := bson.NewObjectID()
	uid := user.Hex()

	store.Write(PostKey(post.ID), model.FrontPost{
		ID:        post.ID,
		LikeCount: 2,
		LikedBy:   []string{"someone-else"},
	}, PostScope(post.ID))

	entity := post.ID.Hex() + "/" + uid
	gate := make(chan struct{})
	firstEntered := make(chan struct{})
	calls := 0
	var callMu sync.Mutex

	mutation := func() dispatch.Mutation {
		return dispatch.Mutation{
			Key: PostKey(post.ID),
			Patch: func(v any) any {
				fp, ok := v.(model.FrontPost)
				if !ok {
					return v
				}
				return fp.WithLikeToggled(uid)
			},
			Call: func(ctx context.Context) (any, error) {
				callMu.Lock()
				calls++
				callMu.Unlock()
				close(firstEntered)
				<-gate
				if _, err := svc.Toggle(ctx, post.ID, user); err != nil {
					return nil, err
				}
				return view.Fetch(ctx, post.ID)
			},
			UseServerValue: true,
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstLiked any
	var firstErr error
	go func() {
		defer wg.Done()
		firstLiked, firstErr = d.Dispatch(context.Background(), dispatch.KindLikeToggle, entity, mutation())
	}()

	<-firstEntered

	// the optimistic patch is already visible while the call is in flight
	v, ok := store.Read(PostKey(post.ID))
	require.True(t, ok)
	fp := v.(model.FrontPost)
	require.True(t, fp.IsLikedBy(uid))
	require.Equal(t, 3, fp.LikeCount)

	// second tap for the same (post, viewer) is rejected, not queued
	_, err = d.Dispatch(context.Background(), dispatch.KindLikeToggle, entity, mutation())
	require.ErrorIs(t, err, dispatch.ErrConflictingMutation)

	close(gate)
	wg.Wait()
	require.NoError(t, firstErr)
	require.True(t, firstLiked.(model.FrontPost).IsLikedBy(uid))
	require.Equal(t, 1, calls)

	v, ok = store.Read(PostKey(post.ID))
	require.True(t, ok)
	fp = v.(model.FrontPost)
	require.True(t, fp.IsLikedBy(uid))
	require.Equal(t, 3, fp.LikeCount)

	// server truth agrees with the committed view
	liked, count, err := svc.State(context.Background(), post.ID, user)
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, 3, count)
}

// A stale cached view must not survive the commit: the settled value is the
// re-read server state, counting toggles made from other sessions.
func TestToggleCommitsServerTruth(t *testing.T) {
	posts := newFakePostRepo()
	likes := newFakeLikeRepo(posts)
	svc := NewLikeService(likes, posts, nil)
	store := cache.New()
	view := NewPostViewService(posts, likes, store, nil)
	d := dispatch.New(store, nil)

	post, err := posts.Insert(context.Background(), model.Post{
		UserID:    bson.NewObjectID(),
		LikeCount: 5,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	user := bson.NewObjectID()
	uid := user.Hex()

	// cached view lags the record store by three likes
	store.Write(PostKey(post.ID), model.FrontPost{ID: post.ID, LikeCount: 2}, PostScope(post.ID))

	_, err = d.Dispatch(context.Background(), dispatch.KindLikeToggle, post.ID.Hex()+"/"+uid, dispatch.Mutation{
		Key: PostKey(post.ID),
		Patch: func(v any) any {
			fp, ok := v.(model.FrontPost)
			if !ok {
				return v
			}
			return fp.WithLikeToggled(uid)
		},
		Call: func(ctx context.Context) (any, error) {
			if _, err := svc.Toggle(ctx, post.ID, user); err != nil {
				return nil, err
			}
			return view.Fetch(ctx, post.ID)
		},
		UseServerValue: true,
	})
	require.NoError(t, err)

	v, ok := store.Read(PostKey(post.ID))
	require.True(t, ok)
	fp := v.(model.FrontPost)
	require.True(t, fp.IsLikedBy(uid))
	require.Equal(t, 6, fp.LikeCount)

	_, count, err := svc.State(context.Background(), post.ID, user)
	require.NoError(t, err)
	require.Equal(t, count, fp.LikeCount)
}

func TestFailedToggleRollsBackView(t *testing.T) {
	posts := newFakePostRepo()
	likes := newFakeLikeRepo(posts)
	svc := NewLikeService(likes, posts, nil)
	store := cache.New()
	d := dispatch.New(store, nil)

	post, err := posts.Insert(context.Background(), model.Post{
		UserID:    bson.NewObjectID(),
		LikeCount: 7,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	user := bson.NewObjectID()
	uid := user.Hex()

	before := model.FrontPost{ID: post.ID, LikeCount: 7}
	store.Write(PostKey(post.ID), before, PostScope(post.ID))

	likes.insertErr = context.DeadlineExceeded

	_, err = d.Dispatch(context.Background(), dispatch.KindLikeToggle, post.ID.Hex()+"/"+uid, dispatch.Mutation{
		Key: PostKey(post.ID),
		Patch: func(v any) any {
			fp, ok := v.(model.FrontPost)
			if !ok {
				return v
			}
			return fp.WithLikeToggled(uid)
		},
		Call: func(ctx context.Context) (any, error) {
			return svc.Toggle(ctx, post.ID, user)
		},
	})
	require.Error(t, err)

	v, ok := store.Read(PostKey(post.ID))
	require.True(t, ok)
	require.Equal(t, before, v.(model.FrontPost))
}
