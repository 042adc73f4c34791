package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/internal/cache"
	"feed_workspace/model"
)

func TestViewGetReadsThroughCache(t *testing.T) {
	posts := newFakePostRepo()
	likes := newFakeLikeRepo(posts)
	store := cache.New()
	view := NewPostViewService(posts, likes, store, nil)

	post, err := posts.Insert(context.Background(), model.Post{
		UserID:    bson.NewObjectID(),
		PostText:  "cached",
		LikeCount: 1,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	user := bson.NewObjectID()
	_, err = likes.Insert(context.Background(), model.Like{PostID: post.ID, UserID: user})
	require.NoError(t, err)

	fp, err := view.Get(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, "cached", fp.PostText)
	require.True(t, fp.IsLikedBy(user.Hex()))

	// a later record-store change is invisible until the scope is dropped
	_, err = posts.Update(context.Background(), post.ID, bson.M{"post_text": "edited"})
	require.NoError(t, err)

	fp, err = view.Get(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, "cached", fp.PostText)

	store.Invalidate(PostScope(post.ID))
	fp, err = view.Get(context.Background(), post.ID)
	require.NoError(t, err)
	require.Equal(t, "edited", fp.PostText)
}

func TestViewGetUnknownPost(t *testing.T) {
	posts := newFakePostRepo()
	view := NewPostViewService(posts, newFakeLikeRepo(posts), cache.New(), nil)

	_, err := view.Get(context.Background(), bson.NewObjectID())
	require.ErrorIs(t, err, ErrPostNotFound)
}
