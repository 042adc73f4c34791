package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/internal/repository"
	"feed_workspace/model"
)

// in-memory stand-ins for the mongo-backed repositories

type fakePostRepo struct {
	mu        sync.Mutex
	rows      map[bson.ObjectID]model.Post
	insertErr error
	updateErr error
	deleteErr error
	findErr   error
	listCalls int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{rows: make(map[bson.ObjectID]model.Post)}
}

func (r *fakePostRepo) Insert(_ context.Context, post model.Post) (model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return model.Post{}, r.insertErr
	}
	post.ID = bson.NewObjectID()
	r.rows[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Update(_ context.Context, id bson.ObjectID, fields bson.M) (model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return model.Post{}, r.updateErr
	}
	post, ok := r.rows[id]
	if !ok {
		return model.Post{}, repository.ErrNotFound
	}
	if v, ok := fields["post_text"].(string); ok {
		post.PostText = v
	}
	if v, ok := fields["image_urls"].([]string); ok {
		post.ImageURLs = v
	}
	if v, ok := fields["updated_at"].(time.Time); ok {
		post.UpdatedAt = v
	}
	r.rows[id] = post
	return post, nil
}

func (r *fakePostRepo) Delete(_ context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakePostRepo) FindByID(_ context.Context, id bson.ObjectID) (model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return model.Post{}, r.findErr
	}
	post, ok := r.rows[id]
	if !ok {
		return model.Post{}, repository.ErrNotFound
	}
	return post, nil
}

func (r *fakePostRepo) List(_ context.Context, q repository.RangeQuery) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++

	all := make([]model.Post, 0, len(r.rows))
	for _, p := range r.rows {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.Hex() > all[j].ID.Hex()
	})

	if q.From >= int64(len(all)) {
		return nil, nil
	}
	to := q.To + 1
	if to > int64(len(all)) {
		to = int64(len(all))
	}
	return all[q.From:to], nil
}

type fakeBlobStore struct {
	mu     sync.Mutex
	puts   map[string][]byte
	calls  int
	errFor func(path string, data []byte) error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{puts: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(_ context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.errFor != nil {
		if err := s.errFor(path, data); err != nil {
			return "", err
		}
	}
	s.puts[path] = data
	return "blob://" + path, nil
}

type likeKey struct{ post, user bson.ObjectID }

type fakeLikeRepo struct {
	mu        sync.Mutex
	likes     map[likeKey]struct{}
	posts     *fakePostRepo
	insertErr error
}

func newFakeLikeRepo(posts *fakePostRepo) *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[likeKey]struct{}), posts: posts}
}

func (r *fakeLikeRepo) Insert(_ context.Context, like model.Like) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return false, r.insertErr
	}
	k := likeKey{post: like.PostID, user: like.UserID}
	if _, dup := r.likes[k]; dup {
		return true, nil
	}
	r.likes[k] = struct{}{}
	return false, nil
}

func (r *fakeLikeRepo) Delete(_ context.Context, postID, userID bson.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{post: postID, user: userID}
	if _, ok := r.likes[k]; !ok {
		return false, nil
	}
	delete(r.likes, k)
	return true, nil
}

func (r *fakeLikeRepo) Exists(_ context.Context, postID, userID bson.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.likes[likeKey{post: postID, user: userID}]
	return ok, nil
}

func (r *fakeLikeRepo) ListUserIDs(_ context.Context, postID bson.ObjectID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for k := range r.likes {
		if k.post == postID {
			ids = append(ids, k.user.Hex())
		}
	}
	return ids, nil
}

func (r *fakeLikeRepo) IncLikeCount(ctx context.Context, postID bson.ObjectID, delta int) error {
	r.posts.mu.Lock()
	defer r.posts.mu.Unlock()
	post, ok := r.posts.rows[postID]
	if !ok {
		return fmt.Errorf("post %s gone", postID.Hex())
	}
	post.LikeCount += delta
	r.posts.rows[postID] = post
	return nil
}

type fakeCommentRepo struct {
	mu        sync.Mutex
	rows      map[bson.ObjectID]model.Comment
	posts     *fakePostRepo
	listCalls int
}

func newFakeCommentRepo(posts *fakePostRepo) *fakeCommentRepo {
	return &fakeCommentRepo{rows: make(map[bson.ObjectID]model.Comment), posts: posts}
}

func (r *fakeCommentRepo) Insert(_ context.Context, comment model.Comment) (model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = bson.NewObjectID()
	r.rows[comment.ID] = comment
	return comment, nil
}

func (r *fakeCommentRepo) FindByID(_ context.Context, id bson.ObjectID) (model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cm, ok := r.rows[id]
	if !ok {
		return model.Comment{}, repository.ErrNotFound
	}
	return cm, nil
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID bson.ObjectID, before time.Time, beforeID bson.ObjectID, limit int64) ([]model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var all []model.Comment
	for _, cm := range r.rows {
		if cm.PostID != postID {
			continue
		}
		if !before.IsZero() {
			if cm.CreatedAt.After(before) {
				continue
			}
			if cm.CreatedAt.Equal(before) && cm.ID.Hex() >= beforeID.Hex() {
				continue
			}
		}
		all = append(all, cm)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.Hex() > all[j].ID.Hex()
	})
	if int64(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeCommentRepo) IncCommentCount(ctx context.Context, postID bson.ObjectID, delta int) error {
	r.posts.mu.Lock()
	defer r.posts.mu.Unlock()
	post, ok := r.posts.rows[postID]
	if !ok {
		return fmt.Errorf("post %s gone", postID.Hex())
	}
	post.CommentCount += delta
	r.posts.rows[postID] = post
	return nil
}
