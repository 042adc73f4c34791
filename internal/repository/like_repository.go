package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"feed_workspace/model"
)

// LikeRepository wraps the like collection. The unique (user_id, post_id)
// index makes Insert idempotent: a repeated like reports dup=true instead of
// a second row.
type LikeRepository interface {
	Insert(ctx context.Context, like model.Like) (dup bool, err error)
	Delete(ctx context.Context, postID, userID bson.ObjectID) (found bool, err error)
	Exists(ctx context.Context, postID, userID bson.ObjectID) (bool, error)
	ListUserIDs(ctx context.Context, postID bson.ObjectID) ([]string, error)
	IncLikeCount(ctx context.Context, postID bson.ObjectID, delta int) error
}

type mongoLikeRepo struct {
	likes *mongo.Collection
	posts *mongo.Collection
}

func NewMongoLikeRepo(db *mongo.Database) LikeRepository {
	return &mongoLikeRepo{
		likes: db.Collection("like"),
		posts: db.Collection("posts"),
	}
}

func (r *mongoLikeRepo) Insert(ctx context.Context, like model.Like) (bool, error) {
	_, err := r.likes.InsertOne(ctx, like)
	if err == nil {
		return false, nil
	}
	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 && we.WriteErrors[0].Code == 11000 {
		return true, nil
	}
	return false, err
}

func (r *mongoLikeRepo) Delete(ctx context.Context, postID, userID bson.ObjectID) (bool, error) {
	res, err := r.likes.DeleteOne(ctx, bson.M{"post_id": postID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoLikeRepo) Exists(ctx context.Context, postID, userID bson.ObjectID) (bool, error) {
	err := r.likes.FindOne(ctx, bson.M{"post_id": postID, "user_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mongoLikeRepo) ListUserIDs(ctx context.Context, postID bson.ObjectID) ([]string, error) {
	cur, err := r.likes.Find(ctx, bson.M{"post_id": postID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []model.Like
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.UserID.Hex())
	}
	return ids, nil
}

func (r *mongoLikeRepo) IncLikeCount(ctx context.Context, postID bson.ObjectID, delta int) error {
	_, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"like_count": delta}},
	)
	return err
}
