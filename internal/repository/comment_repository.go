package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"feed_workspace/model"
)

type CommentRepository interface {
	Insert(ctx context.Context, comment model.Comment) (model.Comment, error)
	FindByID(ctx context.Context, id bson.ObjectID) (model.Comment, error)
	// ListByPost pages newest-first by (created_at, _id); before/beforeID come
	// from the previous page's cursor, zero values mean "from the top".
	ListByPost(ctx context.Context, postID bson.ObjectID, before time.Time, beforeID bson.ObjectID, limit int64) ([]model.Comment, error)
	IncCommentCount(ctx context.Context, postID bson.ObjectID, delta int) error
}

type mongoCommentRepo struct {
	comments *mongo.Collection
	posts    *mongo.Collection
}

func NewMongoCommentRepo(db *mongo.Database) CommentRepository {
	return &mongoCommentRepo{
		comments: db.Collection("comments"),
		posts:    db.Collection("posts"),
	}
}

func (r *mongoCommentRepo) Insert(ctx context.Context, comment model.Comment) (model.Comment, error) {
	res, err := r.comments.InsertOne(ctx, comment)
	if err != nil {
		return model.Comment{}, err
	}
	comment.ID = res.InsertedID.(bson.ObjectID)
	return comment, nil
}

func (r *mongoCommentRepo) FindByID(ctx context.Context, id bson.ObjectID) (model.Comment, error) {
	var out model.Comment
	err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Comment{}, ErrNotFound
	}
	if err != nil {
		return model.Comment{}, err
	}
	return out, nil
}

func (r *mongoCommentRepo) ListByPost(ctx context.Context, postID bson.ObjectID, before time.Time, beforeID bson.ObjectID, limit int64) ([]model.Comment, error) {
	filter := bson.M{"post_id": postID}
	if !before.IsZero() {
		filter["$or"] = []bson.M{
			{"created_at": bson.M{"$lt": before}},
			{"created_at": before, "_id": bson.M{"$lt": beforeID}},
		}
	}

	findOpt := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := r.comments.Find(ctx, filter, findOpt)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []model.Comment
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoCommentRepo) IncCommentCount(ctx context.Context, postID bson.ObjectID, delta int) error {
	_, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"comment_count": delta}},
	)
	return err
}
