package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"feed_workspace/model"
)

var ErrNotFound = errors.New("repository: not found")

// RangeQuery addresses one feed page as an inclusive offset window into the
// descending-by-creation order, mirroring the record store's range API.
type RangeQuery struct {
	From int64
	To   int64
}

func (q RangeQuery) limit() int64 { return q.To - q.From + 1 }

// PostRepository wraps the posts collection. Every call is atomic on its own;
// no multi-row transactions are used.
type PostRepository interface {
	Insert(ctx context.Context, post model.Post) (model.Post, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) (model.Post, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	FindByID(ctx context.Context, id bson.ObjectID) (model.Post, error)
	// List returns posts ordered by created_at desc, _id desc.
	List(ctx context.Context, q RangeQuery) ([]model.Post, error)
}

type mongoPostRepo struct {
	col *mongo.Collection
}

func NewMongoPostRepo(db *mongo.Database) PostRepository {
	return &mongoPostRepo{col: db.Collection("posts")}
}

func (r *mongoPostRepo) Insert(ctx context.Context, post model.Post) (model.Post, error) {
	res, err := r.col.InsertOne(ctx, post)
	if err != nil {
		return model.Post{}, err
	}
	post.ID = res.InsertedID.(bson.ObjectID)
	return post, nil
}

func (r *mongoPostRepo) Update(ctx context.Context, id bson.ObjectID, fields bson.M) (model.Post, error) {
	var out model.Post
	err := r.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, err
	}
	return out, nil
}

func (r *mongoPostRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPostRepo) FindByID(ctx context.Context, id bson.ObjectID) (model.Post, error) {
	var out model.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, err
	}
	return out, nil
}

func (r *mongoPostRepo) List(ctx context.Context, q RangeQuery) ([]model.Post, error) {
	findOpt := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(q.From).
		SetLimit(q.limit())

	cur, err := r.col.Find(ctx, bson.M{}, findOpt)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []model.Post
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
