package bootstrap

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the indexes the core relies on: the unique like pair
// that makes toggles idempotent, and the orderings behind feed and comment
// pagination.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("like").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "post_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_user_post"),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("posts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		},
		Options: options.Index().SetName("feed_order"),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("comments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "post_id", Value: 1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		},
		Options: options.Index().SetName("comment_order"),
	})
	return err
}
