package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Like rows are unique per (user_id, post_id); the unique index turns a
// repeated like into a duplicate-key error the repository can detect.
type Like struct {
	ID        bson.ObjectID `json:"id"        bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"userId"    bson:"user_id"`
	PostID    bson.ObjectID `json:"postId"    bson:"post_id"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
}
