package model

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FrontPost is the post projection handed to the frontend and kept in the
// view cache. LikedBy holds user ids (hex) so the liked flag can be derived
// for any viewer from the same cached value.
type FrontPost struct {
	ID           bson.ObjectID `json:"id"           bson:"_id"`
	UserID       bson.ObjectID `json:"userId"       bson:"user_id"`
	PostText     string        `json:"postText"     bson:"post_text"`
	ImageURLs    []string      `json:"imageUrls"    bson:"image_urls"`
	CreatedAt    time.Time     `json:"createdAt"    bson:"created_at"`
	LikeCount    int           `json:"likeCount"    bson:"like_count"`
	CommentCount int           `json:"commentCount" bson:"comment_count"`
	LikedBy      []string      `json:"likedBy"      bson:"liked_by"`
}

func (p FrontPost) IsLikedBy(userID string) bool {
	return slices.Contains(p.LikedBy, userID)
}

// WithLikeToggled returns a copy with the viewer's like flipped and the
// counter adjusted in the same step. The receiver is not mutated, so the
// cache can restore it verbatim on rollback.
func (p FrontPost) WithLikeToggled(userID string) FrontPost {
	out := p
	out.LikedBy = slices.Clone(p.LikedBy)
	if i := slices.Index(out.LikedBy, userID); i >= 0 {
		out.LikedBy = slices.Delete(out.LikedBy, i, i+1)
		out.LikeCount--
	} else {
		out.LikedBy = append(out.LikedBy, userID)
		out.LikeCount++
	}
	return out
}

func FrontPostOf(p Post, likedBy []string) FrontPost {
	return FrontPost{
		ID:           p.ID,
		UserID:       p.UserID,
		PostText:     p.PostText,
		ImageURLs:    p.ImageURLs,
		CreatedAt:    p.CreatedAt,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		LikedBy:      likedBy,
	}
}
