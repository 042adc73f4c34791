// Package cursor encodes opaque pagination positions. A cursor travels as
// URL-safe base64 over a compact JSON payload, so clients can hold and return
// one but not fabricate a position by hand.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrMalformed covers every way a cursor can fail to decode. Callers map it
// to a 400; the payload details never reach the client.
var ErrMalformed = errors.New("cursor: malformed")

func encode(v any) string {
	b, _ := json.Marshal(v)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decode(s string, v any) error {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return ErrMalformed
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrMalformed
	}
	return nil
}

// feedPos marks a position in the page-indexed feed sequence.
type feedPos struct {
	Page int64 `json:"p"`
}

func EncodeFeedCursor(page int64) string {
	return encode(feedPos{Page: page})
}

func DecodeFeedCursor(s string) (int64, error) {
	var pos feedPos
	if err := decode(s, &pos); err != nil {
		return 0, err
	}
	if pos.Page < 0 {
		return 0, ErrMalformed
	}
	return pos.Page, nil
}

// commentPos pins the (created_at, id) pair of the last comment served, the
// keyset boundary for the next page.
type commentPos struct {
	At  string `json:"at"`
	Ref string `json:"ref"`
}

func EncodeCommentCursor(at time.Time, ref bson.ObjectID) string {
	return encode(commentPos{
		At:  at.UTC().Format(time.RFC3339Nano),
		Ref: ref.Hex(),
	})
}

func DecodeCommentCursor(s string) (time.Time, bson.ObjectID, error) {
	var pos commentPos
	if err := decode(s, &pos); err != nil {
		return time.Time{}, bson.NilObjectID, err
	}
	at, err := time.Parse(time.RFC3339Nano, pos.At)
	if err != nil {
		return time.Time{}, bson.NilObjectID, ErrMalformed
	}
	ref, err := bson.ObjectIDFromHex(pos.Ref)
	if err != nil {
		return time.Time{}, bson.NilObjectID, ErrMalformed
	}
	return at.UTC(), ref, nil
}
