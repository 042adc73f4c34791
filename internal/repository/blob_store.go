package repository

import (
	"bytes"
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// BlobStore is the write side of the attachment storage: put bytes, get a
// public reference back. The publish path never deletes blobs; records that
// fail to link simply leak their uploads for out-of-band reconciliation.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
}

// GridFSBlobStore keeps attachments in a GridFS bucket and serves them back
// through GET /files/:id.
type GridFSBlobStore struct {
	bucket  *mongo.GridFSBucket
	baseURL string
}

func NewGridFSBlobStore(db *mongo.Database, baseURL string) *GridFSBlobStore {
	return &GridFSBlobStore{
		bucket:  db.GridFSBucket(options.GridFSBucket().SetName("attachments")),
		baseURL: baseURL,
	}
}

func (s *GridFSBlobStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	id, err := s.bucket.UploadFromStream(ctx, path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return s.baseURL + "/files/" + id.Hex(), nil
}

// Download streams one stored blob into w.
func (s *GridFSBlobStore) Download(ctx context.Context, idHex string, w io.Writer) error {
	id, err := bson.ObjectIDFromHex(idHex)
	if err != nil {
		return ErrNotFound
	}
	if _, err := s.bucket.DownloadToStream(ctx, id, w); err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
