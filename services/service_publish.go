package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"feed_workspace/internal/repository"
	"feed_workspace/model"
)

// Attachment pairs the bytes of one image with its client-side filename. The
// filename only matters during publish (it contributes the extension to the
// blob path); it is not persisted.
type Attachment struct {
	Name string
	Data []byte
}

// Publisher runs the multi-step publish sequence against two independently
// failing stores. There is no cross-store transaction: when an upload fails
// after the record insert succeeded, the record is deleted best-effort so no
// partially visible post survives.
type Publisher struct {
	posts repository.PostRepository
	blobs repository.BlobStore
	log   *slog.Logger
}

func NewPublisher(posts repository.PostRepository, blobs repository.BlobStore, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{posts: posts, blobs: blobs, log: logger}
}

// PublishPost creates the post record, uploads every attachment concurrently
// and links the resulting references. A successful return always carries
// exactly len(attachments) references, in input order.
func (p *Publisher) PublishPost(ctx context.Context, authorID bson.ObjectID, content string, attachments []Attachment) (model.Post, error) {
	now := time.Now().UTC()
	p.log.Info("publish start", "state", string(StateCreatingRecord), "author", authorID.Hex())

	created, err := p.posts.Insert(ctx, model.Post{
		UserID:    authorID,
		PostText:  content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		// terminal: nothing committed yet, nothing to compensate
		return model.Post{}, &PublishError{
			Step: StateCreatingRecord,
			err:  fmt.Errorf("%w: %w", ErrRecordCreateFailed, err),
		}
	}

	if len(attachments) == 0 {
		p.log.Info("publish done", "state", string(StateDone), "post", created.ID.Hex())
		return created, nil
	}

	// Uploads already issued are not cancelled when the caller abandons the
	// publish; they run to completion on a detached context so compensation
	// can still observe their outcome.
	uploadCtx := context.WithoutCancel(ctx)

	p.log.Info("publish uploading", "state", string(StateUploading),
		"post", created.ID.Hex(), "attachments", len(attachments))

	refs := make([]string, len(attachments))
	uploadErrs := make([]error, len(attachments))

	var wg sync.WaitGroup
	for i, att := range attachments {
		wg.Add(1)
		go func(i int, att Attachment) {
			defer wg.Done()
			ref, err := p.blobs.Put(uploadCtx, blobPath(authorID, created.ID, att.Name), att.Data)
			if err != nil {
				uploadErrs[i] = fmt.Errorf("attachment %d (%s): %w", i, att.Name, err)
				return
			}
			refs[i] = ref
		}(i, att)
	}
	// fan-in: a failing upload does not abort its siblings, so every branch
	// has settled before any compensation decision is made
	wg.Wait()

	if cause := errors.Join(uploadErrs...); cause != nil {
		return model.Post{}, p.compensate(uploadCtx, created.ID, StateUploading,
			fmt.Errorf("%w: %w", ErrAttachmentUploadFailed, cause))
	}

	p.log.Info("publish linking", "state", string(StateLinking), "post", created.ID.Hex())
	linked, err := p.posts.Update(ctx, created.ID, bson.M{
		"image_urls": refs,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		// the original flow compensates here too: uploaded blobs stay behind
		// (leak-and-reconcile), the record must not
		return model.Post{}, p.compensate(uploadCtx, created.ID, StateLinking,
			fmt.Errorf("%w: %w", ErrRecordUpdateFailed, err))
	}

	p.log.Info("publish done", "state", string(StateDone), "post", linked.ID.Hex())
	return linked, nil
}

// UpdatePost applies a single record-store update. Idempotent by id.
func (p *Publisher) UpdatePost(ctx context.Context, id bson.ObjectID, fields bson.M) (model.Post, error) {
	fields["updated_at"] = time.Now().UTC()
	out, err := p.posts.Update(ctx, id, fields)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %w", ErrRecordUpdateFailed, err)
	}
	return out, nil
}

// DeletePost removes the record. Attached blobs are left for reconciliation.
func (p *Publisher) DeletePost(ctx context.Context, id bson.ObjectID) error {
	if err := p.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrRecordDeleteFailed, err)
	}
	return nil
}

// compensate deletes the orphaned record best-effort and folds the outcome
// into the returned error. A failed compensation is logged and reported as
// metadata, never escalated past the original cause.
func (p *Publisher) compensate(ctx context.Context, postID bson.ObjectID, step PublishState, cause error) error {
	p.log.Warn("publish compensating", "state", string(StateCompensating),
		"post", postID.Hex(), "cause", cause)

	delErr := p.posts.Delete(ctx, postID)
	if delErr != nil {
		p.log.Error("compensating delete failed, record left for reconciliation",
			"post", postID.Hex(), "err", delErr)
	}
	return &PublishError{
		Step:            step,
		Compensated:     delErr == nil,
		CompensationErr: delErr,
		err:             cause,
	}
}

// blobPath keys an upload by (author, post, unique suffix) so concurrent
// uploads can never collide.
func blobPath(authorID, postID bson.ObjectID, name string) string {
	ext := path.Ext(name)
	if ext == "" {
		ext = ".webp"
	}
	return fmt.Sprintf("%s/%s/%d-%s%s",
		authorID.Hex(), postID.Hex(), time.Now().UnixMilli(), uuid.NewString(), ext)
}
