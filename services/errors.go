package services

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordCreateFailed: the initial post insert failed; nothing to compensate.
	ErrRecordCreateFailed = errors.New("record create failed")
	// ErrRecordUpdateFailed: a record-store update failed; idempotent by id,
	// callers may retry under their own policy.
	ErrRecordUpdateFailed = errors.New("record update failed")
	// ErrRecordDeleteFailed: a record-store delete failed.
	ErrRecordDeleteFailed = errors.New("record delete failed")
	// ErrAttachmentUploadFailed wraps one or more blob upload causes.
	ErrAttachmentUploadFailed = errors.New("attachment upload failed")

	ErrPostNotFound          = errors.New("post not found")
	ErrParentCommentNotFound = errors.New("parent comment not found")
	ErrParentCommentMismatch = errors.New("parent comment belongs to a different post")
	ErrReplyToReply          = errors.New("replies can only target top-level comments")
)

// PublishState tags where one publish operation ended up, for logs and error
// reports. Only "done" and "failed" are terminal; "compensated" vs
// "compensation_failed" is observability detail on the failed branch.
type PublishState string

const (
	StateCreatingRecord PublishState = "creating_record"
	StateUploading      PublishState = "uploading"
	StateLinking        PublishState = "linking"
	StateDone           PublishState = "done"
	StateCompensating   PublishState = "compensating"
	StateDoneFailed     PublishState = "failed"
)

// PublishError reports a failed publish. Compensation results ride along as
// metadata: a failed compensating delete never becomes its own user-facing
// error kind.
type PublishError struct {
	// Step is the state in which the operation failed.
	Step PublishState
	// Compensated is true when the orphaned record was deleted.
	Compensated bool
	// CompensationErr holds the absorbed delete failure, nil when Compensated
	// or when the failure needed no compensation.
	CompensationErr error

	err error
}

func (e *PublishError) Error() string {
	switch {
	case e.CompensationErr != nil:
		return fmt.Sprintf("publish failed at %s (compensation failed: %v): %v", e.Step, e.CompensationErr, e.err)
	case e.Compensated:
		return fmt.Sprintf("publish failed at %s (compensated): %v", e.Step, e.err)
	default:
		return fmt.Sprintf("publish failed at %s: %v", e.Step, e.err)
	}
}

func (e *PublishError) Unwrap() error { return e.err }
