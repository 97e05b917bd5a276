package domain

import "errors"

var (
	// ErrClientNotFound: no client matches the location id or contact
	// number. The event/command is dropped; the source redelivers.
	ErrClientNotFound = errors.New("client not found")

	// ErrDuplicateReview: the source review id is already on record.
	// Webhook redelivery, not a caller error.
	ErrDuplicateReview = errors.New("duplicate source review")

	// ErrDraftUnavailable: the generator failed (timeout, malformed
	// output, missing credentials). The triggering event is dropped.
	ErrDraftUnavailable = errors.New("draft unavailable")

	// ErrNoPendingReview: a command arrived with nothing to act on.
	ErrNoPendingReview = errors.New("no pending review")

	// ErrReviewNotPending: conditional update lost the race; the row has
	// already left the pending state.
	ErrReviewNotPending = errors.New("review is not pending")

	// ErrPublishFailed: the review platform rejected the reply. Reasons
	// are not distinguished.
	ErrPublishFailed = errors.New("publish failed")

	ErrNotFound = errors.New("not found")
)
