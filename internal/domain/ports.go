package domain

import (
	"context"
	"time"
)

// ReviewStore is the only shared mutable state. Implementations must keep
// SourceReviewID unique (insert conflict -> ErrDuplicateReview) and make
// the pending->posted transition a conditional, single-writer update.
type ReviewStore interface {
	// Client lookups (clients are read-only to the coordinator)
	GetClientByLocation(ctx context.Context, locationID string) (Client, error)
	GetClientByPhone(ctx context.Context, phone string) (Client, error)
	UpsertClient(ctx context.Context, c Client) error

	// Review lifecycle
	SourceReviewExists(ctx context.Context, sourceReviewID string) (bool, error)
	InsertPendingReview(ctx context.Context, r PendingReview) (int64, error)
	UpdateDraft(ctx context.Context, reviewID int64, draft string) error
	MarkPosted(ctx context.Context, reviewID int64) error
	LatestPending(ctx context.Context, clientID int64) (PendingReview, error)
	ListPending(ctx context.Context, clientID int64) ([]PendingReview, error)
	DailyStats(ctx context.Context, clientID int64, day time.Time) (DailyStats, error)
}

// DraftGenerator drafts a reply under the safety policy. retry=true must
// produce materially different wording than a prior call for the same
// review. Failures surface as errors wrapping ErrDraftUnavailable.
type DraftGenerator interface {
	GenerateReply(ctx context.Context, req DraftRequest) (Draft, error)
}

type DraftRequest struct {
	ReviewText   string
	StarRating   int
	Language     string
	OfferPolicy  string
	ContactPhone string // where angry customers get redirected
	Retry        bool
}

// Notifier delivers a message to the client over the chat channel.
// Fire-and-forget: callers log failures and move on.
type Notifier interface {
	Send(ctx context.Context, phone, body string) (deliveryID string, err error)
}

// Publisher posts an approved reply back to the review platform. Any
// error counts as a failed publish; reasons are not distinguished.
type Publisher interface {
	Publish(ctx context.Context, sourceReviewID, replyText string) error
}

// Cache is a small JSON cache used for client directory lookups.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
