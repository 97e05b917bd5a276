package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"reviewdesk/internal/adapters/observability"
	"reviewdesk/internal/domain"
)

// Coordinator drives the review lifecycle: webhook ingestion, human
// commands over the chat channel, and publishing back to the review
// platform. It holds no review state between calls; the store is the
// source of truth. Commands for one client are serialized by a per-client
// lock, and the pending->posted transition is additionally a conditional
// update in the store, so a review can never be published twice.
type Coordinator struct {
	dir       *ClientDirectory
	store     domain.ReviewStore
	gen       domain.DraftGenerator
	notifier  domain.Notifier
	publisher domain.Publisher

	draftTimeout   time.Duration
	publishTimeout time.Duration
	now            func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewCoordinator(
	dir *ClientDirectory,
	store domain.ReviewStore,
	gen domain.DraftGenerator,
	n domain.Notifier,
	p domain.Publisher,
	draftTimeout, publishTimeout time.Duration,
) *Coordinator {
	if draftTimeout <= 0 {
		draftTimeout = 30 * time.Second
	}
	if publishTimeout <= 0 {
		publishTimeout = 20 * time.Second
	}
	return &Coordinator{
		dir:            dir,
		store:          store,
		gen:            gen,
		notifier:       n,
		publisher:      p,
		draftTimeout:   draftTimeout,
		publishTimeout: publishTimeout,
		now:            time.Now,
		locks:          make(map[int64]*sync.Mutex),
	}
}

// lockClient serializes command handling per client id.
func (c *Coordinator) lockClient(id int64) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Ingest handles one review notification. Duplicate deliveries (same
// source review id) are silent no-ops: no second draft, no second
// notification. Generator failure drops the event; the source redelivers.
func (c *Coordinator) Ingest(ctx context.Context, ev ReviewEvent) error {
	client, err := c.dir.ByLocation(ctx, ev.LocationID)
	if err != nil {
		observability.ObserveWorkflow("ingest", "client_not_found")
		return err
	}

	// Cheap pre-check for redelivered webhooks. The unique key on
	// source_review_id is what actually closes the concurrent-delivery
	// race at insert time.
	if exists, err := c.store.SourceReviewExists(ctx, ev.SourceReviewID); err != nil {
		return err
	} else if exists {
		log.Debug().Str("review", ev.SourceReviewID).Msg("duplicate delivery, skipping")
		observability.ObserveWorkflow("ingest", "duplicate")
		return nil
	}

	draft, err := c.generate(ctx, client, ev.ReviewText, ev.StarRating, false)
	if err != nil {
		observability.ObserveWorkflow("ingest", "draft_unavailable")
		return err
	}

	_, err = c.store.InsertPendingReview(ctx, domain.PendingReview{
		ClientID:       client.ID,
		SourceReviewID: ev.SourceReviewID,
		ReviewText:     ev.ReviewText,
		StarRating:     ev.StarRating,
		DraftReply:     draft.ReplyText,
		Status:         domain.StatusPending,
	})
	if errors.Is(err, domain.ErrDuplicateReview) {
		// Lost the race against a concurrent delivery of the same event.
		log.Debug().Str("review", ev.SourceReviewID).Msg("concurrent duplicate insert, skipping")
		observability.ObserveWorkflow("ingest", "duplicate")
		return nil
	}
	if err != nil {
		return err
	}

	observability.ObserveWorkflow("ingest", "ok")
	c.sendDashboard(ctx, client, ev.StarRating, ev.ReviewerName, ev.ReviewText, draft.ReplyText)
	return nil
}

// HandleCommand dispatches an inbound chat message. Unrecognized bodies
// are no-ops; the transport layer still acknowledges delivery.
func (c *Coordinator) HandleCommand(ctx context.Context, phone, body string) error {
	switch strings.ToUpper(strings.TrimSpace(body)) {
	case "1":
		return c.Approve(ctx, phone)
	case "2":
		return c.Regenerate(ctx, phone)
	case "ALL":
		return c.PostAllPending(ctx, phone)
	default:
		return nil
	}
}

// Approve publishes the most recent pending draft for the client behind
// the phone number. On publish failure the row stays pending and the
// client gets a failure notification.
func (c *Coordinator) Approve(ctx context.Context, phone string) error {
	client, err := c.dir.ByPhone(ctx, phone)
	if err != nil {
		return err
	}
	unlock := c.lockClient(client.ID)
	defer unlock()

	rv, err := c.store.LatestPending(ctx, client.ID)
	if err != nil {
		return err
	}

	if err := c.publish(ctx, rv); err != nil {
		log.Warn().Int64("review_id", rv.ID).Err(err).Msg("publish failed")
		observability.ObserveWorkflow("approve", "publish_failed")
		c.send(ctx, client.PhoneNumber, msgPostFailure)
		return fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
	}
	if err := c.store.MarkPosted(ctx, rv.ID); err != nil {
		return err
	}
	observability.ObserveWorkflow("approve", "ok")
	c.send(ctx, client.PhoneNumber, msgPostSuccess)
	return nil
}

// Regenerate replaces the draft of the most recent pending review with a
// materially different one and re-sends the dashboard. Generator failure
// is silent: no notification goes out.
func (c *Coordinator) Regenerate(ctx context.Context, phone string) error {
	client, err := c.dir.ByPhone(ctx, phone)
	if err != nil {
		return err
	}
	unlock := c.lockClient(client.ID)
	defer unlock()

	rv, err := c.store.LatestPending(ctx, client.ID)
	if err != nil {
		return err
	}

	draft, err := c.generate(ctx, client, rv.ReviewText, rv.StarRating, true)
	if err != nil {
		observability.ObserveWorkflow("regenerate", "draft_unavailable")
		return err
	}
	if err := c.store.UpdateDraft(ctx, rv.ID, draft.ReplyText); err != nil {
		return err
	}
	observability.ObserveWorkflow("regenerate", "ok")
	c.sendDashboard(ctx, client, rv.StarRating, "Customer", rv.ReviewText, draft.ReplyText)
	return nil
}

// PostAllPending publishes every pending review for the client, skipping
// failures, then sends one summary with the posted count.
func (c *Coordinator) PostAllPending(ctx context.Context, phone string) error {
	client, err := c.dir.ByPhone(ctx, phone)
	if err != nil {
		return err
	}
	unlock := c.lockClient(client.ID)
	defer unlock()

	pending, err := c.store.ListPending(ctx, client.ID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		c.send(ctx, client.PhoneNumber, msgNoPending)
		return nil
	}

	posted := 0
	for _, rv := range pending {
		if err := c.publish(ctx, rv); err != nil {
			log.Warn().Int64("review_id", rv.ID).Err(err).Msg("batch publish failed, leaving pending")
			observability.ObserveWorkflow("post_all", "publish_failed")
			continue
		}
		if err := c.store.MarkPosted(ctx, rv.ID); err != nil {
			log.Error().Int64("review_id", rv.ID).Err(err).Msg("mark posted failed")
			continue
		}
		posted++
	}
	observability.ObserveWorkflow("post_all", "ok")
	c.send(ctx, client.PhoneNumber, fmt.Sprintf(msgBatchDone, posted))
	return nil
}

// generate calls the draft generator under a timeout and enforces the
// fake-suspicion coercion regardless of what the generator returned.
func (c *Coordinator) generate(ctx context.Context, client domain.Client, text string, rating int, retry bool) (domain.Draft, error) {
	gctx, cancel := context.WithTimeout(ctx, c.draftTimeout)
	defer cancel()

	draft, err := c.gen.GenerateReply(gctx, domain.DraftRequest{
		ReviewText:   text,
		StarRating:   rating,
		Language:     client.LanguagePref,
		OfferPolicy:  client.OfferPolicy,
		ContactPhone: client.PhoneNumber,
		Retry:        retry,
	})
	if err != nil {
		return domain.Draft{}, fmt.Errorf("%w: %v", domain.ErrDraftUnavailable, err)
	}
	if draft.IsFakeSuspicion {
		draft.ReplyText = ""
	}
	return draft, nil
}

func (c *Coordinator) publish(ctx context.Context, rv domain.PendingReview) error {
	pctx, cancel := context.WithTimeout(ctx, c.publishTimeout)
	defer cancel()
	return c.publisher.Publish(pctx, rv.SourceReviewID, rv.DraftReply)
}

// sendDashboard recomputes same-day stats and sends the full dashboard
// notification. Delivery failures are logged and swallowed.
func (c *Coordinator) sendDashboard(ctx context.Context, client domain.Client, rating int, reviewer, text, draft string) {
	stats, err := c.store.DailyStats(ctx, client.ID, c.now())
	if err != nil {
		log.Warn().Int64("client_id", client.ID).Err(err).Msg("daily stats failed")
	}
	body := DashboardBody(client.LanguagePref, c.now(), stats, rating, reviewer, text, draft)
	c.send(ctx, client.PhoneNumber, body)
}

func (c *Coordinator) send(ctx context.Context, phone, body string) {
	sid, err := c.notifier.Send(ctx, phone, body)
	if err != nil {
		observability.ObserveWorkflow("notify", "error")
		log.Warn().Str("to", phone).Err(err).Msg("chat notification failed")
		return
	}
	observability.ObserveWorkflow("notify", "ok")
	log.Debug().Str("to", phone).Str("sid", sid).Msg("chat notification sent")
}
