package mysql

// -----------------------------------------------------------------------------
// CLIENTS
// -----------------------------------------------------------------------------

const clientColumns = `
  id, phone_number, source_location_id, business_name,
  language_preference, offer_policy, created_at, updated_at`

const getClientByLocationSQL = `
SELECT` + clientColumns + `
FROM clients
WHERE source_location_id = ?
`

const getClientByPhoneSQL = `
SELECT` + clientColumns + `
FROM clients
WHERE phone_number = ?
`

// Keyed on the unique source_location_id; onboarding re-runs are upserts.
const upsertClientSQL = `
INSERT INTO clients
  (phone_number, source_location_id, business_name, language_preference, offer_policy)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  phone_number        = VALUES(phone_number),
  business_name       = VALUES(business_name),
  language_preference = VALUES(language_preference),
  offer_policy        = VALUES(offer_policy),
  updated_at          = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// PENDING REVIEWS
// -----------------------------------------------------------------------------

// The unique key on source_review_id makes this insert the idempotency
// barrier: error 1062 means an identical delivery already landed.
const insertPendingReviewSQL = `
INSERT INTO pending_reviews
  (client_id, source_review_id, review_text, star_rating, draft_reply, status)
VALUES
  (?, ?, ?, ?, ?, 'pending')
`

const sourceReviewExistsSQL = `
SELECT EXISTS(SELECT 1 FROM pending_reviews WHERE source_review_id = ?)
`

// Both conditional updates guard on status so a row that has already left
// the pending state is never touched (RowsAffected = 0 signals the miss).
const updateDraftSQL = `
UPDATE pending_reviews SET draft_reply = ? WHERE id = ? AND status = 'pending'
`

const markPostedSQL = `
UPDATE pending_reviews SET status = 'posted' WHERE id = ? AND status = 'pending'
`

const reviewColumns = `
  id, client_id, source_review_id, review_text, star_rating,
  draft_reply, status, created_at, updated_at`

const latestPendingSQL = `
SELECT` + reviewColumns + `
FROM pending_reviews
WHERE client_id = ? AND status = 'pending'
ORDER BY created_at DESC, id DESC
LIMIT 1
`

const listPendingSQL = `
SELECT` + reviewColumns + `
FROM pending_reviews
WHERE client_id = ? AND status = 'pending'
ORDER BY created_at ASC, id ASC
`

// pending counts everything still awaiting a decision; posted only counts
// rows whose transition happened on the given calendar day.
const dailyStatsSQL = `
SELECT
  COALESCE(SUM(status = 'pending'), 0),
  COALESCE(SUM(status = 'posted' AND updated_at >= ?), 0)
FROM pending_reviews
WHERE client_id = ?
`
