package domain

import "time"

// Client is the identity record for one business. Rows are created by the
// out-of-band onboarding tool and are read-only to the coordinator.
type Client struct {
	ID               int64
	PhoneNumber      string // WhatsApp contact, E.164
	SourceLocationID string // review-platform location resource name
	BusinessName     string
	LanguagePref     string // e.g. "en", "ar-om"
	OfferPolicy      string // free-form constraint passed to the draft generator
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DailyStats is the same-day pending/posted summary shown on the
// dashboard notification.
type DailyStats struct {
	Pending int // all rows still awaiting a decision
	Posted  int // rows posted on the current calendar day
}
