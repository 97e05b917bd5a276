package domain

import "time"

// ReviewStatus is a closed enum: pending -> posted, nothing else.
type ReviewStatus string

const (
	StatusPending ReviewStatus = "pending"
	StatusPosted  ReviewStatus = "posted"
)

// PendingReview is one ingested review. Exactly one row exists per
// SourceReviewID; rows are never deleted.
type PendingReview struct {
	ID             int64
	ClientID       int64
	SourceReviewID string // review resource name on the platform, unique
	ReviewText     string
	StarRating     int // 1..5
	DraftReply     string
	Status         ReviewStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Draft is the generator's output. RiskLevel is advisory; IsFakeSuspicion
// forces the stored reply to "" (the coordinator enforces that, not the
// generator).
type Draft struct {
	ReplyText       string
	RiskLevel       string // "low" | "high"
	IsFakeSuspicion bool
}
