package app

import (
	"errors"
	"strconv"
	"strings"
)

// ReviewEvent is the normalized form of one review notification.
type ReviewEvent struct {
	LocationID     string
	SourceReviewID string
	ReviewText     string
	StarRating     int
	ReviewerName   string
}

var (
	ErrNoLocation = errors.New("notification carries no location id")
	ErrNoReviewID = errors.New("notification carries no review id")
)

/********** alias registries (single source of truth) **********/

// Accepted field names per logical field, in priority order. The platform
// sends camelCase notification keys; snake_case variants show up in test
// fixtures and older payloads.
var eventAliases = map[string][]string{
	"location":  {"locationName", "location_id", "locationId"},
	"review_id": {"reviewName", "name", "review_id", "reviewId"},
	"text":      {"reviewText", "comment", "review_text", "text"},
	"reviewer":  {"reviewer.displayName", "reviewer.display_name", "reviewerName", "reviewer_name"},
	"rating":    {"starRating", "star_rating", "rating"},
}

// Textual star ratings as delivered by the platform.
var starWords = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
}

const (
	defaultStarRating   = 5
	defaultReviewText   = "No text provided"
	defaultReviewerName = "Customer"
)

// NormalizeReviewEvent maps a decoded notification payload onto a
// ReviewEvent, applying the alias lists, rating normalization, defaults,
// and location derivation from the review resource name.
func NormalizeReviewEvent(m map[string]any) (ReviewEvent, error) {
	ev := ReviewEvent{
		LocationID:     firstNonEmpty(m, eventAliases["location"]),
		SourceReviewID: firstNonEmpty(m, eventAliases["review_id"]),
		ReviewText:     firstNonEmpty(m, eventAliases["text"]),
		ReviewerName:   firstNonEmpty(m, eventAliases["reviewer"]),
		StarRating:     NormalizeRating(firstPresent(m, eventAliases["rating"])),
	}
	if ev.ReviewText == "" {
		ev.ReviewText = defaultReviewText
	}
	if ev.ReviewerName == "" {
		ev.ReviewerName = defaultReviewerName
	}
	if ev.LocationID == "" {
		ev.LocationID = DeriveLocationID(ev.SourceReviewID)
	}
	if ev.SourceReviewID == "" {
		return ev, ErrNoReviewID
	}
	if ev.LocationID == "" {
		return ev, ErrNoLocation
	}
	return ev, nil
}

// NormalizeRating accepts the rating as a word enum ("FIVE",
// case-insensitive), a number, or a numeric string. Absent or
// unrecognized values default to 5.
func NormalizeRating(v any) int {
	switch r := v.(type) {
	case nil:
		return defaultStarRating
	case float64:
		return int(r)
	case int:
		return r
	case int64:
		return int(r)
	case string:
		s := strings.ToUpper(strings.TrimSpace(r))
		if n, ok := starWords[s]; ok {
			return n
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return defaultStarRating
	default:
		return defaultStarRating
	}
}

// DeriveLocationID recovers the location from a review resource name of
// the form <location>/reviews/<id>. Empty when the shape doesn't match.
func DeriveLocationID(reviewName string) string {
	if reviewName == "" || !strings.Contains(reviewName, "/reviews/") {
		return ""
	}
	return strings.SplitN(reviewName, "/reviews/", 2)[0]
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstNonEmpty returns the first non-empty string among the paths.
func firstNonEmpty(m map[string]any, paths []string) string {
	for _, p := range paths {
		if v := lookupAny(m, p); v != nil {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// firstPresent returns the first present value among the paths, nil if none.
func firstPresent(m map[string]any, paths []string) any {
	for _, p := range paths {
		if v := lookupAny(m, p); v != nil {
			return v
		}
	}
	return nil
}
