package app

import (
	"fmt"
	"time"

	"reviewdesk/internal/domain"
)

// Confirmation texts sent after commands.
const (
	msgPostSuccess = "Review reply posted successfully!"
	msgPostFailure = "Error posting reply to Google."
	msgNoPending   = "No pending reviews to post."
	msgBatchDone   = "Batch complete: %d reviews posted!"
)

// DashboardBody formats the notification combining same-day stats with
// the current review and proposed reply. Two variants exist: the Omani
// Arabic one for "ar-om" clients and the default English one. Field order
// and punctuation are part of the chat contract.
func DashboardBody(lang string, now time.Time, stats domain.DailyStats, starRating int, reviewerName, reviewText, draftText string) string {
	date := now.Format("02 Jan")
	if lang == "ar-om" {
		return fmt.Sprintf(
			"📊 *لوحة التحكم • %s*\n"+
				"🔴 قيد الانتظار: %d | ✅ تم النشر: %d\n"+
				"    ⭐ *تقييم جديد (%d نجوم)*\n"+
				"    👤 *%s*\n"+
				"    \"%s\"\n"+
				"    🤖 *الرد المقترح:*\n"+
				"    \"%s\"\n"+
				"    👇 *الإجراء:*\n"+
				"    1 : ✅ اعتماد ونشر\n"+
				"    2 : 🎲 صياغة جديدة",
			date, stats.Pending, stats.Posted, starRating, reviewerName, reviewText, draftText)
	}
	return fmt.Sprintf(
		"📊 Dashboard • %s\n"+
			"🔴 Pending: %d | ✅ Posted: %d\n\n"+
			"⭐ New %d Review\n"+
			"👤 %s\n"+
			"\"%s\"\n\n"+
			"🤖 Proposed Reply: \"%s\"\n\n"+
			"👇 Action: 1 : Approve 2 : 🎲 Regenerate",
		date, stats.Pending, stats.Posted, starRating, reviewerName, reviewText, draftText)
}
