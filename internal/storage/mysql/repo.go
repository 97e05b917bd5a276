package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"reviewdesk/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

const mysqlErrDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// ---- clients ----

func (r *Repo) GetClientByLocation(ctx context.Context, locationID string) (domain.Client, error) {
	return r.scanClient(r.db.QueryRowContext(ctx, getClientByLocationSQL, locationID))
}

func (r *Repo) GetClientByPhone(ctx context.Context, phone string) (domain.Client, error) {
	return r.scanClient(r.db.QueryRowContext(ctx, getClientByPhoneSQL, phone))
}

func (r *Repo) scanClient(row *sql.Row) (domain.Client, error) {
	var c domain.Client
	var policy sql.NullString
	if err := row.Scan(
		&c.ID,
		&c.PhoneNumber,
		&c.SourceLocationID,
		&c.BusinessName,
		&c.LanguagePref,
		&policy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Client{}, domain.ErrClientNotFound
		}
		return domain.Client{}, err
	}
	if policy.Valid {
		c.OfferPolicy = policy.String
	}
	return c, nil
}

func (r *Repo) UpsertClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, upsertClientSQL,
		c.PhoneNumber,
		c.SourceLocationID,
		c.BusinessName,
		c.LanguagePref,
		c.OfferPolicy,
	)
	return err
}

// ---- pending reviews ----

func (r *Repo) SourceReviewExists(ctx context.Context, sourceReviewID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, sourceReviewExistsSQL, sourceReviewID).Scan(&exists)
	return exists, err
}

func (r *Repo) InsertPendingReview(ctx context.Context, rv domain.PendingReview) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertPendingReviewSQL,
		rv.ClientID,
		rv.SourceReviewID,
		rv.ReviewText,
		rv.StarRating,
		rv.DraftReply,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, domain.ErrDuplicateReview
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpdateDraft(ctx context.Context, reviewID int64, draft string) error {
	res, err := r.db.ExecContext(ctx, updateDraftSQL, draft, reviewID)
	if err != nil {
		return err
	}
	return affectedOrNotPending(res)
}

func (r *Repo) MarkPosted(ctx context.Context, reviewID int64) error {
	res, err := r.db.ExecContext(ctx, markPostedSQL, reviewID)
	if err != nil {
		return err
	}
	return affectedOrNotPending(res)
}

// affectedOrNotPending turns a zero-row conditional update into the
// explicit lost-the-race error.
func affectedOrNotPending(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrReviewNotPending
	}
	return nil
}

func (r *Repo) LatestPending(ctx context.Context, clientID int64) (domain.PendingReview, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, latestPendingSQL, clientID))
	if err == sql.ErrNoRows {
		return domain.PendingReview{}, domain.ErrNoPendingReview
	}
	return rv, err
}

func (r *Repo) ListPending(ctx context.Context, clientID int64) ([]domain.PendingReview, error) {
	rows, err := r.db.QueryContext(ctx, listPendingSQL, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PendingReview
	for rows.Next() {
		var rv domain.PendingReview
		var status string
		if err := rows.Scan(
			&rv.ID,
			&rv.ClientID,
			&rv.SourceReviewID,
			&rv.ReviewText,
			&rv.StarRating,
			&rv.DraftReply,
			&status,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rv.Status = domain.ReviewStatus(status)
		out = append(out, rv)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanReview(row rowScanner) (domain.PendingReview, error) {
	var rv domain.PendingReview
	var status string
	if err := row.Scan(
		&rv.ID,
		&rv.ClientID,
		&rv.SourceReviewID,
		&rv.ReviewText,
		&rv.StarRating,
		&rv.DraftReply,
		&status,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return domain.PendingReview{}, err
	}
	rv.Status = domain.ReviewStatus(status)
	return rv, nil
}

func (r *Repo) DailyStats(ctx context.Context, clientID int64, day time.Time) (domain.DailyStats, error) {
	dayStart := day.Format("2006-01-02")
	var s domain.DailyStats
	if err := r.db.QueryRowContext(ctx, dailyStatsSQL, dayStart, clientID).Scan(&s.Pending, &s.Posted); err != nil {
		return domain.DailyStats{}, err
	}
	return s, nil
}
