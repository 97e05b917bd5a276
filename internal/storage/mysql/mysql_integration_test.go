//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"reviewdesk/internal/domain"
	mysqlrepo "reviewdesk/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviewdesk",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "reviewdesk")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_Lifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Onboard a client and resolve it both ways.
	if err := repo.UpsertClient(ctx, domain.Client{
		PhoneNumber:      "+96890000001",
		SourceLocationID: "accounts/111/locations/9",
		BusinessName:     "Muscat Grill",
		LanguagePref:     "en",
		OfferPolicy:      "STRICT - NO OFFERS",
	}); err != nil {
		t.Fatalf("UpsertClient: %v", err)
	}
	client, err := repo.GetClientByLocation(ctx, "accounts/111/locations/9")
	if err != nil {
		t.Fatalf("GetClientByLocation: %v", err)
	}
	byPhone, err := repo.GetClientByPhone(ctx, "+96890000001")
	if err != nil || byPhone.ID != client.ID {
		t.Fatalf("GetClientByPhone: id=%d err=%v", byPhone.ID, err)
	}
	if _, err := repo.GetClientByPhone(ctx, "+96899999999"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}

	// Insert one review; the duplicate insert must report the conflict.
	rv := domain.PendingReview{
		ClientID:       client.ID,
		SourceReviewID: "accounts/111/locations/9/reviews/55",
		ReviewText:     "Cold food",
		StarRating:     2,
		DraftReply:     "We are sorry to hear this.",
	}
	id, err := repo.InsertPendingReview(ctx, rv)
	if err != nil {
		t.Fatalf("InsertPendingReview: %v", err)
	}
	if _, err := repo.InsertPendingReview(ctx, rv); !errors.Is(err, domain.ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
	if exists, err := repo.SourceReviewExists(ctx, rv.SourceReviewID); err != nil || !exists {
		t.Fatalf("SourceReviewExists: exists=%v err=%v", exists, err)
	}

	// Latest pending is the newest row.
	time.Sleep(1100 * time.Millisecond) // distinct created_at seconds
	rv2 := rv
	rv2.SourceReviewID = "accounts/111/locations/9/reviews/56"
	rv2.ReviewText = "Great tea"
	rv2.StarRating = 5
	id2, err := repo.InsertPendingReview(ctx, rv2)
	if err != nil {
		t.Fatalf("InsertPendingReview #2: %v", err)
	}
	latest, err := repo.LatestPending(ctx, client.ID)
	if err != nil || latest.ID != id2 {
		t.Fatalf("LatestPending: id=%d want %d err=%v", latest.ID, id2, err)
	}

	// Draft replacement only touches pending rows.
	if err := repo.UpdateDraft(ctx, id, "A different wording."); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}

	// pending -> posted is a one-shot conditional update.
	if err := repo.MarkPosted(ctx, id); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}
	if err := repo.MarkPosted(ctx, id); !errors.Is(err, domain.ErrReviewNotPending) {
		t.Fatalf("expected ErrReviewNotPending on second MarkPosted, got %v", err)
	}
	if err := repo.UpdateDraft(ctx, id, "too late"); !errors.Is(err, domain.ErrReviewNotPending) {
		t.Fatalf("expected ErrReviewNotPending on posted UpdateDraft, got %v", err)
	}

	// Stats: one pending, one posted today.
	stats, err := repo.DailyStats(ctx, client.ID, time.Now())
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if stats.Pending != 1 || stats.Posted != 1 {
		t.Fatalf("stats = %+v, want pending=1 posted=1", stats)
	}

	pending, err := repo.ListPending(ctx, client.ID)
	if err != nil || len(pending) != 1 || pending[0].ID != id2 {
		t.Fatalf("ListPending: %+v err=%v", pending, err)
	}
}
