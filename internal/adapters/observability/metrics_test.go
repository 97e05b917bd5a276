package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reviewdesk/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so counters are non-zero
	observability.ObserveHTTP("/webhook/reviews", "POST", 200, 12*time.Millisecond)
	observability.ObserveWorkflow("ingest", "ok")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "reviewdesk_http_requests_total") {
		t.Fatalf("expected reviewdesk_http_requests_total in output")
	}
	if !strings.Contains(out, "reviewdesk_workflow_events_total") {
		t.Fatalf("expected reviewdesk_workflow_events_total in output")
	}
}
