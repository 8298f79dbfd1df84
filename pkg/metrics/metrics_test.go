package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryHandler(t *testing.T) {
	reg := NewRegistry()
	reg.Runs.Inc()
	reg.RowsProcessed.Add(42)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "promo_runs_total 1") {
		t.Errorf("expected promo_runs_total 1 in output:\n%s", body)
	}
	if !strings.Contains(body, "promo_rows_processed_total 42") {
		t.Errorf("expected promo_rows_processed_total 42 in output:\n%s", body)
	}
}
