package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestHandler() *Handler {
	return New(nil, slog.Default())
}

func TestOverviewRequiresAdmin(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/overview", nil)
	req.Header.Set("X-Role", "seller")
	rec := httptest.NewRecorder()

	h.Overview(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDailyRejectsBadDates(t *testing.T) {
	h := newTestHandler()
	cases := []string{
		"?from=not-a-date",
		"?to=2026-13-40",
		"?from=2026-02-10&to=2026-02-01",
		"?from=2020-01-01&to=2026-01-01",
	}
	for _, qs := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/daily"+qs, nil)
		req.Header.Set("X-Role", "admin")
		rec := httptest.NewRecorder()

		h.Daily(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400, got %d", qs, rec.Code)
		}
	}
}

func TestDailyRejectsNonGet(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stats/daily", nil)
	req.Header.Set("X-Role", "admin")
	rec := httptest.NewRecorder()

	h.Daily(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
