package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/electromarket/electromarket/services/stats-service/internal/storage"
)

type Handler struct {
	repo   *storage.Repository
	logger *slog.Logger
}

func New(repo *storage.Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("X-Role") != "admin" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	overview, err := h.repo.GetOverview(r.Context())
	if err != nil {
		h.logger.Error("failed to load overview", "err", err)
		http.Error(w, "failed to load overview", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -29)
	to := now
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
	}
	if to.Before(from) {
		http.Error(w, "to must not be before from", http.StatusBadRequest)
		return
	}
	if to.Sub(from) > 366*24*time.Hour {
		http.Error(w, "range too large", http.StatusBadRequest)
		return
	}

	rows, err := h.repo.ListDaily(r.Context(), from, to, r.URL.Query().Get("seller_id"))
	if err != nil {
		h.logger.Error("failed to load daily stats", "err", err)
		http.Error(w, "failed to load daily stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": rows})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
