package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/electromarket/electromarket/libs/eventx"
	"github.com/electromarket/electromarket/services/catalog-service/internal/model"
	"github.com/electromarket/electromarket/services/catalog-service/internal/storage"
)

type Handler struct {
	repo       *storage.Repository
	outboxRepo *eventx.OutboxRepository
	logger     *slog.Logger
}

func New(repo *storage.Repository, outboxRepo *eventx.OutboxRepository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, outboxRepo: outboxRepo, logger: logger}
}

func userFromHeaders(r *http.Request) (id string, role string) {
	return strings.TrimSpace(r.Header.Get("X-User-Id")), strings.TrimSpace(r.Header.Get("X-Role"))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := userFromHeaders(r)
	if sellerID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		CategoryID     string `json:"category_id"`
		MeetingPointID string `json:"meeting_point_id"`
		Title          string `json:"title"`
		Description    string `json:"description"`
		PriceCredits   int    `json:"price_credits"`
		Stock          int    `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if req.PriceCredits < 0 || req.Stock < 0 {
		http.Error(w, "price_credits and stock must be non-negative", http.StatusBadRequest)
		return
	}

	p := &model.Product{
		SellerID:       sellerID,
		CategoryID:     strings.TrimSpace(req.CategoryID),
		MeetingPointID: strings.TrimSpace(req.MeetingPointID),
		Title:          req.Title,
		Description:    req.Description,
		PriceCredits:   req.PriceCredits,
		Stock:          req.Stock,
		Status:         model.ListingPending,
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.repo.CreateProduct(ctx, tx, p)
	if err != nil {
		http.Error(w, "failed to create product", http.StatusInternalServerError)
		return
	}
	p.ID = id

	if err := h.insertProductEvent(ctx, tx, p); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "status": model.ListingPending})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	sellerID, _ := userFromHeaders(r)
	if sellerID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		ID             string `json:"id"`
		CategoryID     string `json:"category_id"`
		MeetingPointID string `json:"meeting_point_id"`
		Title          string `json:"title"`
		Description    string `json:"description"`
		PriceCredits   int    `json:"price_credits"`
		Stock          int    `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Title = strings.TrimSpace(req.Title)
	if req.ID == "" || req.Title == "" {
		http.Error(w, "id and title are required", http.StatusBadRequest)
		return
	}
	if req.PriceCredits < 0 || req.Stock < 0 {
		http.Error(w, "price_credits and stock must be non-negative", http.StatusBadRequest)
		return
	}

	p := &model.Product{
		ID:             req.ID,
		SellerID:       sellerID,
		CategoryID:     strings.TrimSpace(req.CategoryID),
		MeetingPointID: strings.TrimSpace(req.MeetingPointID),
		Title:          req.Title,
		Description:    strings.TrimSpace(req.Description),
		PriceCredits:   req.PriceCredits,
		Stock:          req.Stock,
		Status:         model.ListingPending,
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.UpdateProduct(ctx, tx, p); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update product", http.StatusInternalServerError)
		return
	}
	if err := h.insertProductEvent(ctx, tx, p); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	p, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	userID, role := userFromHeaders(r)
	q := r.URL.Query()

	f := storage.ProductFilter{
		SellerID:   strings.TrimSpace(q.Get("seller_id")),
		CategoryID: strings.TrimSpace(q.Get("category_id")),
		Status:     strings.TrimSpace(q.Get("status")),
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.Limit = n
		}
	}

	// Public browse only sees approved listings. Sellers see all of their
	// own; admins see everything.
	ownListings := userID != "" && f.SellerID == userID
	if role != "admin" && !ownListings {
		f.Status = model.ListingApproved
	}

	products, err := h.repo.ListProducts(r.Context(), f)
	if err != nil {
		http.Error(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) ModerateProduct(w http.ResponseWriter, r *http.Request) {
	_, role := userFromHeaders(r)
	if role != "admin" {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Decision  string `json:"decision"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.Decision = strings.TrimSpace(req.Decision)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.ProductID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	var status string
	switch req.Decision {
	case "approve":
		status = model.ListingApproved
	case "reject":
		status = model.ListingRejected
		if req.Reason == "" {
			http.Error(w, "reason is required when rejecting", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "decision must be approve or reject", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := h.repo.GetProductTx(ctx, tx, req.ProductID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}

	if err := h.repo.ModerateProduct(ctx, tx, req.ProductID, status, req.Reason); err != nil {
		http.Error(w, "failed to moderate product", http.StatusInternalServerError)
		return
	}
	p.Status = status
	p.RejectionReason = req.Reason

	if err := h.insertProductEvent(ctx, tx, &p); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if status == model.ListingApproved {
		payload, err := json.Marshal(map[string]any{
			"product_id": p.ID,
			"seller_id":  p.SellerID,
			"title":      p.Title,
		})
		if err != nil {
			http.Error(w, "failed to build event payload", http.StatusInternalServerError)
			return
		}
		if err := h.outboxRepo.Insert(ctx, tx, eventx.Event{
			AggregateType: "product",
			AggregateID:   p.ID,
			EventType:     "catalog.listing.approved.v1",
			Payload:       payload,
		}); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"product_id": p.ID, "status": status})
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	_, role := userFromHeaders(r)
	switch r.Method {
	case http.MethodGet:
		items, err := h.repo.ListCategories(r.Context(), role == "admin")
		if err != nil {
			http.Error(w, "failed to list categories", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []model.Category{}
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		if role != "admin" {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		var req struct {
			Name   string `json:"name"`
			Active *bool  `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}
		id, err := h.repo.CreateCategory(r.Context(), req.Name, active)
		if err != nil {
			if storage.IsDuplicate(err) {
				http.Error(w, "category already exists", http.StatusConflict)
				return
			}
			http.Error(w, "failed to create category", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	case http.MethodPut:
		if role != "admin" {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		var req struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Active bool   `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.ID = strings.TrimSpace(req.ID)
		req.Name = strings.TrimSpace(req.Name)
		if req.ID == "" || req.Name == "" {
			http.Error(w, "id and name are required", http.StatusBadRequest)
			return
		}
		if err := h.repo.UpdateCategory(r.Context(), req.ID, req.Name, req.Active); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "category not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to update category", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if role != "admin" {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "category not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to delete category", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) MeetingPoints(w http.ResponseWriter, r *http.Request) {
	_, role := userFromHeaders(r)
	switch r.Method {
	case http.MethodGet:
		items, err := h.repo.ListMeetingPoints(r.Context(), role == "admin")
		if err != nil {
			http.Error(w, "failed to list meeting points", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []model.MeetingPoint{}
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		if role != "admin" {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		var req model.MeetingPoint
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Address = strings.TrimSpace(req.Address)
		if req.Name == "" || req.Address == "" {
			http.Error(w, "name and address are required", http.StatusBadRequest)
			return
		}
		req.Active = true
		id, err := h.repo.CreateMeetingPoint(r.Context(), req)
		if err != nil {
			http.Error(w, "failed to create meeting point", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	case http.MethodDelete:
		if role != "admin" {
			http.Error(w, "admin role required", http.StatusForbidden)
			return
		}
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if err := h.repo.DeleteMeetingPoint(r.Context(), id); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "meeting point not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to delete meeting point", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sellerID := strings.TrimSpace(r.URL.Query().Get("seller_id"))
		if sellerID == "" {
			sellerID, _ = userFromHeaders(r)
		}
		if sellerID == "" {
			http.Error(w, "seller_id is required", http.StatusBadRequest)
			return
		}
		rules, err := h.repo.ListAvailabilityRules(r.Context(), sellerID)
		if err != nil {
			http.Error(w, "failed to list availability", http.StatusInternalServerError)
			return
		}
		if rules == nil {
			rules = []model.AvailabilityRule{}
		}
		writeJSON(w, http.StatusOK, rules)
	case http.MethodPut:
		sellerID, _ := userFromHeaders(r)
		if sellerID == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		var req struct {
			Rules []model.AvailabilityRule `json:"rules"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if msg := validateRules(req.Rules); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		tx, err := h.repo.Begin(ctx)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := h.repo.ReplaceAvailabilityRules(ctx, tx, sellerID, req.Rules); err != nil {
			http.Error(w, "failed to update availability", http.StatusInternalServerError)
			return
		}
		payload, err := json.Marshal(map[string]any{
			"seller_id": sellerID,
			"rules":     req.Rules,
		})
		if err != nil {
			http.Error(w, "failed to build event payload", http.StatusInternalServerError)
			return
		}
		if err := h.outboxRepo.Insert(ctx, tx, eventx.Event{
			AggregateType: "seller_availability",
			AggregateID:   sellerID,
			EventType:     "catalog.availability.updated.v1",
			Payload:       payload,
		}); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(ctx); err != nil {
			http.Error(w, "failed to commit", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) CreateRating(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	buyerID, _ := userFromHeaders(r)
	if buyerID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		SellerID      string `json:"seller_id"`
		AppointmentID string `json:"appointment_id"`
		Score         int    `json:"score"`
		Comment       string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.SellerID = strings.TrimSpace(req.SellerID)
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.SellerID == "" || req.AppointmentID == "" {
		http.Error(w, "seller_id and appointment_id are required", http.StatusBadRequest)
		return
	}
	if req.Score < 1 || req.Score > 5 {
		http.Error(w, "score must be between 1 and 5", http.StatusBadRequest)
		return
	}

	rating := &model.Rating{
		SellerID:      req.SellerID,
		BuyerID:       buyerID,
		AppointmentID: req.AppointmentID,
		Score:         req.Score,
		Comment:       strings.TrimSpace(req.Comment),
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.repo.CreateRating(ctx, tx, rating)
	if err != nil {
		if storage.IsDuplicate(err) {
			http.Error(w, "appointment already rated", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create rating", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"rating_id":      id,
		"seller_id":      rating.SellerID,
		"buyer_id":       rating.BuyerID,
		"appointment_id": rating.AppointmentID,
		"score":          rating.Score,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, eventx.Event{
		AggregateType: "rating",
		AggregateID:   id,
		EventType:     "catalog.rating.created.v1",
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sellerID := strings.TrimSpace(r.URL.Query().Get("seller_id"))
	if sellerID == "" {
		http.Error(w, "seller_id is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	ratings, err := h.repo.ListRatings(r.Context(), sellerID, limit)
	if err != nil {
		http.Error(w, "failed to list ratings", http.StatusInternalServerError)
		return
	}
	if ratings == nil {
		ratings = []model.Rating{}
	}
	summary, err := h.repo.RatingSummary(r.Context(), sellerID)
	if err != nil {
		http.Error(w, "failed to load rating summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"ratings": ratings,
	})
}

// insertProductEvent writes the snapshot event consumed by meeting-service's
// product projection.
func (h *Handler) insertProductEvent(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	payload, err := json.Marshal(map[string]any{
		"product_id":    p.ID,
		"seller_id":     p.SellerID,
		"title":         p.Title,
		"stock":         p.Stock,
		"price_credits": p.PriceCredits,
		"status":        p.Status,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, eventx.Event{
		AggregateType: "product",
		AggregateID:   p.ID,
		EventType:     "catalog.product.updated.v1",
		Payload:       payload,
	})
}

func validateRules(rules []model.AvailabilityRule) string {
	if len(rules) > 50 {
		return "too many rules"
	}
	for _, rule := range rules {
		if rule.Weekday < 0 || rule.Weekday > 6 {
			return "weekday must be between 0 and 6"
		}
		if rule.StartMinute < 0 || rule.StartMinute >= 1440 {
			return "start_minute out of range"
		}
		if rule.EndMinute <= 0 || rule.EndMinute > 1440 {
			return "end_minute out of range"
		}
		if rule.StartMinute >= rule.EndMinute {
			return "start_minute must be before end_minute"
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
