package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/electromarket/electromarket/libs/eventx"
	"github.com/electromarket/electromarket/services/meeting-service/internal/availability"
	"github.com/electromarket/electromarket/services/meeting-service/internal/jobs"
	"github.com/electromarket/electromarket/services/meeting-service/internal/model"
	"github.com/electromarket/electromarket/services/meeting-service/internal/scheduling"
	"github.com/electromarket/electromarket/services/meeting-service/internal/storage"
)

type MeetingHandler struct {
	repo           *storage.MeetingRepository
	projections    *storage.ProjectionRepository
	outboxRepo     *eventx.OutboxRepository
	jobsRepo       *jobs.Repository
	logger         *slog.Logger
	scheduling     scheduling.Provider
	pendingTTL     time.Duration
	reminderOffset time.Duration
}

func NewMeetingHandler(
	repo *storage.MeetingRepository,
	projections *storage.ProjectionRepository,
	outboxRepo *eventx.OutboxRepository,
	jobsRepo *jobs.Repository,
	logger *slog.Logger,
	schedulingProvider scheduling.Provider,
	pendingTTL time.Duration,
	reminderOffset time.Duration,
) *MeetingHandler {
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	if reminderOffset <= 0 {
		reminderOffset = time.Hour
	}
	return &MeetingHandler{
		repo:           repo,
		projections:    projections,
		outboxRepo:     outboxRepo,
		jobsRepo:       jobsRepo,
		logger:         logger,
		scheduling:     schedulingProvider,
		pendingTTL:     pendingTTL,
		reminderOffset: reminderOffset,
	}
}

type createMeetingRequest struct {
	ProductID   string `json:"product_id"`
	MeetingDate string `json:"meeting_date"`
	MeetingTime string `json:"meeting_time"`
	Quantity    int    `json:"quantity"`
}

type createMeetingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at"`
}

type confirmMeetingRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type cancelMeetingRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type meetingItem struct {
	AppointmentID string `json:"appointment_id"`
	ProductID     string `json:"product_id"`
	SellerID      string `json:"seller_id"`
	BuyerID       string `json:"buyer_id"`
	MeetingDate   string `json:"meeting_date"`
	MeetingTime   string `json:"meeting_time"`
	Quantity      int    `json:"quantity"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at"`
	ConfirmedAt   string `json:"confirmed_at,omitempty"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type rangeItem struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Active bool   `json:"active"`
}

// Calendar returns the month grid of selectable dates for a product's seller.
func (h *MeetingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID := strings.TrimSpace(r.URL.Query().Get("product_id"))
	if productID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}
	year, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("year")))
	if err != nil || year < 2000 || year > 2200 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	monthNum, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("month")))
	if err != nil || monthNum < 1 || monthNum > 12 {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return
	}

	snap, rules, ok := h.sellerContext(r.Context(), w, productID)
	if !ok {
		return
	}
	_ = snap

	cells := availability.MonthGrid(year, time.Month(monthNum), rules, time.Now().UTC())
	writeJSON(w, http.StatusOK, cells)
}

// Ranges returns the coarse availability windows for a selected date.
func (h *MeetingHandler) Ranges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID := strings.TrimSpace(r.URL.Query().Get("product_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if productID == "" || dateStr == "" {
		http.Error(w, "product_id and date are required", http.StatusBadRequest)
		return
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	_, rules, ok := h.sellerContext(r.Context(), w, productID)
	if !ok {
		return
	}

	ranges := availability.RangesForDate(day, rules, time.Now().UTC())
	items := make([]rangeItem, 0, len(ranges))
	for _, rng := range ranges {
		items = append(items, rangeItem{
			Start:  availability.FormatMinute(rng.StartMinute),
			End:    availability.FormatMinute(rng.EndMinute),
			Active: rng.Active,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// Slots returns the discrete bookable instants within one coarse range.
func (h *MeetingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID := strings.TrimSpace(r.URL.Query().Get("product_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	startStr := strings.TrimSpace(r.URL.Query().Get("start"))
	endStr := strings.TrimSpace(r.URL.Query().Get("end"))
	if productID == "" || dateStr == "" || startStr == "" || endStr == "" {
		http.Error(w, "product_id, date, start, and end are required", http.StatusBadRequest)
		return
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	startMin, err := availability.ParseMinute(startStr)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	endMin, err := availability.ParseMinute(endStr)
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}

	_, rules, ok := h.sellerContext(r.Context(), w, productID)
	if !ok {
		return
	}

	// The queried range must be one the seller actually configured for that
	// weekday; otherwise arbitrary windows could be enumerated.
	now := time.Now().UTC()
	var matched *availability.Rule
	for _, rng := range availability.RangesForDate(day, rules, now) {
		if rng.StartMinute == startMin && rng.EndMinute == endMin {
			matched = &rng
			break
		}
	}
	if matched == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}

	slots := availability.Slots(*matched, day, now)
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	buyerID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if buyerID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.MeetingDate), time.UTC)
	if err != nil {
		http.Error(w, "invalid meeting_date", http.StatusBadRequest)
		return
	}

	snap, rules, ok := h.sellerContext(r.Context(), w, req.ProductID)
	if !ok {
		return
	}
	if snap.SellerID == buyerID {
		http.Error(w, "cannot book a meeting for your own product", http.StatusConflict)
		return
	}
	if snap.Status != "" && snap.Status != "approved" {
		http.Error(w, "product is not available for meetings", http.StatusConflict)
		return
	}

	now := time.Now().UTC()
	violations := validateSelection(rules, day, strings.TrimSpace(req.MeetingTime), req.Quantity, snap.Stock, now)
	if len(violations) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"violations": violations})
		return
	}

	appt := &model.Appointment{
		ProductID:   req.ProductID,
		SellerID:    snap.SellerID,
		BuyerID:     buyerID,
		MeetingDate: day,
		MeetingTime: strings.TrimSpace(req.MeetingTime),
		Quantity:    req.Quantity,
		Status:      model.StatusPending,
		ExpiresAt:   now.Add(h.pendingTTL),
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, buyerID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.AppointmentID != "" && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			if len(rec.ResponsePayload) > 0 {
				_, _ = w.Write(rec.ResponsePayload)
				return
			}
			_ = json.NewEncoder(w).Encode(createMeetingResponse{AppointmentID: rec.AppointmentID})
			return
		}
	}

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "meeting slot already requested", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"product_id":     appt.ProductID,
		"seller_id":      appt.SellerID,
		"buyer_id":       appt.BuyerID,
		"meeting_date":   appt.MeetingDate.Format("2006-01-02"),
		"meeting_time":   appt.MeetingTime,
		"quantity":       appt.Quantity,
		"expires_at":     appt.ExpiresAt.Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, eventx.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     "meeting.appointment.requested.v1",
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(createMeetingResponse{
		AppointmentID: id,
		Status:        model.StatusPending,
		ExpiresAt:     appt.ExpiresAt.Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, buyerID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *MeetingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sellerID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if sellerID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req confirmMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if appt.SellerID != sellerID {
		http.Error(w, "appointment belongs to another seller", http.StatusForbidden)
		return
	}
	if appt.Status == model.StatusConfirmed && appt.ConfirmedAt != nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"appointment_id": appt.ID,
			"status":         model.StatusConfirmed,
			"confirmed_at":   appt.ConfirmedAt.UTC().Format(time.RFC3339),
		})
		return
	}
	if appt.Status != model.StatusPending {
		http.Error(w, "appointment cannot be confirmed", http.StatusConflict)
		return
	}

	now := time.Now().UTC()
	if now.After(appt.ExpiresAt) {
		// The expiry sweep will pick it up; refuse rather than racing it.
		http.Error(w, "confirmation window has elapsed", http.StatusConflict)
		return
	}

	snap, err := h.projections.ProductSnapshot(ctx, appt.ProductID)
	if err != nil && !storage.IsNotFound(err) {
		http.Error(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	var violations []string
	if err == nil && appt.Quantity > snap.Stock {
		violations = append(violations, "requested quantity exceeds current stock")
	}
	cost := snap.PriceCredits * appt.Quantity
	balance, known, err := h.projections.CreditBalance(ctx, appt.BuyerID)
	if err != nil {
		http.Error(w, "failed to load buyer balance", http.StatusInternalServerError)
		return
	}
	if known && cost > 0 && balance < cost {
		violations = append(violations, "buyer has insufficient credits")
	}
	if len(violations) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"violations": violations})
		return
	}

	confirmedAt, err := h.repo.Confirm(ctx, tx, appt.ID)
	if err != nil {
		http.Error(w, "failed to confirm appointment", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id":  appt.ID,
		"product_id":      appt.ProductID,
		"seller_id":       appt.SellerID,
		"buyer_id":        appt.BuyerID,
		"meeting_date":    appt.MeetingDate.Format("2006-01-02"),
		"meeting_time":    appt.MeetingTime,
		"quantity":        appt.Quantity,
		"credits_charged": cost,
		"confirmed_at":    confirmedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, eventx.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "meeting.appointment.confirmed.v1",
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if startMin, perr := availability.ParseMinute(appt.MeetingTime); perr == nil {
		remindAt := jobs.ReminderFor(appt, startMin, h.reminderOffset)
		if remindAt.After(now) {
			if err := h.jobsRepo.InsertReminder(ctx, tx, jobs.Reminder{
				AppointmentID: appt.ID,
				BuyerID:       appt.BuyerID,
				SellerID:      appt.SellerID,
				ProductID:     appt.ProductID,
				RemindAt:      remindAt,
			}); err != nil {
				h.logger.Error("failed to enqueue reminder", "err", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"appointment_id": appt.ID,
		"status":         model.StatusConfirmed,
		"confirmed_at":   confirmedAt.UTC().Format(time.RFC3339),
	})
}

func (h *MeetingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req cancelMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if appt.BuyerID != userID && appt.SellerID != userID {
		http.Error(w, "appointment belongs to another user", http.StatusForbidden)
		return
	}
	if appt.Status == model.StatusCancelled && appt.CancelledAt != nil {
		h.writeCancelResponse(w, appt.ID, appt.CancelledAt.UTC())
		return
	}
	if appt.Status != model.StatusPending && appt.Status != model.StatusConfirmed {
		http.Error(w, "appointment cannot be cancelled", http.StatusConflict)
		return
	}
	wasConfirmed := appt.Status == model.StatusConfirmed

	cancelledAt, err := h.repo.Cancel(ctx, tx, appt.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"product_id":     appt.ProductID,
		"seller_id":      appt.SellerID,
		"buyer_id":       appt.BuyerID,
		"quantity":       appt.Quantity,
		"was_confirmed":  wasConfirmed,
		"cancelled_by":   userID,
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         req.Reason,
	})
	if err != nil {
		http.Error(w, "failed to build cancellation event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, eventx.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "meeting.appointment.cancelled.v1",
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeCancelResponse(w, appt.ID, cancelledAt.UTC())
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	role := strings.TrimSpace(r.URL.Query().Get("role"))
	if role != "seller" {
		role = "buyer"
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	appts, err := h.repo.ListByUser(r.Context(), userID, role, limit)
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]meetingItem, 0, len(appts))
	for _, appt := range appts {
		item := meetingItem{
			AppointmentID: appt.ID,
			ProductID:     appt.ProductID,
			SellerID:      appt.SellerID,
			BuyerID:       appt.BuyerID,
			MeetingDate:   appt.MeetingDate.Format("2006-01-02"),
			MeetingTime:   appt.MeetingTime,
			Quantity:      appt.Quantity,
			Status:        appt.Status,
			ExpiresAt:     appt.ExpiresAt.UTC().Format(time.RFC3339),
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.ConfirmedAt != nil {
			item.ConfirmedAt = appt.ConfirmedAt.UTC().Format(time.RFC3339)
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// sellerContext resolves the product snapshot and the seller's availability
// rules, preferring the catalog gRPC provider and falling back to local
// projections. Writes the error response itself when resolution fails.
func (h *MeetingHandler) sellerContext(ctx context.Context, w http.ResponseWriter, productID string) (model.ProductSnapshot, []availability.Rule, bool) {
	var snap model.ProductSnapshot
	var err error

	if h.scheduling != nil {
		reqCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		snap, err = h.scheduling.GetProduct(reqCtx, productID)
		cancel()
		if err != nil {
			h.logger.Warn("catalog product fetch failed; falling back to projection", "err", err)
		}
	}
	if h.scheduling == nil || err != nil {
		snap, err = h.projections.ProductSnapshot(ctx, productID)
		if err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "product not found", http.StatusNotFound)
				return model.ProductSnapshot{}, nil, false
			}
			http.Error(w, "failed to load product", http.StatusInternalServerError)
			return model.ProductSnapshot{}, nil, false
		}
	}

	var rules []availability.Rule
	if h.scheduling != nil {
		reqCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		rules, err = h.scheduling.GetSellerAvailability(reqCtx, snap.SellerID)
		cancel()
		if err != nil {
			h.logger.Warn("catalog availability fetch failed; falling back to projection", "err", err)
		}
	}
	if h.scheduling == nil || err != nil {
		rules, err = h.projections.AvailabilityRules(ctx, snap.SellerID)
		if err != nil {
			http.Error(w, "failed to load availability", http.StatusInternalServerError)
			return model.ProductSnapshot{}, nil, false
		}
	}
	return snap, rules, true
}

// validateSelection walks the full selection flow for a meeting request and
// returns every violated precondition at once.
func validateSelection(rules []availability.Rule, day time.Time, instant string, quantity, stock int, now time.Time) []string {
	sel := availability.NewSelection(rules)
	sel.SelectDate(day)
	sel.SetQuantity(quantity)

	var extra []string
	if m, err := availability.ParseMinute(instant); err != nil {
		extra = append(extra, "invalid meeting time")
	} else {
		for _, rng := range availability.RangesForDate(day, rules, now) {
			if m < rng.StartMinute || m >= rng.EndMinute {
				continue
			}
			_ = sel.SelectRange(rng)
			for _, s := range availability.Slots(rng, day, now) {
				if s == instant {
					_ = sel.SelectInstant(s)
					break
				}
			}
			break
		}
		if sel.State() == availability.StateRangeSelected {
			extra = append(extra, "meeting time is not offerable")
		}
	}

	violations := sel.Confirm(stock, now)
	return append(violations, extra...)
}

func (h *MeetingHandler) writeCancelResponse(w http.ResponseWriter, appointmentID string, cancelledAt time.Time) {
	writeJSON(w, http.StatusOK, map[string]string{
		"appointment_id": appointmentID,
		"status":         model.StatusCancelled,
		"cancelled_at":   cancelledAt.Format(time.RFC3339),
	})
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
