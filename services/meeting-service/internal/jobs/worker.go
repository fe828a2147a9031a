package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/electromarket/electromarket/libs/db"
	"github.com/electromarket/electromarket/libs/eventx"
	otelx "github.com/electromarket/electromarket/libs/otel"
	"github.com/electromarket/electromarket/services/meeting-service/internal/model"
)

// Worker runs two periodic sweeps in one loop: expiring pending appointments
// that the seller never confirmed, and emitting due meeting reminders.
type Worker struct {
	pool      *db.Pool
	repo      *Repository
	outbox    *eventx.OutboxRepository
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	backoff   time.Duration
}

type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
	Backoff   time.Duration
}

func NewWorker(pool *db.Pool, repo *Repository, outboxRepo *eventx.OutboxRepository, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 1 * time.Minute
	}
	return &Worker{
		pool:      pool,
		repo:      repo,
		outbox:    outboxRepo,
		logger:    logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		backoff:   cfg.Backoff,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.expireBatch(ctx); err != nil {
				w.logger.Error("expiry batch failed", "err", err)
			}
			if err := w.reminderBatch(ctx); err != nil {
				w.logger.Error("reminder batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) expireBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appts, err := w.repo.FetchExpiredPending(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}
	if len(appts) == 0 {
		return tx.Commit(ctx)
	}

	var ids []string
	for _, appt := range appts {
		payload, err := json.Marshal(map[string]any{
			"appointment_id": appt.ID,
			"product_id":     appt.ProductID,
			"seller_id":      appt.SellerID,
			"buyer_id":       appt.BuyerID,
			"meeting_date":   appt.MeetingDate.Format("2006-01-02"),
			"meeting_time":   appt.MeetingTime,
			"quantity":       appt.Quantity,
			"expired_at":     time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
		if err := w.outbox.Insert(ctx, tx, eventx.Event{
			AggregateType: "appointment",
			AggregateID:   appt.ID,
			EventType:     "meeting.appointment.expired.v1",
			Payload:       payload,
		}); err != nil {
			return err
		}
		ids = append(ids, appt.ID)
	}

	if err := w.repo.MarkExpired(ctx, tx, ids); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	w.logger.Info("expired unconfirmed appointments", "count", len(ids))
	return nil
}

func (w *Worker) reminderBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rems, err := w.repo.FetchDueReminders(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}
	if len(rems) == 0 {
		return tx.Commit(ctx)
	}

	var ids []int64
	var failed []Reminder
	for _, rem := range rems {
		remCtx := otelx.ContextWithTraceContext(ctx, rem.Traceparent, rem.Tracestate)
		payload, err := json.Marshal(map[string]any{
			"appointment_id": rem.AppointmentID,
			"buyer_id":       rem.BuyerID,
			"seller_id":      rem.SellerID,
			"product_id":     rem.ProductID,
			"remind_at":      rem.RemindAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			failed = append(failed, rem)
			continue
		}
		if err := w.outbox.Insert(remCtx, tx, eventx.Event{
			AggregateType: "appointment",
			AggregateID:   rem.AppointmentID,
			EventType:     "meeting.reminder.due.v1",
			Payload:       payload,
		}); err != nil {
			failed = append(failed, rem)
			continue
		}
		ids = append(ids, rem.ID)
	}

	if err := w.repo.MarkRemindersProcessed(ctx, tx, ids); err != nil {
		return err
	}

	for _, rem := range failed {
		remCtx := otelx.ContextWithTraceContext(ctx, rem.Traceparent, rem.Tracestate)
		nextRunAt := time.Now().UTC().Add(w.backoff)
		attempts := rem.Attempts + 1
		if err := w.repo.MarkReminderFailed(ctx, tx, rem.ID, attempts, rem.MaxAttempts, nextRunAt, "outbox enqueue failed"); err != nil {
			return err
		}
		if attempts >= rem.MaxAttempts {
			if err := w.enqueueDLQ(remCtx, tx, rem, "max attempts reached"); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (w *Worker) enqueueDLQ(ctx context.Context, tx pgx.Tx, rem Reminder, reason string) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": rem.AppointmentID,
		"buyer_id":       rem.BuyerID,
		"seller_id":      rem.SellerID,
		"product_id":     rem.ProductID,
		"remind_at":      rem.RemindAt.UTC().Format(time.RFC3339),
		"error_reason":   reason,
		"failed_at":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return w.outbox.Insert(ctx, tx, eventx.Event{
		AggregateType: "appointment",
		AggregateID:   rem.AppointmentID,
		EventType:     "meeting.reminder.dlq.v1",
		Payload:       payload,
	})
}

// ReminderFor computes when a confirmed appointment's reminder should fire.
func ReminderFor(appt model.Appointment, startMinute int, offset time.Duration) time.Time {
	d := appt.MeetingDate
	start := time.Date(d.Year(), d.Month(), d.Day(), startMinute/60, startMinute%60, 0, 0, d.Location())
	return start.Add(-offset)
}
