package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	otelx "github.com/electromarket/electromarket/libs/otel"
	"github.com/electromarket/electromarket/services/meeting-service/internal/model"
)

type Reminder struct {
	ID            int64
	AppointmentID string
	BuyerID       string
	SellerID      string
	ProductID     string
	RemindAt      time.Time
	Traceparent   string
	Tracestate    string
	Attempts      int
	MaxAttempts   int
	NextRunAt     time.Time
}

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// FetchExpiredPending locks pending appointments whose confirmation window
// has closed. FOR UPDATE SKIP LOCKED lets multiple instances drain safely.
func (r *Repository) FetchExpiredPending(ctx context.Context, tx pgx.Tx, limit int) ([]model.Appointment, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, product_id, seller_id, buyer_id, meeting_date, meeting_time, quantity,
			status, expires_at, created_at
		FROM appointments
		WHERE status = 'pending' AND expires_at <= now()
		ORDER BY expires_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var appt model.Appointment
		if err := rows.Scan(
			&appt.ID,
			&appt.ProductID,
			&appt.SellerID,
			&appt.BuyerID,
			&appt.MeetingDate,
			&appt.MeetingTime,
			&appt.Quantity,
			&appt.Status,
			&appt.ExpiresAt,
			&appt.CreatedAt,
		); err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *Repository) MarkExpired(ctx context.Context, tx pgx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = 'expired'
		WHERE id = ANY($1)
	`, ids)
	return err
}

func (r *Repository) InsertReminder(ctx context.Context, tx pgx.Tx, rem Reminder) error {
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := tx.Exec(ctx, `
		INSERT INTO meeting_reminders (appointment_id, buyer_id, seller_id, product_id, remind_at, next_run_at, traceparent, tracestate)
		VALUES ($1, $2, $3, $4, $5, $5, $6, $7)
		ON CONFLICT (appointment_id) DO NOTHING
	`, rem.AppointmentID, rem.BuyerID, rem.SellerID, rem.ProductID, rem.RemindAt, traceparent, tracestate)
	return err
}

func (r *Repository) FetchDueReminders(ctx context.Context, tx pgx.Tx, limit int) ([]Reminder, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, appointment_id, buyer_id, seller_id, product_id, remind_at,
			traceparent, tracestate, attempts, max_attempts, next_run_at
		FROM meeting_reminders
		WHERE status = 'pending' AND next_run_at <= now()
		ORDER BY next_run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rems []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.AppointmentID, &rem.BuyerID, &rem.SellerID, &rem.ProductID,
			&rem.RemindAt, &rem.Traceparent, &rem.Tracestate, &rem.Attempts, &rem.MaxAttempts, &rem.NextRunAt); err != nil {
			return nil, err
		}
		rems = append(rems, rem)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rems, nil
}

func (r *Repository) MarkRemindersProcessed(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE meeting_reminders
		SET status = 'processed', updated_at = now()
		WHERE id = ANY($1)
	`, ids)
	return err
}

func (r *Repository) MarkReminderFailed(ctx context.Context, tx pgx.Tx, id int64, attempts int, maxAttempts int, nextRunAt time.Time, lastError string) error {
	status := "pending"
	if attempts >= maxAttempts {
		status = "failed"
	}
	_, err := tx.Exec(ctx, `
		UPDATE meeting_reminders
		SET attempts = $2,
		    status = $3,
		    next_run_at = $4,
		    last_error = $5,
		    updated_at = now()
		WHERE id = $1
	`, id, attempts, status, nextRunAt, lastError)
	return err
}
