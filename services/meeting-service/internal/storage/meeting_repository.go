package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/electromarket/electromarket/libs/db"
	"github.com/electromarket/electromarket/services/meeting-service/internal/model"
)

type MeetingRepository struct {
	pool *db.Pool
}

type IdempotencyRecord struct {
	BuyerID         string
	IdempotencyKey  string
	AppointmentID   string
	StatusCode      int
	ResponsePayload []byte
}

func NewMeetingRepository(pool *db.Pool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

func (r *MeetingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *MeetingRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, buyerID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, buyerID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO meeting_idempotency_keys (buyer_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (buyer_id, idempotency_key) DO NOTHING
	`, buyerID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, buyerID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *MeetingRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, buyerID, key, appointmentID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE meeting_idempotency_keys
		SET appointment_id = $3,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE buyer_id = $1 AND idempotency_key = $2
	`, buyerID, key, appointmentID, statusCode, response)
	return err
}

func (r *MeetingRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(product_id, seller_id, buyer_id, meeting_date, meeting_time, quantity, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, appt.ProductID, appt.SellerID, appt.BuyerID, appt.MeetingDate, appt.MeetingTime,
		appt.Quantity, appt.Status, appt.ExpiresAt).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

const appointmentColumns = `
	id, product_id, seller_id, buyer_id, meeting_date, meeting_time, quantity,
	status, expires_at, confirmed_at, cancelled_at, COALESCE(cancellation_reason, ''), created_at
`

func (r *MeetingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, appointmentID string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, appointmentID)
	return scanAppointment(row)
}

func (r *MeetingRepository) Confirm(ctx context.Context, tx pgx.Tx, appointmentID string) (time.Time, error) {
	var confirmedAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'confirmed',
			confirmed_at = now()
		WHERE id = $1
		RETURNING confirmed_at
	`, appointmentID).Scan(&confirmedAt)
	return confirmedAt, err
}

func (r *MeetingRepository) Cancel(ctx context.Context, tx pgx.Tx, appointmentID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $2
		WHERE id = $1
		RETURNING cancelled_at
	`, appointmentID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

func (r *MeetingRepository) ListByUser(ctx context.Context, userID, role string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	column := "buyer_id"
	if role == "seller" {
		column = "seller_id"
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE `+column+` = $1
		ORDER BY meeting_date DESC, meeting_time DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var confirmedAt, cancelledAt *time.Time
	err := row.Scan(
		&appt.ID,
		&appt.ProductID,
		&appt.SellerID,
		&appt.BuyerID,
		&appt.MeetingDate,
		&appt.MeetingTime,
		&appt.Quantity,
		&appt.Status,
		&appt.ExpiresAt,
		&confirmedAt,
		&cancelledAt,
		&appt.CancelReason,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.ConfirmedAt = confirmedAt
	appt.CancelledAt = cancelledAt
	return appt, nil
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (r *MeetingRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, buyerID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT buyer_id::text,
			idempotency_key,
			COALESCE(appointment_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM meeting_idempotency_keys
		WHERE buyer_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, buyerID, key).Scan(
		&rec.BuyerID,
		&rec.IdempotencyKey,
		&rec.AppointmentID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}
