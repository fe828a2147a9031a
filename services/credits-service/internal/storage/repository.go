package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/electromarket/electromarket/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

type Balance struct {
	UserID    string
	Credits   int
	UpdatedAt time.Time
}

// GetBalanceForUpdate locks the balance row so concurrent purchases and
// deductions serialize per user.
func (r *Repository) GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, userID string) (Balance, bool, error) {
	var b Balance
	err := tx.QueryRow(ctx, `
		SELECT user_id::text, credits, updated_at
		FROM credit_balances
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&b.UserID, &b.Credits, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{}, false, nil
		}
		return Balance{}, false, err
	}
	return b, true, nil
}

func (r *Repository) GetBalance(ctx context.Context, userID string) (Balance, error) {
	var b Balance
	err := r.pool.QueryRow(ctx, `
		SELECT user_id::text, credits, updated_at
		FROM credit_balances
		WHERE user_id = $1
	`, userID).Scan(&b.UserID, &b.Credits, &b.UpdatedAt)
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}

func (r *Repository) UpsertBalance(ctx context.Context, tx pgx.Tx, userID string, credits int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO credit_balances (user_id, credits)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET credits = EXCLUDED.credits, updated_at = now()
	`, userID, credits)
	return err
}

type LedgerEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Delta     int       `json:"delta"`
	Kind      string    `json:"kind"` // purchase | deduction
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Repository) InsertLedgerEntry(ctx context.Context, tx pgx.Tx, e LedgerEntry) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO credit_ledger (id, user_id, delta, kind, reference)
		VALUES ($1, $2, $3, $4, $5)
	`, id, e.UserID, e.Delta, e.Kind, nullIfEmpty(e.Reference))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListLedger(ctx context.Context, userID string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, user_id::text, delta, kind, COALESCE(reference, ''), created_at
		FROM credit_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Kind, &e.Reference, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type CheckoutSession struct {
	StripeSessionID string
	UserID          string
	Pack            string
	Credits         int
	Status          string
	URL             string
	ReturnToken     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	CanceledAt      *time.Time
	ReturnSeenAt    *time.Time
	ExpiredAt       *time.Time
}

func (r *Repository) UpsertCheckoutSession(ctx context.Context, tx pgx.Tx, s CheckoutSession) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO checkout_sessions (stripe_session_id, user_id, pack, credits, status, url, return_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stripe_session_id)
		DO UPDATE SET user_id = EXCLUDED.user_id,
		              pack = EXCLUDED.pack,
		              credits = EXCLUDED.credits,
		              status = EXCLUDED.status,
		              url = EXCLUDED.url,
		              updated_at = now()
	`, s.StripeSessionID, s.UserID, s.Pack, s.Credits, s.Status, nullIfEmpty(s.URL), nullIfEmpty(s.ReturnToken))
	return err
}

func (r *Repository) MarkCheckoutSessionCompleted(ctx context.Context, tx pgx.Tx, stripeSessionID string, completedAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE checkout_sessions
		SET status = 'completed',
		    completed_at = $2,
		    updated_at = now()
		WHERE stripe_session_id = $1
	`, stripeSessionID, completedAt)
	return err
}

func (r *Repository) MarkCheckoutSessionExpired(ctx context.Context, tx pgx.Tx, stripeSessionID string, expiredAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE checkout_sessions
		SET status = 'expired',
		    expired_at = $2,
		    updated_at = now()
		WHERE stripe_session_id = $1 AND status <> 'completed'
	`, stripeSessionID, expiredAt)
	return err
}

func (r *Repository) AckCheckoutReturn(ctx context.Context, tx pgx.Tx, stripeSessionID string, token string, result string, seenAt time.Time) error {
	// Token protects the public return endpoint from tampering with other
	// sessions. A cancel ack never overrides a completed session; the Stripe
	// webhook is the source of truth.
	if strings.TrimSpace(result) == "" {
		result = "unknown"
	}
	_, err := tx.Exec(ctx, `
		UPDATE checkout_sessions
		SET return_seen_at = $4,
		    status = CASE
		      WHEN $3 = 'cancel' AND status <> 'completed' THEN 'canceled'
		      ELSE status
		    END,
		    canceled_at = CASE
		      WHEN $3 = 'cancel' AND status <> 'completed' THEN COALESCE(canceled_at, $4)
		      ELSE canceled_at
		    END,
		    updated_at = now()
		WHERE stripe_session_id = $1 AND return_token = $2
	`, stripeSessionID, token, result, seenAt)
	return err
}

func (r *Repository) GetCheckoutSession(ctx context.Context, stripeSessionID string) (CheckoutSession, error) {
	var s CheckoutSession
	err := r.pool.QueryRow(ctx, `
		SELECT stripe_session_id, user_id::text, pack, credits, status,
		       COALESCE(url, ''), COALESCE(return_token, ''),
		       created_at, updated_at, completed_at, canceled_at, return_seen_at, expired_at
		FROM checkout_sessions
		WHERE stripe_session_id = $1
	`, stripeSessionID).Scan(
		&s.StripeSessionID,
		&s.UserID,
		&s.Pack,
		&s.Credits,
		&s.Status,
		&s.URL,
		&s.ReturnToken,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.CompletedAt,
		&s.CanceledAt,
		&s.ReturnSeenAt,
		&s.ExpiredAt,
	)
	if err != nil {
		return CheckoutSession{}, err
	}
	return s, nil
}

// ListStaleCheckoutSessions returns created sessions older than cutoff, for
// the reconciler to settle against Stripe.
func (r *Repository) ListStaleCheckoutSessions(ctx context.Context, cutoff time.Time, limit int) ([]CheckoutSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT stripe_session_id, user_id::text, pack, credits, status,
		       COALESCE(url, ''), COALESCE(return_token, ''),
		       created_at, updated_at, completed_at, canceled_at, return_seen_at, expired_at
		FROM checkout_sessions
		WHERE status = 'created' AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CheckoutSession
	for rows.Next() {
		var s CheckoutSession
		if err := rows.Scan(
			&s.StripeSessionID,
			&s.UserID,
			&s.Pack,
			&s.Credits,
			&s.Status,
			&s.URL,
			&s.ReturnToken,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.CompletedAt,
			&s.CanceledAt,
			&s.ReturnSeenAt,
			&s.ExpiredAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type ProviderEvent struct {
	Provider        string
	ProviderEventID string
	EventType       string
	Payload         []byte
}

var ErrDuplicateProviderEvent = errors.New("duplicate provider event")

func (r *Repository) InsertProviderEvent(ctx context.Context, tx pgx.Tx, evt ProviderEvent) error {
	var payload any
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO provider_events (provider, provider_event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, provider_event_id) DO NOTHING
	`, evt.Provider, evt.ProviderEventID, evt.EventType, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateProviderEvent
	}
	return nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
