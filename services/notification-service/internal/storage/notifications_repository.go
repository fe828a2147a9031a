package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/electromarket/electromarket/libs/db"
)

type Notification struct {
	AppointmentID string
	UserID        string
	Channel       string
	Recipient     string
	Payload       map[string]any
	Status        string
}

type Contact struct {
	UserID string
	Email  string
	Phone  string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO notifications (appointment_id, user_id, channel, recipient, payload, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.AppointmentID, n.UserID, n.Channel, n.Recipient, payload, n.Status)
	return err
}

// UpsertContact maintains the projection fed by auth.user.created.v1.
func (r *Repository) UpsertContact(ctx context.Context, c Contact) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_contacts (user_id, email, phone)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (user_id)
		DO UPDATE SET email = EXCLUDED.email, phone = EXCLUDED.phone, updated_at = now()
	`, c.UserID, c.Email, c.Phone)
	return err
}

func (r *Repository) GetContact(ctx context.Context, userID string) (Contact, error) {
	var c Contact
	err := r.pool.QueryRow(ctx, `
		SELECT user_id::text, email, COALESCE(phone, '')
		FROM user_contacts
		WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.Email, &c.Phone)
	if err != nil {
		return Contact{}, err
	}
	return c, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
