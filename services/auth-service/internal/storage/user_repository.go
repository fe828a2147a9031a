package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/electromarket/electromarket/libs/db"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	DisplayName  string
}

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user User) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, status, display_name)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, user.PasswordHash, user.Role, user.Status, user.DisplayName)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, role, status, COALESCE(display_name, '')
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.Status, &user.DisplayName)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, role, status, COALESCE(display_name, '')
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.Status, &user.DisplayName)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// SetStatusTx flips a user between active and suspended; no rows means the
// user does not exist.
func (r *UserRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, id string, status string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
