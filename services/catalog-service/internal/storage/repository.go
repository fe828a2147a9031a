package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/electromarket/electromarket/libs/db"
	"github.com/electromarket/electromarket/services/catalog-service/internal/model"
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

var ErrInsufficientStock = errors.New("insufficient stock")

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const productColumns = `
	id::text, seller_id::text, COALESCE(category_id::text, ''), COALESCE(meeting_point_id::text, ''),
	title, description, price_credits, stock, status, COALESCE(rejection_reason, ''), created_at, updated_at
`

func (r *Repository) CreateProduct(ctx context.Context, tx pgx.Tx, p *model.Product) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO products (id, seller_id, category_id, meeting_point_id, title, description, price_credits, stock, status)
		VALUES ($1, $2, NULLIF($3, '')::uuid, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9)
	`, id, p.SellerID, p.CategoryID, p.MeetingPointID, p.Title, p.Description, p.PriceCredits, p.Stock, p.Status)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET category_id = NULLIF($3, '')::uuid,
			meeting_point_id = NULLIF($4, '')::uuid,
			title = $5,
			description = $6,
			price_credits = $7,
			stock = $8,
			status = 'pending',
			rejection_reason = NULL,
			updated_at = now()
		WHERE id = $1 AND seller_id = $2
	`, p.ID, p.SellerID, p.CategoryID, p.MeetingPointID, p.Title, p.Description, p.PriceCredits, p.Stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, productID)
	return scanProduct(row)
}

func (r *Repository) GetProductTx(ctx context.Context, tx pgx.Tx, productID string) (model.Product, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, productID)
	return scanProduct(row)
}

type ProductFilter struct {
	SellerID   string
	CategoryID string
	Status     string
	Limit      int
}

func (r *Repository) ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR seller_id::text = $1)
			AND ($2 = '' OR category_id::text = $2)
			AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, f.SellerID, f.CategoryID, f.Status, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// DecrementStock subtracts qty wherever stock allows; a zero-row update means
// the remaining stock no longer covers the confirmed quantity.
func (r *Repository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2,
			updated_at = now()
		WHERE id = $1 AND stock >= $2
	`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *Repository) ModerateProduct(ctx context.Context, tx pgx.Tx, productID, status, reason string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET status = $2,
			rejection_reason = NULLIF($3, ''),
			updated_at = now()
		WHERE id = $1
	`, productID, status, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.SellerID,
		&p.CategoryID,
		&p.MeetingPointID,
		&p.Title,
		&p.Description,
		&p.PriceCredits,
		&p.Stock,
		&p.Status,
		&p.RejectionReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *Repository) CreateCategory(ctx context.Context, name string, active bool) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, name, active)
		VALUES ($1, $2, $3)
	`, id, name, active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, active, created_at
		FROM categories
		WHERE $1 OR active
		ORDER BY name ASC
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id, name string, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories
		SET name = $2, active = $3
		WHERE id = $1
	`, id, name, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM categories WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) CreateMeetingPoint(ctx context.Context, mp model.MeetingPoint) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO meeting_points (id, name, address, description, active)
		VALUES ($1, $2, $3, $4, $5)
	`, id, mp.Name, mp.Address, mp.Description, mp.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListMeetingPoints(ctx context.Context, includeInactive bool) ([]model.MeetingPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, address, description, active, created_at
		FROM meeting_points
		WHERE $1 OR active
		ORDER BY name ASC
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MeetingPoint
	for rows.Next() {
		var mp model.MeetingPoint
		if err := rows.Scan(&mp.ID, &mp.Name, &mp.Address, &mp.Description, &mp.Active, &mp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, mp)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) DeleteMeetingPoint(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM meeting_points WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReplaceAvailabilityRules swaps the seller's full weekly rule set atomically.
// Position preserves declared order for downstream range resolution.
func (r *Repository) ReplaceAvailabilityRules(ctx context.Context, tx pgx.Tx, sellerID string, rules []model.AvailabilityRule) error {
	if _, err := tx.Exec(ctx, `
		DELETE FROM availability_rules WHERE seller_id = $1
	`, sellerID); err != nil {
		return err
	}
	for i, rule := range rules {
		if _, err := tx.Exec(ctx, `
			INSERT INTO availability_rules (seller_id, position, weekday, start_minute, end_minute, active)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, sellerID, i, rule.Weekday, rule.StartMinute, rule.EndMinute, rule.Active); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) ListAvailabilityRules(ctx context.Context, sellerID string) ([]model.AvailabilityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minute, end_minute, active
		FROM availability_rules
		WHERE seller_id = $1
		ORDER BY position
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AvailabilityRule
	for rows.Next() {
		var rule model.AvailabilityRule
		if err := rows.Scan(&rule.Weekday, &rule.StartMinute, &rule.EndMinute, &rule.Active); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// CreateRating records one rating per appointment (unique constraint) and
// folds it into the seller's running aggregate in the same transaction.
func (r *Repository) CreateRating(ctx context.Context, tx pgx.Tx, rating *model.Rating) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO seller_ratings (id, seller_id, buyer_id, appointment_id, score, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, rating.SellerID, rating.BuyerID, rating.AppointmentID, rating.Score, rating.Comment)
	if err != nil {
		return "", err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO seller_rating_summaries (seller_id, rating_count, rating_total)
		VALUES ($1, 1, $2)
		ON CONFLICT (seller_id) DO UPDATE
		SET rating_count = seller_rating_summaries.rating_count + 1,
			rating_total = seller_rating_summaries.rating_total + $2,
			updated_at = now()
	`, rating.SellerID, rating.Score)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListRatings(ctx context.Context, sellerID string, limit int) ([]model.Rating, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, seller_id::text, buyer_id::text, appointment_id::text, score, COALESCE(comment, ''), created_at
		FROM seller_ratings
		WHERE seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sellerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rating
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.SellerID, &rt.BuyerID, &rt.AppointmentID, &rt.Score, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) RatingSummary(ctx context.Context, sellerID string) (model.RatingSummary, error) {
	var s model.RatingSummary
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT seller_id::text, rating_count, rating_total, updated_at
		FROM seller_rating_summaries
		WHERE seller_id = $1
	`, sellerID).Scan(&s.SellerID, &s.RatingCount, &s.RatingTotal, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RatingSummary{SellerID: sellerID}, nil
	}
	if err != nil {
		return model.RatingSummary{}, err
	}
	if s.RatingCount > 0 {
		s.Average = float64(s.RatingTotal) / float64(s.RatingCount)
	}
	return s, nil
}
