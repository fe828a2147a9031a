package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/electromarket/electromarket/libs/db"
	"github.com/electromarket/electromarket/services/meeting-service/internal/availability"
	"github.com/electromarket/electromarket/services/meeting-service/internal/model"
)

// ProjectionRepository holds local read models fed by Kafka consumers:
// seller availability rules, product snapshots, and buyer credit balances.
// They let the service answer calendar queries and validate confirmations
// without a synchronous catalog or credits call.
type ProjectionRepository struct {
	pool *db.Pool
}

func NewProjectionRepository(pool *db.Pool) *ProjectionRepository {
	return &ProjectionRepository{pool: pool}
}

// ReplaceAvailabilityRules swaps the full rule set for a seller. The position
// column preserves the seller's declared rule order; range resolution relies
// on it.
func (r *ProjectionRepository) ReplaceAvailabilityRules(ctx context.Context, tx pgx.Tx, sellerID string, rules []availability.Rule) error {
	if _, err := tx.Exec(ctx, `
		DELETE FROM seller_availability_rules WHERE seller_id = $1
	`, sellerID); err != nil {
		return err
	}
	for i, rule := range rules {
		if _, err := tx.Exec(ctx, `
			INSERT INTO seller_availability_rules (seller_id, position, weekday, start_minute, end_minute, active)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, sellerID, i, int(rule.Weekday), rule.StartMinute, rule.EndMinute, rule.Active); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProjectionRepository) AvailabilityRules(ctx context.Context, sellerID string) ([]availability.Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minute, end_minute, active
		FROM seller_availability_rules
		WHERE seller_id = $1
		ORDER BY position
	`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []availability.Rule
	for rows.Next() {
		var weekday int
		var rule availability.Rule
		if err := rows.Scan(&weekday, &rule.StartMinute, &rule.EndMinute, &rule.Active); err != nil {
			return nil, err
		}
		rule.Weekday = time.Weekday(weekday)
		rules = append(rules, rule)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return rules, nil
}

func (r *ProjectionRepository) UpsertProductSnapshot(ctx context.Context, tx pgx.Tx, snap model.ProductSnapshot) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO product_snapshots (product_id, seller_id, title, stock, price_credits, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (product_id) DO UPDATE
		SET seller_id = EXCLUDED.seller_id,
			title = EXCLUDED.title,
			stock = EXCLUDED.stock,
			price_credits = EXCLUDED.price_credits,
			status = EXCLUDED.status,
			updated_at = now()
	`, snap.ProductID, snap.SellerID, snap.Title, snap.Stock, snap.PriceCredits, snap.Status)
	return err
}

func (r *ProjectionRepository) ProductSnapshot(ctx context.Context, productID string) (model.ProductSnapshot, error) {
	var snap model.ProductSnapshot
	err := r.pool.QueryRow(ctx, `
		SELECT product_id, seller_id, title, stock, price_credits, status, updated_at
		FROM product_snapshots
		WHERE product_id = $1
	`, productID).Scan(
		&snap.ProductID,
		&snap.SellerID,
		&snap.Title,
		&snap.Stock,
		&snap.PriceCredits,
		&snap.Status,
		&snap.UpdatedAt,
	)
	if err != nil {
		return model.ProductSnapshot{}, err
	}
	return snap, nil
}

func (r *ProjectionRepository) UpsertCreditBalance(ctx context.Context, tx pgx.Tx, userID string, balance int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO buyer_credit_balances (user_id, balance, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET balance = EXCLUDED.balance,
			updated_at = now()
	`, userID, balance)
	return err
}

func (r *ProjectionRepository) CreditBalance(ctx context.Context, userID string) (int, bool, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
		SELECT balance FROM buyer_credit_balances WHERE user_id = $1
	`, userID).Scan(&balance)
	if IsNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}
