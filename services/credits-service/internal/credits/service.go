package credits

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/electromarket/electromarket/libs/eventx"
	"github.com/electromarket/electromarket/services/credits-service/internal/storage"
)

// ErrInsufficientCredits is returned when a deduction would push a balance
// below zero.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Service encapsulates balance transitions and their side effects (ledger
// entry + outbox event). Keeping this out of HTTP handlers makes it reusable
// for webhook, consumer, and reconciliation flows.
type Service struct {
	repo       *storage.Repository
	outboxRepo *eventx.OutboxRepository
}

func New(repo *storage.Repository, outboxRepo *eventx.OutboxRepository) *Service {
	return &Service{repo: repo, outboxRepo: outboxRepo}
}

func (s *Service) ApplyPurchase(ctx context.Context, tx pgx.Tx, userID string, amount int, reference string, occurredAt time.Time) error {
	if amount <= 0 {
		return errors.New("purchase amount must be positive")
	}
	balance, _, err := s.repo.GetBalanceForUpdate(ctx, tx, userID)
	if err != nil {
		return err
	}
	next := balance.Credits + amount

	if err := s.repo.UpsertBalance(ctx, tx, userID, next); err != nil {
		return err
	}
	if _, err := s.repo.InsertLedgerEntry(ctx, tx, storage.LedgerEntry{
		UserID:    userID,
		Delta:     amount,
		Kind:      "purchase",
		Reference: reference,
	}); err != nil {
		return err
	}
	return s.emitBalanceUpdated(ctx, tx, userID, next, occurredAt)
}

func (s *Service) ApplyDeduction(ctx context.Context, tx pgx.Tx, userID string, amount int, reference string, occurredAt time.Time) error {
	if amount <= 0 {
		return errors.New("deduction amount must be positive")
	}
	balance, found, err := s.repo.GetBalanceForUpdate(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !found || balance.Credits < amount {
		return ErrInsufficientCredits
	}
	next := balance.Credits - amount

	if err := s.repo.UpsertBalance(ctx, tx, userID, next); err != nil {
		return err
	}
	if _, err := s.repo.InsertLedgerEntry(ctx, tx, storage.LedgerEntry{
		UserID:    userID,
		Delta:     -amount,
		Kind:      "deduction",
		Reference: reference,
	}); err != nil {
		return err
	}
	return s.emitBalanceUpdated(ctx, tx, userID, next, occurredAt)
}

func (s *Service) emitBalanceUpdated(ctx context.Context, tx pgx.Tx, userID string, balance int, occurredAt time.Time) error {
	payload, err := json.Marshal(map[string]any{
		"user_id":     userID,
		"balance":     balance,
		"occurred_at": occurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return s.outboxRepo.Insert(ctx, tx, eventx.Event{
		AggregateType: "credit_balance",
		AggregateID:   userID,
		EventType:     "credits.balance.updated.v1",
		Payload:       payload,
	})
}
