//go:build !protogen

package scheduling

import (
	"context"

	"github.com/electromarket/electromarket/services/meeting-service/internal/availability"
	"github.com/electromarket/electromarket/services/meeting-service/internal/model"
)

type Provider interface {
	GetSellerAvailability(ctx context.Context, sellerID string) ([]availability.Rule, error)
	GetProduct(ctx context.Context, productID string) (model.ProductSnapshot, error)
}

// NewProvider is a no-op without generated catalog stubs; callers fall back
// to the local projections maintained by the Kafka consumers.
func NewProvider(_ string) (Provider, error) {
	return nil, nil
}
