//go:build protogen

package scheduling

import (
	"context"
	"time"

	"github.com/electromarket/electromarket/libs/grpcx"
	catalogv1 "github.com/electromarket/electromarket/protos/gen/catalog/v1"
	"github.com/electromarket/electromarket/services/meeting-service/internal/availability"
	"github.com/electromarket/electromarket/services/meeting-service/internal/model"
)

type Provider interface {
	GetSellerAvailability(ctx context.Context, sellerID string) ([]availability.Rule, error)
	GetProduct(ctx context.Context, productID string) (model.ProductSnapshot, error)
}

type grpcProvider struct {
	client catalogv1.CatalogServiceClient
}

func NewProvider(addr string) (Provider, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: catalogv1.NewCatalogServiceClient(conn)}, nil
}

func (p *grpcProvider) GetSellerAvailability(ctx context.Context, sellerID string) ([]availability.Rule, error) {
	resp, err := p.client.GetSellerAvailability(ctx, &catalogv1.SellerAvailabilityRequest{
		SellerId: sellerID,
	})
	if err != nil {
		return nil, err
	}
	rules := make([]availability.Rule, 0, len(resp.GetRules()))
	for _, r := range resp.GetRules() {
		rules = append(rules, availability.Rule{
			Weekday:     time.Weekday(r.GetWeekday()),
			StartMinute: int(r.GetStartMinute()),
			EndMinute:   int(r.GetEndMinute()),
			Active:      r.GetActive(),
		})
	}
	return rules, nil
}

func (p *grpcProvider) GetProduct(ctx context.Context, productID string) (model.ProductSnapshot, error) {
	resp, err := p.client.GetProduct(ctx, &catalogv1.ProductRequest{ProductId: productID})
	if err != nil {
		return model.ProductSnapshot{}, err
	}
	return model.ProductSnapshot{
		ProductID:    resp.GetProductId(),
		SellerID:     resp.GetSellerId(),
		Title:        resp.GetTitle(),
		Stock:        int(resp.GetStock()),
		PriceCredits: int(resp.GetPriceCredits()),
		Status:       resp.GetStatus(),
	}, nil
}
