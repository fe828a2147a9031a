//go:build protogen

package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/electromarket/electromarket/libs/db"
	catalogv1 "github.com/electromarket/electromarket/protos/gen/catalog/v1"
	"github.com/electromarket/electromarket/services/catalog-service/internal/storage"
)

type server struct {
	catalogv1.UnimplementedCatalogServiceServer
	pool *db.Pool
	repo *storage.Repository
}

func Register(grpcServer *grpc.Server, pool *db.Pool, repo *storage.Repository) {
	catalogv1.RegisterCatalogServiceServer(grpcServer, &server{pool: pool, repo: repo})
}

func (s *server) GetSellerAvailability(ctx context.Context, req *catalogv1.SellerAvailabilityRequest) (*catalogv1.SellerAvailabilityResponse, error) {
	if req.GetSellerId() == "" {
		return nil, status.Error(codes.InvalidArgument, "seller_id is required")
	}
	rules, err := s.repo.ListAvailabilityRules(ctx, req.GetSellerId())
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to load availability")
	}
	resp := &catalogv1.SellerAvailabilityResponse{SellerId: req.GetSellerId()}
	for _, rule := range rules {
		resp.Rules = append(resp.Rules, &catalogv1.AvailabilityRule{
			Weekday:     int32(rule.Weekday),
			StartMinute: int32(rule.StartMinute),
			EndMinute:   int32(rule.EndMinute),
			Active:      rule.Active,
		})
	}
	return resp, nil
}

func (s *server) GetProduct(ctx context.Context, req *catalogv1.ProductRequest) (*catalogv1.ProductResponse, error) {
	if req.GetProductId() == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	p, err := s.repo.GetProduct(ctx, req.GetProductId())
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "product not found")
		}
		return nil, status.Error(codes.Internal, "failed to load product")
	}
	return &catalogv1.ProductResponse{
		ProductId:    p.ID,
		SellerId:     p.SellerID,
		Title:        p.Title,
		Stock:        int32(p.Stock),
		PriceCredits: int32(p.PriceCredits),
		Status:       p.Status,
	}, nil
}
