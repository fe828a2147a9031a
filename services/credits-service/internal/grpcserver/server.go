//go:build protogen

package grpcserver

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	creditsv1 "github.com/electromarket/electromarket/protos/gen/credits/v1"
	"github.com/electromarket/electromarket/services/credits-service/internal/storage"
)

type server struct {
	creditsv1.UnimplementedCreditsServiceServer
	repo *storage.Repository
}

func Register(grpcServer *grpc.Server, repo *storage.Repository) {
	creditsv1.RegisterCreditsServiceServer(grpcServer, &server{repo: repo})
}

func (s *server) GetBalance(ctx context.Context, req *creditsv1.BalanceRequest) (*creditsv1.BalanceResponse, error) {
	if req.GetUserId() == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	b, err := s.repo.GetBalance(ctx, req.GetUserId())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &creditsv1.BalanceResponse{UserId: req.GetUserId(), Credits: 0}, nil
		}
		return nil, status.Error(codes.Internal, "failed to load balance")
	}
	return &creditsv1.BalanceResponse{UserId: b.UserID, Credits: int32(b.Credits)}, nil
}
