package control

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
	pb "github.com/oshokin/loop-guard/internal/pb/v1"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	GetSettings(ctx context.Context) *domain.Snapshot
	SetThreshold(ctx context.Context, actor *domain.Actor, threshold uint64) (*domain.Snapshot, error)
	ResetAlertFlag(ctx context.Context, actor *domain.Actor) (*domain.Snapshot, error)
}

// Server implements the ControlService gRPC API.
type Server struct {
	pb.UnimplementedControlServiceServer

	// service provides the business logic for control operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetSettings returns the current guard settings.
func (s *Server) GetSettings(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toProtoSettings(s.service.GetSettings(ctx))
}

// SetThreshold changes the threshold of the running guard.
func (s *Server) SetThreshold(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	actor := pb.ActorFromIncoming(ctx)
	if actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	snapshot, err := s.service.SetThreshold(ctx, actor, req.GetValue())
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to persist settings")
	}

	return toProtoSettings(snapshot)
}

// ResetAlertFlag re-arms one-shot alerting.
func (s *Server) ResetAlertFlag(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	actor := pb.ActorFromIncoming(ctx)
	if actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	snapshot, err := s.service.ResetAlertFlag(ctx, actor)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to persist settings")
	}

	return toProtoSettings(snapshot)
}

// toProtoSettings converts a domain snapshot into the Struct response.
func toProtoSettings(snapshot *domain.Snapshot) (*structpb.Struct, error) {
	result, err := pb.SettingsToStruct(snapshot)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode settings")
	}

	return result, nil
}
