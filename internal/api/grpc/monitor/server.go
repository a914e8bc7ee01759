package monitor

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
	"github.com/oshokin/greenhouse-monitor/internal/logger"
)

// Service abstracts the controller state the transport layer reads.
type Service interface {
	// Alarms returns the active records in the order they were set.
	Alarms(ctx context.Context) []alarm.Record
	// Snapshot returns the latest cycle state, or false before the first cycle.
	Snapshot(ctx context.Context) (Snapshot, bool)
}

// Server implements MonitorServer on top of a Service.
type Server struct {
	// service provides the controller state.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetAlarms returns the active alarm list.
func (s *Server) GetAlarms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	doc, err := AlarmsToStruct(s.service.Alarms(ctx))
	if err != nil {
		logger.Errorf(ctx, "Failed to encode alarms: %v", err)

		return nil, status.Error(codes.Internal, "unable to encode alarms")
	}

	return doc, nil
}

// GetStatus returns the latest reading, setpoints, controls and alarms.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snapshot, ok := s.service.Snapshot(ctx)
	if !ok {
		return nil, status.Error(codes.FailedPrecondition, "no control cycle has completed yet")
	}

	doc, err := SnapshotToStruct(snapshot)
	if err != nil {
		logger.Errorf(ctx, "Failed to encode status: %v", err)

		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return doc, nil
}
