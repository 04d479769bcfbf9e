// Package service exposes the distribution archive over gRPC.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/danielpatrickdp/srl-toolkit/internal/archive"
	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ListLimit caps the number of ids returned by List.
const ListLimit = 100

// Archive is the snapshot storage the service reads and writes.
type Archive interface {
	Put(ctx context.Context, label string, d *distribution.Distribution) (archive.Snapshot, error)
	Get(ctx context.Context, id string) (archive.Snapshot, error)
	List(ctx context.Context, limit int) ([]archive.Snapshot, error)
}

// Server hosts DistributionService and the standard health service.
type Server struct {
	archive Archive
	logger  *zap.Logger
	grpc    *grpc.Server
	health  *health.Server
}

var _ DistributionServiceServer = (*Server)(nil)

// NewServer builds a gRPC server over a. A nil logger disables logging.
func NewServer(a Archive, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		archive: a,
		logger:  logger,
		health:  health.NewServer(),
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.logUnary))
	RegisterDistributionServiceServer(s.grpc, s)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve accepts connections on lis and blocks until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("server listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("serve gRPC: %w", err)
	}
	return nil
}

// GracefulStop marks the service not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

// Put decodes and archives an encoded distribution. The optional label is
// read from the srl-label metadata key.
func (s *Server) Put(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if in == nil || len(in.GetValue()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "distribution payload is required")
	}
	d, err := distribution.Decode(in.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode distribution: %v", err)
	}
	var label string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(labelKey); len(v) > 0 {
			label = v[0]
		}
	}
	snap, err := s.archive.Put(ctx, label, d)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "archive distribution: %v", err)
	}
	return wrapperspb.String(snap.ID), nil
}

// Get returns the encoded distribution of a snapshot.
func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "snapshot id is required")
	}
	snap, err := s.archive.Get(ctx, in.GetValue())
	if errors.Is(err, archive.ErrSnapshotNotFound) {
		return nil, status.Errorf(codes.NotFound, "snapshot %s not found", in.GetValue())
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "load snapshot: %v", err)
	}
	return wrapperspb.Bytes(snap.Distribution.Encode()), nil
}

// List returns the ids of the most recent snapshots, newest first.
func (s *Server) List(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	snaps, err := s.archive.List(ctx, ListLimit)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list snapshots: %v", err)
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(snaps))}
	for _, snap := range snaps {
		out.Values = append(out.Values, structpb.NewStringValue(snap.ID))
	}
	return out, nil
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("rpc",
		zap.String("method", info.FullMethod),
		zap.Stringer("code", status.Code(err)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, err
}
