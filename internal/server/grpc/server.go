// Package grpc exposes the standard gRPC health service. Every unary call
// passes through the rate limiter first.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/ratelimit"
)

type GRPCServer struct {
	address string
	limiter ratelimit.Checker
	policy  ratelimit.Policy
	health  *health.Server
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, limiter ratelimit.Checker) *GRPCServer {
	return &GRPCServer{
		address: a,
		limiter: limiter,
		policy:  ratelimit.Health,
		health:  health.NewServer(),
		logger:  l.With("module", "grpc_server"),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then drains them.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.admissionInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
