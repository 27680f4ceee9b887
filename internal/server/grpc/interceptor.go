package grpc

import (
	"context"
	"math"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const retryAfterKey = "retry-after"

// clientKey is the caller's host without the ephemeral port.
func clientKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (s *GRPCServer) admissionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	d, err := s.limiter.Check(ctx, clientKey(ctx), s.policy)
	if err != nil {
		s.logger.Warn(ctx, "rate limiter unavailable", "method", info.FullMethod, "error", err)
		return handler(ctx, req)
	}
	if !d.Allowed {
		secs := int64(math.Ceil(d.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		// Fails outside a real server stream; the status still carries the rejection.
		if err := grpc.SetHeader(ctx, metadata.Pairs(retryAfterKey, strconv.FormatInt(secs, 10))); err != nil {
			s.logger.Debug(ctx, "retry-after header not set", "method", info.FullMethod, "error", err)
		}
		return nil, status.Error(codes.ResourceExhausted, "too many requests")
	}
	return handler(ctx, req)
}
