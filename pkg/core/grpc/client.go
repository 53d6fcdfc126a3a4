// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     grpc
// Description: gRPC client connection helpers
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package grpc

import (
	"context"
	"time"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ClientConfig configures the connection to a remote runner
type ClientConfig struct {
	Target            string
	Timeout           time.Duration // default per-call timeout
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
}

// DefaultClientConfig returns the client defaults for target. Receive
// limits are larger than send limits since reports may carry frames.
func DefaultClientConfig(target string) ClientConfig {
	return ClientConfig{
		Target:            target,
		Timeout:           5 * time.Minute,
		MaxRecvMsgSize:    16 * 1024 * 1024, // 16MB
		MaxSendMsgSize:    4 * 1024 * 1024,  // 4MB
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// Dial creates a runner connection that propagates run IDs. The
// connection is established lazily on the first call.
func Dial(cfg ClientConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(cfg.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(cfg.MaxSendMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveInterval,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithUnaryInterceptor(ClientInterceptor()),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(cfg.Target, dialOpts...)
	if err != nil {
		return nil, mdwerror.Wrap(err, "cannot connect to runner").
			WithCode(mdwerror.CodeConnectionFailed).
			WithDetail("target", cfg.Target)
	}

	return conn, nil
}

// CheckHealth queries the standard health service for service
func CheckHealth(ctx context.Context, conn *grpc.ClientConn, service string) (bool, error) {
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}
