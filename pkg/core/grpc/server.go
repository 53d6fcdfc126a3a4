// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     grpc
// Description: gRPC server for the runner service with the run
//              interceptor chain and the standard health service
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package grpc

import (
	"context"
	"net"
	"strconv"
	"time"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServerConfig configures the runner server
type ServerConfig struct {
	Host              string
	Port              int
	MaxRecvMsgSize    int
	MaxSendMsgSize    int
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
}

// DefaultServerConfig returns the server defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "0.0.0.0",
		Port:              9310,
		MaxRecvMsgSize:    4 * 1024 * 1024,
		MaxSendMsgSize:    16 * 1024 * 1024, // reports may carry frames
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// Addr returns the host:port listen address
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server is a gRPC server whose unary calls pass through the run
// interceptors: recovery, run ID, logging and error translation
type Server struct {
	server   *grpc.Server
	health   *health.Server
	config   ServerConfig
	listener net.Listener
}

// NewServer creates a server. opts are appended after the defaults.
func NewServer(cfg ServerConfig, opts ...grpc.ServerOption) *Server {
	serverOpts := append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    cfg.KeepaliveInterval,
			Timeout: cfg.KeepaliveTimeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(),
			RunIDInterceptor(),
			LoggingInterceptor(),
			ErrorInterceptor(),
		),
	}, opts...)

	server := grpc.NewServer(serverOpts...)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)

	return &Server{
		server: server,
		health: healthServer,
		config: cfg,
	}
}

// GRPCServer returns the underlying server for service registration
func (s *Server) GRPCServer() *grpc.Server {
	return s.server
}

// SetServing sets the health status reported for service
func (s *Server) SetServing(service string, serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, st)
}

// Start listens on the configured address and serves until stopped
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return mdwerror.Wrap(err, "cannot listen").
			WithCode(mdwerror.CodeServiceUnavailable).
			WithDetail("addr", s.config.Addr())
	}
	return s.Serve(listener)
}

// Serve serves on listener until stopped
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	return s.server.Serve(listener)
}

// Shutdown marks every service not serving and waits for in-flight runs.
// Runs still active when ctx ends are cut off.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
}

// Address returns the bound address once serving, else the configured one
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr()
}
