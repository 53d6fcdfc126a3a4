// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     remote
// Description: gRPC server hosting the runner service
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package remote

import (
	"context"
	"fmt"
	"net"

	"github.com/msto63/cellbot/internal/runner"
	"github.com/msto63/cellbot/pkg/core/cache"
	"github.com/msto63/cellbot/pkg/core/config"
	grpcpkg "github.com/msto63/cellbot/pkg/core/grpc"
	"github.com/msto63/cellbot/pkg/core/health"
	"github.com/msto63/cellbot/pkg/core/logging"
	"github.com/msto63/cellbot/pkg/core/version"
)

// Server hosts the runner service
type Server struct {
	grpc    *grpcpkg.Server
	service *Service
	cache   *cache.Cache
	health  *health.Registry
	logger  *logging.Logger
}

// NewServer creates a runner server from the server section of cfg
func NewServer(cfg config.ServerConfig, r *runner.Runner) *Server {
	grpcCfg := grpcpkg.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.Port

	programs := cache.New(cache.Config{
		MaxItems: cfg.CacheSize,
		TTL:      cfg.CacheTTL.Duration,
	})
	service := NewService(r, programs)

	srv := grpcpkg.NewServer(grpcCfg)
	srv.GRPCServer().RegisterService(&ServiceDesc, service)
	srv.SetServing(ServiceName, true)

	registry := health.NewRegistry("remote", version.App)
	registry.RegisterFunc("program_cache", func(ctx context.Context) health.CheckResult {
		hits, misses, rate := programs.Stats()
		return health.CheckResult{
			Name:   "program_cache",
			Status: health.StatusHealthy,
			Details: map[string]interface{}{
				"programs": programs.Size(),
				"hits":     hits,
				"misses":   misses,
				"hit_rate": rate,
			},
		}
	})

	return &Server{
		grpc:    srv,
		service: service,
		cache:   programs,
		health:  registry,
		logger:  logging.New("cellbot-remote-server"),
	}
}

// Start serves on the configured address and blocks
func (s *Server) Start() error {
	s.logger.Info("Starting remote runner", "addr", s.grpc.Address())
	return s.grpc.Start()
}

// Serve serves on lis and blocks
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop drains in-flight runs and releases the program cache
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Stopping remote runner")
	s.grpc.SetServing(ServiceName, false)
	s.grpc.Shutdown(ctx)
	s.cache.Close()
}

// Address returns the listen address
func (s *Server) Address() string {
	return s.grpc.Address()
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// CacheStats describes the program cache
func (s *Server) CacheStats() string {
	hits, misses, rate := s.cache.Stats()
	return fmt.Sprintf("%d programs, %d hits, %d misses, %.0f%% hit rate", s.cache.Size(), hits, misses, rate)
}
