// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     remote
// Description: Client for the gRPC runner service
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package remote

import (
	"context"

	"github.com/msto63/cellbot/internal/runner"
	grpcpkg "github.com/msto63/cellbot/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// CheckResult is the answer of a remote compile check
type CheckResult struct {
	Hash  string
	Tasks []string
}

// Client calls a remote runner
type Client struct {
	conn   *grpc.ClientConn
	config grpcpkg.ClientConfig
}

// Dial connects to the runner at cfg.Target
func Dial(cfg grpcpkg.ClientConfig, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpcpkg.Dial(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, config: cfg}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Run sends req and returns the report. Call failures are returned as mDW
// errors with the server's error code.
func (c *Client) Run(ctx context.Context, req Request) (*runner.Report, error) {
	in, err := req.toStruct()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, RunMethod, in, out); err != nil {
		return nil, grpcpkg.FromStatus(err)
	}
	return reportFromStruct(out)
}

// Check compiles source remotely
func (c *Client) Check(ctx context.Context, source string) (*CheckResult, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"source": source})
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, CheckMethod, in, out); err != nil {
		return nil, grpcpkg.FromStatus(err)
	}

	result := &CheckResult{Hash: out.GetFields()["hash"].GetStringValue()}
	for _, v := range out.GetFields()["tasks"].GetListValue().GetValues() {
		result.Tasks = append(result.Tasks, v.GetStringValue())
	}
	return result, nil
}

// Healthy reports whether the runner service is serving
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	return grpcpkg.CheckHealth(ctx, c.conn, ServiceName)
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.Timeout)
}
