// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     grpc
// Description: Runner call interceptors: run IDs, call logging with program
//              and error codes, panic recovery and error translation
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"github.com/msto63/cellbot/pkg/core/cache"
	"github.com/msto63/cellbot/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

var interceptorLogger = logging.New("grpc")

// RunIDHeader carries the run ID in call metadata in both directions
const RunIDHeader = "x-cellbot-run-id"

type runIDKey struct{}

// hashPrefix is the number of program hash characters written to logs
const hashPrefix = 12

// WithRunID returns a context whose calls carry id as their run ID
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run ID of ctx, falling back to incoming call metadata
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(RunIDHeader); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// RunIDInterceptor assigns every call a run ID. A client supplied ID is
// kept; the ID is echoed back in the response header.
func RunIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id := RunID(ctx)
		if id == "" {
			id = uuid.New().String()
		}
		ctx = WithRunID(ctx, id)
		// Fails only outside a server transport, e.g. in direct handler tests.
		_ = grpc.SetHeader(ctx, metadata.Pairs(RunIDHeader, id))
		return handler(ctx, req)
	}
}

// RecoveryInterceptor turns a handler panic into an internal error
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				interceptorLogger.Error("Runner call panicked",
					"method", info.FullMethod,
					"run_id", RunID(ctx),
					"panic", r,
					"stack", string(debug.Stack()),
				)
				err = ToStatus(mdwerror.New("internal server error").
					WithCode(mdwerror.CodeInternal).
					WithOperation(info.FullMethod))
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs each call with its run ID, the program it
// carried and the resulting RCL error code
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := append([]interface{}{
			"method", info.FullMethod,
			"run_id", RunID(ctx),
			"duration", time.Since(start),
		}, RequestFields(req)...)

		if err != nil {
			fields = append(fields, "code", string(ErrorCode(err)), "error", err.Error())
			interceptorLogger.Warn("Runner call failed", fields...)
			return resp, err
		}
		interceptorLogger.Info("Runner call", fields...)
		return resp, nil
	}
}

// ErrorInterceptor converts mDW errors returned by handlers into status
// errors carrying the RCL code and source position
func ErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return resp, ToStatus(err)
		}
		return resp, nil
	}
}

// ClientInterceptor sends the run ID of the call context, generating one
// when absent, and logs the outcome
func ClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		id := RunID(ctx)
		if id == "" {
			id = uuid.New().String()
		}
		ctx = metadata.AppendToOutgoingContext(ctx, RunIDHeader, id)

		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)

		fields := append([]interface{}{
			"method", method,
			"run_id", id,
			"duration", time.Since(start),
		}, RequestFields(req)...)
		if err != nil {
			fields = append(fields, "code", string(ErrorCode(err)))
		}
		interceptorLogger.Debug("Runner call sent", fields...)
		return err
	}
}

// RequestFields describes a runner request for logging: the program name,
// a prefix of the source hash, the entry task and the maze name. Fields
// absent from the request are omitted.
func RequestFields(req interface{}) []interface{} {
	s, ok := req.(*structpb.Struct)
	if !ok {
		return nil
	}
	in := s.GetFields()

	var fields []interface{}
	if v := in["program"].GetStringValue(); v != "" {
		fields = append(fields, "program", v)
	}
	if src := in["source"].GetStringValue(); src != "" {
		fields = append(fields, "program_hash", cache.Key(src)[:hashPrefix])
	}
	if v := in["entry_task"].GetStringValue(); v != "" {
		fields = append(fields, "entry_task", v)
	}
	if v := in["maze_name"].GetStringValue(); v != "" {
		fields = append(fields, "maze", v)
	}
	return fields
}
