// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     remote
// Description: gRPC runner service. Requests and reports travel as
//              google.protobuf.Struct so no generated stubs are needed.
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package remote

import (
	"context"
	"encoding/json"
	"sort"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"github.com/msto63/cellbot/foundation/rcl"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/runner"
	"github.com/msto63/cellbot/pkg/core/cache"
	grpcpkg "github.com/msto63/cellbot/pkg/core/grpc"
	"github.com/msto63/cellbot/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "cellbot.v1.Runner"

// Full method names
const (
	RunMethod   = "/" + ServiceName + "/Run"
	CheckMethod = "/" + ServiceName + "/Check"
)

// RunnerServer is the server API of the runner service
type RunnerServer interface {
	Run(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Check(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the runner service for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RunnerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Run", Handler: runHandler},
		{MethodName: "Check", Handler: checkHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cellbot/v1/runner.proto",
}

func runHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunnerServer).Run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RunMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RunnerServer).Run(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func checkHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RunnerServer).Check(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CheckMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RunnerServer).Check(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Request is a remote run request
type Request struct {
	Source        string
	Program       string
	Maze          string
	MazeName      string
	MazeFormat    maze.Format
	EntryTask     string
	IncludeFrames bool
}

// toStruct encodes the request for the wire
func (r Request) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"source":         r.Source,
		"program":        r.Program,
		"maze":           r.Maze,
		"maze_name":      r.MazeName,
		"maze_format":    r.MazeFormat.String(),
		"entry_task":     r.EntryTask,
		"include_frames": r.IncludeFrames,
	})
}

// requestFromStruct decodes a wire request
func requestFromStruct(s *structpb.Struct) (Request, error) {
	fields := s.GetFields()
	req := Request{
		Source:        fields["source"].GetStringValue(),
		Program:       fields["program"].GetStringValue(),
		Maze:          fields["maze"].GetStringValue(),
		MazeName:      fields["maze_name"].GetStringValue(),
		EntryTask:     fields["entry_task"].GetStringValue(),
		IncludeFrames: fields["include_frames"].GetBoolValue(),
	}

	format, err := maze.ParseFormat(fields["maze_format"].GetStringValue())
	if err != nil {
		return req, err
	}
	req.MazeFormat = format

	if req.Source == "" {
		return req, mdwerror.New("source is required").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("field", "source")
	}
	return req, nil
}

// Service implements RunnerServer on top of a runner. Compiled programs are
// cached by source hash.
type Service struct {
	runner *runner.Runner
	cache  *cache.Cache
	logger *logging.Logger
}

// NewService creates a runner service
func NewService(r *runner.Runner, c *cache.Cache) *Service {
	return &Service{
		runner: r,
		cache:  c,
		logger: logging.New("cellbot-remote"),
	}
}

// compile returns the cached program for src, compiling on a miss
func (s *Service) compile(src string) (*rcl.Program, error) {
	v, err := s.cache.GetOrSet(cache.Key(src), func() (interface{}, error) {
		return s.runner.Engine().Compile(src)
	})
	if err != nil {
		return nil, err
	}
	return v.(*rcl.Program), nil
}

// Run compiles the request source and runs it on the request maze. Compile
// and input errors fail the call; run failures are reported in the result.
func (s *Service) Run(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := requestFromStruct(in)
	if err != nil {
		return nil, err
	}

	m, err := maze.Parse([]byte(req.Maze), req.MazeFormat)
	if err != nil {
		return nil, err
	}
	if req.MazeName != "" {
		m = m.WithName(req.MazeName)
	}

	prog, err := s.compile(req.Source)
	if err != nil {
		return nil, err
	}

	report, runErr := s.runner.Run(ctx, prog, m, runner.Options{
		RunID:        grpcpkg.RunID(ctx),
		Program:      req.Program,
		EntryTask:    req.EntryTask,
		RecordFrames: req.IncludeFrames,
	})
	if runErr != nil {
		s.logger.Debug("Remote run failed", "run_id", report.RunID, "status", string(report.Status))
	}

	return reportToStruct(report)
}

// Check compiles the request source and lists its tasks
func (s *Service) Check(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	src := in.GetFields()["source"].GetStringValue()
	if src == "" {
		return nil, mdwerror.New("source is required").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("field", "source")
	}

	prog, err := s.compile(src)
	if err != nil {
		return nil, err
	}

	tasks := make([]interface{}, 0, len(prog.Symbols.Tasks))
	for _, name := range sortedTasks(prog) {
		tasks = append(tasks, name)
	}
	return structpb.NewStruct(map[string]interface{}{
		"ok":    true,
		"hash":  cache.Key(src),
		"tasks": tasks,
	})
}

func sortedTasks(prog *rcl.Program) []string {
	names := make([]string, 0, len(prog.Symbols.Tasks))
	for name := range prog.Symbols.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// reportToStruct converts a report through its JSON form
func reportToStruct(report *runner.Report) (*structpb.Struct, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to encode report").WithCode(mdwerror.CodeInternal)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, mdwerror.Wrap(err, "failed to encode report").WithCode(mdwerror.CodeInternal)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to encode report").WithCode(mdwerror.CodeInternal)
	}
	return out, nil
}

// reportFromStruct is the inverse of reportToStruct. Struct numbers are
// doubles; encoding/json writes integral values without exponent so they
// decode back into the integer fields.
func reportFromStruct(s *structpb.Struct) (*runner.Report, error) {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to decode report").WithCode(mdwerror.CodeInternal)
	}
	report := &runner.Report{}
	if err := json.Unmarshal(data, report); err != nil {
		return nil, mdwerror.Wrap(err, "failed to decode report").WithCode(mdwerror.CodeInternal)
	}
	return report, nil
}
