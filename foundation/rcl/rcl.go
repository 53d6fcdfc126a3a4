// File: rcl.go
// Title: RCL Engine
// Description: Front door of the RCL toolchain. Compiles source text
//              through lexer, parser and semantic analyzer and runs the
//              result on a robot. Errors leave this package as mDW errors
//              carrying an RCL error code and the source position.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package rcl

import (
	"context"
	"errors"
	"time"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/foundation/rcl/ast"
	"github.com/msto63/cellbot/foundation/rcl/interpreter"
	"github.com/msto63/cellbot/foundation/rcl/parser"
	"github.com/msto63/cellbot/foundation/rcl/semantic"
)

// DefaultEntryTask is the task started after the top-level statements
const DefaultEntryTask = "FINDEXIT"

// Config configures an Engine
type Config struct {
	Logger        *mdwlog.Logger
	EntryTask     string
	MaxIterations int
	MaxCallDepth  int
}

// Engine compiles and runs RCL programs. It holds no per-run state and is
// safe for concurrent use.
type Engine struct {
	config Config
	logger *mdwlog.Logger
}

// NewEngine creates an engine
func NewEngine(config Config) *Engine {
	if config.Logger == nil {
		config.Logger = mdwlog.GetDefault()
	}
	return &Engine{
		config: config,
		logger: config.Logger.WithField("component", "rcl-engine"),
	}
}

// Program is a parsed and checked RCL program
type Program struct {
	Source  string
	AST     *ast.Program
	Symbols *semantic.Result
}

// Outcome summarizes a finished run
type Outcome struct {
	Actions  int
	Globals  map[string]interpreter.Value
	Results  map[string]interpreter.Value
	Duration time.Duration
}

// RunOption adjusts a single run
type RunOption func(*interpreter.Options)

// WithStepHook installs a hook called after each robot action
func WithStepHook(hook interpreter.StepHook) RunOption {
	return func(o *interpreter.Options) { o.StepHook = hook }
}

// WithEntryTask overrides the entry task for one run
func WithEntryTask(name string) RunOption {
	return func(o *interpreter.Options) { o.EntryTask = name }
}

// Tokenize lexes src
func (e *Engine) Tokenize(src string) ([]parser.Token, error) {
	tokens, err := parser.Tokenize(src)
	if err != nil {
		return nil, wrap(err, "tokenize")
	}
	return tokens, nil
}

// Parse parses src without semantic checks
func (e *Engine) Parse(src string) (*ast.Program, error) {
	prog, err := parser.New(parser.Options{Logger: e.config.Logger}).Parse(src)
	if err != nil {
		return nil, wrap(err, "parse")
	}
	return prog, nil
}

// Compile parses and checks src
func (e *Engine) Compile(src string) (*Program, error) {
	timer := e.logger.StartTimer("rcl.compile")

	tree, err := e.Parse(src)
	if err != nil {
		timer.StopWithError(err)
		return nil, err
	}

	symbols, err := semantic.New(semantic.Options{Logger: e.config.Logger}).Analyze(tree)
	if err != nil {
		err = wrap(err, "analyze")
		timer.StopWithError(err)
		return nil, err
	}

	timer.WithField("statements", len(tree.Statements)).
		WithField("tasks", len(symbols.Tasks)).
		Stop()
	return &Program{Source: src, AST: tree, Symbols: symbols}, nil
}

// Run executes prog on robot. On failure the returned Outcome still
// describes what happened up to the fault.
func (e *Engine) Run(ctx context.Context, prog *Program, robot interpreter.Robot, opts ...RunOption) (*Outcome, error) {
	iopts := interpreter.Options{
		Logger:        e.config.Logger,
		EntryTask:     e.config.EntryTask,
		MaxIterations: e.config.MaxIterations,
		MaxCallDepth:  e.config.MaxCallDepth,
	}
	for _, opt := range opts {
		opt(&iopts)
	}

	timer := e.logger.StartTimer("rcl.run")
	in := interpreter.New(robot, iopts)
	runErr := in.Run(ctx, prog.AST)

	outcome := &Outcome{
		Actions: in.Actions(),
		Globals: in.Env().Snapshot(),
		Results: in.Functions().Results(),
	}

	if runErr != nil {
		runErr = wrap(runErr, "run")
		outcome.Duration = timer.StopWithError(runErr)
		return outcome, runErr
	}

	outcome.Duration = timer.WithField("actions", outcome.Actions).Stop()
	return outcome, nil
}

// Execute compiles and runs src in one step
func (e *Engine) Execute(ctx context.Context, src string, robot interpreter.Robot, opts ...RunOption) (*Outcome, error) {
	prog, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, prog, robot, opts...)
}

// wrap converts a stage error into an mDW error with code and position
func wrap(err error, stage string) error {
	var (
		lexErr   *parser.LexError
		parseErr *parser.ParseError
		semErr   *semantic.SemanticError
		rtErr    *interpreter.RuntimeError
	)

	var wrapped *mdwerror.Error
	switch {
	case errors.As(err, &lexErr):
		wrapped = mdwerror.Wrap(err, "lexical error").
			WithCode(mdwerror.CodeLexical).
			WithDetail("line", lexErr.Line).
			WithDetail("column", lexErr.Column).
			WithDetail("char", lexErr.Char)
	case errors.As(err, &parseErr):
		wrapped = mdwerror.Wrap(err, "syntax error").
			WithCode(mdwerror.CodeSyntax).
			WithDetail("line", parseErr.Line).
			WithDetail("column", parseErr.Column).
			WithDetail("token", parseErr.Token.String())
	case errors.As(err, &semErr):
		wrapped = mdwerror.Wrap(err, "semantic error").
			WithCode(mdwerror.CodeSemantic).
			WithDetail("line", semErr.Line).
			WithDetail("column", semErr.Column)
	case errors.As(err, &rtErr):
		code := mdwerror.CodeRuntime
		switch rtErr.Kind {
		case interpreter.ErrWallCollision:
			code = mdwerror.CodeWallCollision
		case interpreter.ErrCancelled:
			code = mdwerror.CodeCancelled
		}
		wrapped = mdwerror.Wrap(err, "runtime error").
			WithCode(code).
			WithDetail("line", rtErr.Line).
			WithDetail("column", rtErr.Column).
			WithDetail("kind", rtErr.Kind.String())
	default:
		wrapped = mdwerror.Wrap(err, stage+" failed").WithCode(mdwerror.CodeInternal)
	}

	return wrapped.WithOperation("rcl." + stage)
}
