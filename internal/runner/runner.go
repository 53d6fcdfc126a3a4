// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     runner
// Description: Runs a compiled RCL program on a robot placed in a maze and
//              reports the outcome, recording one frame per robot action
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/foundation/rcl"
	"github.com/msto63/cellbot/foundation/rcl/interpreter"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/robot"
	"github.com/msto63/cellbot/pkg/core/cache"
)

// Observer receives every frame as it is recorded
type Observer func(Frame)

// Options configures a single run
type Options struct {
	// RunID identifies the run; generated when empty
	RunID string

	// Program labels the source, usually its path
	Program string

	// EntryTask overrides the engine's entry task when set
	EntryTask string

	// StepDelay pauses after every robot action
	StepDelay time.Duration

	// Timeout bounds the whole run when positive
	Timeout time.Duration

	// RecordFrames keeps frames in the report for replay
	RecordFrames bool

	// Observers are called synchronously for each frame
	Observers []Observer
}

// Runner executes programs. It is safe for concurrent use; each run owns
// its robot and interpreter.
type Runner struct {
	engine *rcl.Engine
	logger *mdwlog.Logger
}

// New creates a runner on top of engine
func New(engine *rcl.Engine, logger *mdwlog.Logger) *Runner {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &Runner{
		engine: engine,
		logger: logger.WithField("component", "runner"),
	}
}

// Engine returns the underlying engine
func (r *Runner) Engine() *rcl.Engine { return r.engine }

// Execute compiles src and runs it. Compile failures produce a report with
// StatusCompileError.
func (r *Runner) Execute(ctx context.Context, src string, m *maze.Maze, opts Options) (*Report, error) {
	prog, err := r.engine.Compile(src)
	if err != nil {
		report := r.newReport(opts, src, m)
		report.fail(StatusCompileError, err)
		return report, err
	}
	return r.Run(ctx, prog, m, opts)
}

// Run executes prog on a fresh robot at the maze start. The report is
// returned even when the run fails.
func (r *Runner) Run(ctx context.Context, prog *rcl.Program, m *maze.Maze, opts Options) (*Report, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	report := r.newReport(opts, prog.Source, m)
	bot := robot.New(m)
	logger := r.logger.WithRunID(report.RunID)

	rec := &recorder{
		robot:     bot,
		runID:     report.RunID,
		keep:      opts.RecordFrames,
		observers: opts.Observers,
	}
	rec.record("start")

	hook := func(a interpreter.Action) {
		rec.record(a.String())
		if opts.StepDelay > 0 {
			pause(ctx, opts.StepDelay)
		}
	}

	runOpts := []rcl.RunOption{rcl.WithStepHook(hook)}
	if opts.EntryTask != "" {
		runOpts = append(runOpts, rcl.WithEntryTask(opts.EntryTask))
	}

	logger.Info("Run started", mdwlog.Fields{
		"maze":    m.Name(),
		"program": opts.Program,
	})

	outcome, err := r.engine.Run(ctx, prog, bot, runOpts...)

	report.Frames = rec.frames
	report.applyRobot(bot)
	if outcome != nil {
		report.Actions = outcome.Actions
		report.Duration = outcome.Duration
		report.Results = nativeValues(outcome.Results)
		report.Globals = renderValues(outcome.Globals)
	}

	if err != nil {
		report.fail(statusFor(err), err)
		logger.Warn("Run failed", mdwlog.Fields{
			"status":  string(report.Status),
			"actions": report.Actions,
			"error":   err.Error(),
		})
		return report, err
	}

	report.Status = StatusFinished
	if report.ReachedExit {
		report.Status = StatusExited
	}
	logger.Info("Run finished", mdwlog.Fields{
		"status":   string(report.Status),
		"actions":  report.Actions,
		"moves":    report.Moves,
		"duration": report.Duration.String(),
	})
	return report, nil
}

func (r *Runner) newReport(opts Options, src string, m *maze.Maze) *Report {
	id := opts.RunID
	if id == "" {
		id = uuid.New().String()
	}
	return &Report{
		RunID:       id,
		Program:     opts.Program,
		ProgramHash: cache.Key(src),
		Maze:        m.Name(),
		StartedAt:   time.Now(),
		Position:    m.Start(),
		Facing:      robot.North.String(),
		Visited:     1,
	}
}

// statusFor maps an engine error to a run status
func statusFor(err error) Status {
	switch {
	case mdwerror.HasCode(err, mdwerror.CodeWallCollision):
		return StatusCollision
	case mdwerror.HasCode(err, mdwerror.CodeCancelled):
		return StatusCancelled
	case mdwerror.GetCode(err).IsCompileTime():
		return StatusCompileError
	default:
		return StatusFailed
	}
}

// pause sleeps for d or until ctx is done
func pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func nativeValues(values map[string]interpreter.Value) map[string]interface{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v.Native()
	}
	return out
}

func renderValues(values map[string]interpreter.Value) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v.String()
	}
	return out
}
