// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     runner
// Description: Run report and recorded frames
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package runner

import (
	"fmt"
	"strconv"
	"time"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/render"
	"github.com/msto63/cellbot/internal/robot"
)

// Status is the final state of a run
type Status string

const (
	StatusExited       Status = "exited"
	StatusFinished     Status = "finished"
	StatusCollision    Status = "wall_collision"
	StatusCancelled    Status = "cancelled"
	StatusFailed       Status = "runtime_error"
	StatusCompileError Status = "compile_error"
)

// OK reports whether the program ran to completion
func (s Status) OK() bool {
	return s == StatusExited || s == StatusFinished
}

// Frame is the robot state after one action
type Frame struct {
	RunID    string     `json:"run_id"`
	Step     int        `json:"step"`
	Action   string     `json:"action"`
	Position maze.Point `json:"position"`
	Facing   string     `json:"facing"`
	AtExit   bool       `json:"at_exit"`
	Visited  int        `json:"visited"`
}

// Report summarizes a run
type Report struct {
	RunID       string                 `json:"run_id"`
	Program     string                 `json:"program,omitempty"`
	ProgramHash string                 `json:"program_hash"`
	Maze        string                 `json:"maze,omitempty"`
	Status      Status                 `json:"status"`
	Error       string                 `json:"error,omitempty"`
	ErrorCode   string                 `json:"error_code,omitempty"`
	Line        int                    `json:"line,omitempty"`
	Column      int                    `json:"column,omitempty"`
	Actions     int                    `json:"actions"`
	Moves       int                    `json:"moves"`
	Turns       int                    `json:"turns"`
	Position    maze.Point             `json:"position"`
	Facing      string                 `json:"facing"`
	Visited     int                    `json:"visited"`
	ReachedExit bool                   `json:"reached_exit"`
	StartedAt   time.Time              `json:"started_at"`
	Duration    time.Duration          `json:"duration"`
	Results     map[string]interface{} `json:"results,omitempty"`
	Globals     map[string]string      `json:"globals,omitempty"`
	Frames      []Frame                `json:"frames,omitempty"`
}

func (r *Report) applyRobot(bot *robot.Robot) {
	s := bot.Snapshot()
	r.Position = s.Position
	r.Facing = s.Facing
	r.Visited = s.Visited
	r.Moves = s.Moves
	r.Turns = s.Turns
	r.ReachedExit = s.AtExit
}

func (r *Report) fail(status Status, err error) {
	r.Status = status
	r.Error = err.Error()
	r.ErrorCode = string(mdwerror.GetCode(err))

	if mdwErr, ok := err.(*mdwerror.Error); ok {
		if line, ok := mdwErr.Detail("line"); ok {
			r.Line, _ = line.(int)
		}
		if col, ok := mdwErr.Detail("column"); ok {
			r.Column, _ = col.(int)
		}
	}
}

// Title returns a one-line headline
func (r *Report) Title() string {
	switch r.Status {
	case StatusExited:
		return "Exit reached"
	case StatusFinished:
		return "Program finished without reaching an exit"
	case StatusCollision:
		return "Robot hit a wall"
	case StatusCancelled:
		return "Run cancelled"
	case StatusCompileError:
		return "Program rejected"
	default:
		return "Runtime error"
	}
}

// Fields returns the report lines shown by the CLI
func (r *Report) Fields() []render.Field {
	fields := []render.Field{
		{Label: "Run", Value: r.RunID},
		{Label: "Status", Value: string(r.Status)},
		{Label: "Actions", Value: strconv.Itoa(r.Actions)},
		{Label: "Moves", Value: strconv.Itoa(r.Moves)},
		{Label: "Position", Value: r.Position.String()},
		{Label: "Facing", Value: r.Facing},
		{Label: "Visited", Value: strconv.Itoa(r.Visited)},
		{Label: "At exit", Value: strconv.FormatBool(r.ReachedExit)},
		{Label: "Duration", Value: r.Duration.Round(time.Microsecond).String()},
	}
	for _, name := range render.SortedKeys(r.Results) {
		fields = append(fields, render.Field{
			Label: "GET " + name,
			Value: fmt.Sprint(r.Results[name]),
		})
	}
	if r.Error != "" {
		where := ""
		if r.Line > 0 {
			where = fmt.Sprintf(" (line %d, column %d)", r.Line, r.Column)
		}
		fields = append(fields, render.Field{Label: "Error", Value: r.Error + where})
	}
	return fields
}

// recorder turns robot actions into frames
type recorder struct {
	robot     *robot.Robot
	runID     string
	keep      bool
	step      int
	frames    []Frame
	observers []Observer
}

func (rec *recorder) record(action string) {
	s := rec.robot.Snapshot()
	f := Frame{
		RunID:    rec.runID,
		Step:     rec.step,
		Action:   action,
		Position: s.Position,
		Facing:   s.Facing,
		AtExit:   s.AtExit,
		Visited:  s.Visited,
	}
	rec.step++

	if rec.keep {
		rec.frames = append(rec.frames, f)
	}
	for _, o := range rec.observers {
		o(f)
	}
}

// Scene rebuilds the render scene after frame i from the recorded frames
func (r *Report) Scene(m *maze.Maze, i int) render.Scene {
	scene := render.Scene{
		Maze:     m,
		Position: m.Start(),
		Facing:   robot.North.String(),
		Visited:  map[maze.Point]bool{m.Start(): true},
	}
	if len(r.Frames) == 0 {
		return scene
	}
	if i >= len(r.Frames) {
		i = len(r.Frames) - 1
	}
	for _, f := range r.Frames[:i+1] {
		scene.Visited[f.Position] = true
	}
	scene.Position = r.Frames[i].Position
	scene.Facing = r.Frames[i].Facing
	return scene
}
