package runner

import (
	"context"
	"testing"
	"time"

	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/foundation/rcl"
	"github.com/msto63/cellbot/internal/maze"
)

const corridorProgram = `
ROTATE RIGHT
TASK FINDEXIT () (
	VAR i = 0
	VAR steps = 0
	FOR i BOUNDARY 100 STEP 1 (
		VAR env = GET ENVIRONMENT
		SWITCH env[1, 2, 1] FALSE ( MOVE steps = steps + 1 ) TRUE ( i = 100 )
	)
	RESULT steps
)
`

func newTestRunner() *Runner {
	engine := rcl.NewEngine(rcl.Config{
		Logger:        mdwlog.Discard(),
		EntryTask:     rcl.DefaultEntryTask,
		MaxIterations: 10000,
	})
	return New(engine, mdwlog.Discard())
}

func corridor(t *testing.T) *maze.Maze {
	t.Helper()
	m, err := maze.ParseGrid("S..E")
	if err != nil {
		t.Fatalf("Failed to parse maze: %v", err)
	}
	return m
}

func TestRunner_ExitReached(t *testing.T) {
	var observed []Frame
	report, err := newTestRunner().Execute(context.Background(), corridorProgram, corridor(t), Options{
		RunID:        "run-1",
		RecordFrames: true,
		Observers:    []Observer{func(f Frame) { observed = append(observed, f) }},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if report.Status != StatusExited {
		t.Errorf("Expected status exited, got %s", report.Status)
	}
	if report.Moves != 3 {
		t.Errorf("Expected 3 moves, got %d", report.Moves)
	}
	// rotate + 3 x (sense, move) + final sense
	if report.Actions != 8 {
		t.Errorf("Expected 8 actions, got %d", report.Actions)
	}
	if len(report.Frames) != 9 {
		t.Errorf("Expected 9 frames including start, got %d", len(report.Frames))
	}
	if len(observed) != len(report.Frames) {
		t.Errorf("Expected observers to see %d frames, got %d", len(report.Frames), len(observed))
	}
	if observed[0].Action != "start" || observed[1].Action != "rotate_right" {
		t.Errorf("Unexpected first frames %+v", observed[:2])
	}
	if observed[1].RunID != "run-1" {
		t.Errorf("Expected run id on frames, got %q", observed[1].RunID)
	}
	if got := report.Results["FINDEXIT"]; got != 3 {
		t.Errorf("Expected FINDEXIT result 3, got %v", got)
	}
	if report.Facing != "E" {
		t.Errorf("Expected facing E, got %s", report.Facing)
	}

	last := report.Scene(corridor(t), len(report.Frames)-1)
	if last.Position != (maze.Point{Row: 0, Col: 3}) || len(last.Visited) != 4 {
		t.Errorf("Unexpected final scene %+v", last)
	}
}

func TestRunner_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		program  string
		status   Status
		wantErr  bool
		position maze.Point
	}{
		{"Finished without exit", "ROTATE RIGHT MOVE", StatusFinished, false, maze.Point{Row: 0, Col: 1}},
		{"Wall collision", "MOVE", StatusCollision, true, maze.Point{Row: 0, Col: 0}},
		{"Runtime error", "ROTATE RIGHT MOVE VAR x = 1 / 0", StatusFailed, true, maze.Point{Row: 0, Col: 1}},
		{"Compile error", "MOVE\nROTATE UP", StatusCompileError, true, maze.Point{Row: 0, Col: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newTestRunner().Execute(context.Background(), tt.program, corridor(t), Options{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if report.Status != tt.status {
				t.Errorf("Expected status %s, got %s", tt.status, report.Status)
			}
			if report.Position != tt.position {
				t.Errorf("Expected position %s, got %s", tt.position, report.Position)
			}
			if tt.wantErr && report.Error == "" {
				t.Error("Expected error text in report")
			}
		})
	}
}

func TestRunner_CompileErrorPosition(t *testing.T) {
	report, _ := newTestRunner().Execute(context.Background(), "MOVE\nROTATE UP", corridor(t), Options{})
	if report.Line != 2 {
		t.Errorf("Expected line 2, got %d", report.Line)
	}
	if report.ErrorCode != "RCL_SYNTAX" {
		t.Errorf("Expected RCL_SYNTAX, got %s", report.ErrorCode)
	}
}

func TestRunner_TimeoutDuringDelay(t *testing.T) {
	start := time.Now()
	report, err := newTestRunner().Execute(context.Background(),
		"ROTATE RIGHT ROTATE RIGHT ROTATE RIGHT ROTATE RIGHT ROTATE RIGHT", corridor(t),
		Options{StepDelay: time.Second, Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if report.Status != StatusCancelled {
		t.Errorf("Expected status cancelled, got %s", report.Status)
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Errorf("Expected delay to stop at the deadline, took %v", time.Since(start))
	}
}

func TestRunner_EntryTaskOverride(t *testing.T) {
	src := "TASK GO () ( ROTATE RIGHT MOVE RESULT 1 )"
	report, err := newTestRunner().Execute(context.Background(), src, corridor(t), Options{EntryTask: "GO"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Moves != 1 {
		t.Errorf("Expected 1 move, got %d", report.Moves)
	}
}

func TestReport_Fields(t *testing.T) {
	report := &Report{
		RunID:   "abc",
		Status:  StatusFailed,
		Error:   "division by zero",
		Line:    3,
		Column:  9,
		Results: map[string]interface{}{"B": 2, "A": 1},
	}
	fields := report.Fields()

	var labels []string
	for _, f := range fields {
		labels = append(labels, f.Label)
	}
	n := len(labels)
	if labels[n-3] != "GET A" || labels[n-2] != "GET B" || labels[n-1] != "Error" {
		t.Errorf("Unexpected trailing labels %v", labels[n-3:])
	}
	if fields[n-1].Value != "division by zero (line 3, column 9)" {
		t.Errorf("Unexpected error field %q", fields[n-1].Value)
	}
}
