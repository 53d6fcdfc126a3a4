package robot

import (
	"testing"

	"github.com/msto63/cellbot/internal/maze"
)

func mustGrid(t *testing.T, grid string) *maze.Maze {
	t.Helper()
	m, err := maze.ParseGrid(grid)
	if err != nil {
		t.Fatalf("Failed to parse maze: %v", err)
	}
	return m
}

func TestFacing_Rotation(t *testing.T) {
	tests := []struct {
		facing      Facing
		left, right Facing
	}{
		{North, West, East},
		{East, North, South},
		{South, East, West},
		{West, South, North},
	}
	for _, tt := range tests {
		t.Run(tt.facing.String(), func(t *testing.T) {
			if got := tt.facing.Left(); got != tt.left {
				t.Errorf("Expected left %s, got %s", tt.left, got)
			}
			if got := tt.facing.Right(); got != tt.right {
				t.Errorf("Expected right %s, got %s", tt.right, got)
			}
		})
	}
}

func TestRobot_RotateFourTimes(t *testing.T) {
	r := New(mustGrid(t, "S.E"))
	for i := 0; i < 4; i++ {
		r.RotateRight()
	}
	if r.Facing() != North {
		t.Errorf("Expected N, got %s", r.Facing())
	}
	r.RotateLeft()
	if r.Facing() != West {
		t.Errorf("Expected W, got %s", r.Facing())
	}
}

func TestRobot_Move(t *testing.T) {
	r := New(mustGrid(t, `
#E#
#.#
#S#
`))

	if r.Facing() != North {
		t.Fatalf("Expected initial facing N, got %s", r.Facing())
	}
	if !r.Move() {
		t.Fatal("Expected first move to succeed")
	}
	if !r.Move() {
		t.Fatal("Expected second move to succeed")
	}
	if !r.AtExit() {
		t.Error("Expected robot at exit")
	}
	before := r.Snapshot()
	if r.Move() {
		t.Error("Expected move off the grid to fail")
	}
	if r.Position() != (maze.Point{Row: 0, Col: 1}) {
		t.Errorf("Expected position (0,1), got %s", r.Position())
	}

	state := r.Snapshot()
	if state != before {
		t.Errorf("Expected blocked move to leave state %+v, got %+v", before, state)
	}
	if state.Moves != 2 || state.Visited != 3 {
		t.Errorf("Unexpected snapshot %+v", state)
	}
}

func TestRobot_Environment(t *testing.T) {
	// wall north and east of the start
	m := mustGrid(t, `
.#.
.S#
...
E..
`)

	tests := []struct {
		name                     string
		facing                   Facing
		front, left, right, back bool
	}{
		{"North", North, true, false, true, false},
		{"East", East, true, true, false, false},
		{"South", South, false, true, false, true},
		{"West", West, false, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewAt(m, m.Start(), tt.facing)
			env := r.Environment()

			if env[0][1][LayerWalls] != tt.front {
				t.Errorf("front: expected %v, got %v", tt.front, env[0][1][LayerWalls])
			}
			if env[1][0][LayerWalls] != tt.left {
				t.Errorf("left: expected %v, got %v", tt.left, env[1][0][LayerWalls])
			}
			if env[1][2][LayerWalls] != tt.right {
				t.Errorf("right: expected %v, got %v", tt.right, env[1][2][LayerWalls])
			}
			if env[2][1][LayerWalls] != tt.back {
				t.Errorf("back: expected %v, got %v", tt.back, env[2][1][LayerWalls])
			}
			if env[1][1][LayerExit] {
				t.Error("Expected no exit at start")
			}
			for _, corner := range [][2]int{{0, 0}, {0, 2}, {2, 0}, {2, 2}} {
				if env[corner[0]][corner[1]][LayerWalls] {
					t.Errorf("Expected corner %v to be false", corner)
				}
			}
		})
	}
}

func TestRobot_EnvironmentExitLayer(t *testing.T) {
	m := mustGrid(t, "SE")
	r := NewAt(m, m.Start(), East)
	r.Move()

	env := r.Environment()
	if !env[1][1][LayerExit] {
		t.Error("Expected exit flag in the center of layer 1")
	}
	if !env[0][1][LayerWalls] {
		t.Error("Expected the grid edge ahead to count as a wall")
	}
}

func TestRobot_Visited(t *testing.T) {
	m := mustGrid(t, "S..E")
	r := NewAt(m, m.Start(), East)
	r.Move()
	r.Move()
	r.RotateLeft()
	r.RotateLeft()
	r.Move()

	visited := r.Visited()
	if len(visited) != 3 {
		t.Fatalf("Expected 3 visited cells, got %v", visited)
	}
	if visited[0] != (maze.Point{Row: 0, Col: 0}) || visited[2] != (maze.Point{Row: 0, Col: 2}) {
		t.Errorf("Expected row-major order, got %v", visited)
	}
	if r.HasVisited(maze.Point{Row: 0, Col: 3}) {
		t.Error("Exit should not be visited")
	}
}

func TestParseFacing(t *testing.T) {
	for _, s := range []string{"N", "e", "S", "w"} {
		if _, ok := ParseFacing(s); !ok {
			t.Errorf("Expected %s to parse", s)
		}
	}
	if _, ok := ParseFacing("X"); ok {
		t.Error("Expected X to be rejected")
	}
}
