// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     robot
// Description: Robot state inside a maze: position, facing, visited cells
//              and the 3x3x2 sensor view handed to RCL programs
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package robot

import (
	"sort"

	"github.com/msto63/cellbot/internal/maze"
)

// Facing is one of the four compass directions
type Facing int

const (
	North Facing = iota
	East
	South
	West
)

// String returns N, E, S or W
func (f Facing) String() string {
	switch f {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return "?"
	}
}

// ParseFacing accepts N, E, S or W
func ParseFacing(s string) (Facing, bool) {
	switch s {
	case "N", "n":
		return North, true
	case "E", "e":
		return East, true
	case "S", "s":
		return South, true
	case "W", "w":
		return West, true
	}
	return North, false
}

// Left returns the direction after a counter-clockwise quarter turn
func (f Facing) Left() Facing { return (f + 3) % 4 }

// Right returns the direction after a clockwise quarter turn
func (f Facing) Right() Facing { return (f + 1) % 4 }

// Back returns the opposite direction
func (f Facing) Back() Facing { return (f + 2) % 4 }

// Delta returns the row and column offset of one step
func (f Facing) Delta() (int, int) {
	switch f {
	case North:
		return -1, 0
	case East:
		return 0, 1
	case South:
		return 1, 0
	default:
		return 0, -1
	}
}

// Sensor layers of the Environment grid
const (
	LayerWalls = 0
	LayerExit  = 1
)

// State is a snapshot of the robot
type State struct {
	Position maze.Point `json:"position"`
	Facing   string     `json:"facing"`
	AtExit   bool       `json:"at_exit"`
	Visited  int        `json:"visited"`
	Moves    int        `json:"moves"`
	Turns    int        `json:"turns"`
}

// Robot moves through a maze. It is not safe for concurrent use.
type Robot struct {
	maze     *maze.Maze
	position maze.Point
	facing   Facing
	visited  map[maze.Point]bool
	moves    int
	turns    int
}

// New places a robot on the maze start, facing north
func New(m *maze.Maze) *Robot {
	return NewAt(m, m.Start(), North)
}

// NewAt places a robot at p facing f
func NewAt(m *maze.Maze, p maze.Point, f Facing) *Robot {
	return &Robot{
		maze:     m,
		position: p,
		facing:   f,
		visited:  map[maze.Point]bool{p: true},
	}
}

// Maze returns the maze the robot walks
func (r *Robot) Maze() *maze.Maze { return r.maze }

// Position returns the current cell
func (r *Robot) Position() maze.Point { return r.position }

// Facing returns the current direction
func (r *Robot) Facing() Facing { return r.facing }

// Move steps one cell forward. A wall ahead leaves the robot untouched and
// returns false.
func (r *Robot) Move() bool {
	dr, dc := r.facing.Delta()
	next := r.position.Add(dr, dc)
	if r.maze.IsWall(next) {
		return false
	}
	r.position = next
	r.visited[next] = true
	r.moves++
	return true
}

// RotateLeft turns counter-clockwise
func (r *Robot) RotateLeft() {
	r.facing = r.facing.Left()
	r.turns++
}

// RotateRight turns clockwise
func (r *Robot) RotateRight() {
	r.facing = r.facing.Right()
	r.turns++
}

// AtExit reports whether the robot stands on an exit
func (r *Robot) AtExit() bool {
	return r.maze.IsExit(r.position)
}

// Environment returns the sensor view relative to the facing direction.
// Layer 0 marks walls at front [0][1], left [1][0], right [1][2] and back
// [2][1]. Layer 1 marks the exit at the center [1][1]. Other cells are false.
func (r *Robot) Environment() [3][3][2]bool {
	var env [3][3][2]bool

	sides := []struct {
		dir      Facing
		row, col int
	}{
		{r.facing, 0, 1},
		{r.facing.Left(), 1, 0},
		{r.facing.Right(), 1, 2},
		{r.facing.Back(), 2, 1},
	}
	for _, s := range sides {
		dr, dc := s.dir.Delta()
		env[s.row][s.col][LayerWalls] = r.maze.IsWall(r.position.Add(dr, dc))
	}
	env[1][1][LayerExit] = r.AtExit()

	return env
}

// Visited returns the visited cells in row-major order
func (r *Robot) Visited() []maze.Point {
	out := make([]maze.Point, 0, len(r.visited))
	for p := range r.visited {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// HasVisited reports whether the robot has stood on p
func (r *Robot) HasVisited(p maze.Point) bool {
	return r.visited[p]
}

// Snapshot captures the current state
func (r *Robot) Snapshot() State {
	return State{
		Position: r.position,
		Facing:   r.facing.String(),
		AtExit:   r.AtExit(),
		Visited:  len(r.visited),
		Moves:    r.moves,
		Turns:    r.turns,
	}
}
