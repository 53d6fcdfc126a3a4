// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     maze
// Description: Rectangular maze grid with walls, a start cell and exits
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package maze

import (
	"fmt"
	"sort"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
)

// Point is a grid cell, 0-based row and column
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String returns "(r,c)"
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Add returns p shifted by dr, dc
func (p Point) Add(dr, dc int) Point {
	return Point{Row: p.Row + dr, Col: p.Col + dc}
}

// Maze is immutable once built
type Maze struct {
	name   string
	width  int
	height int
	walls  [][]bool
	start  Point
	exits  []Point
	isExit map[Point]bool
}

// New builds and validates a maze. Start and exits must be free cells
// inside the grid; walls must be inside the grid.
func New(width, height int, walls []Point, start Point, exits []Point) (*Maze, error) {
	if width <= 0 || height <= 0 {
		return nil, invalid("maze dimensions must be positive").
			WithDetail("width", width).
			WithDetail("height", height)
	}

	m := &Maze{
		width:  width,
		height: height,
		walls:  make([][]bool, height),
		start:  start,
		isExit: make(map[Point]bool, len(exits)),
	}
	for r := range m.walls {
		m.walls[r] = make([]bool, width)
	}

	for _, w := range walls {
		if !m.InBounds(w) {
			return nil, invalid("wall outside the grid").WithDetail("cell", w.String())
		}
		m.walls[w.Row][w.Col] = true
	}

	if !m.IsFree(start) {
		return nil, invalid("start must be a free cell inside the grid").WithDetail("cell", start.String())
	}

	if len(exits) == 0 {
		return nil, invalid("maze has no exit")
	}
	for _, e := range exits {
		if !m.IsFree(e) {
			return nil, invalid("exit must be a free cell inside the grid").WithDetail("cell", e.String())
		}
		if m.isExit[e] {
			continue
		}
		m.isExit[e] = true
		m.exits = append(m.exits, e)
	}

	return m, nil
}

func invalid(msg string) *mdwerror.Error {
	return mdwerror.New(msg).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("maze.validate")
}

// WithName returns a copy labelled name
func (m *Maze) WithName(name string) *Maze {
	c := *m
	c.name = name
	return &c
}

// Name returns the label, usually the source file
func (m *Maze) Name() string { return m.name }

// Width returns the column count
func (m *Maze) Width() int { return m.width }

// Height returns the row count
func (m *Maze) Height() int { return m.height }

// Start returns the start cell
func (m *Maze) Start() Point { return m.start }

// Exits returns a copy of the exit cells
func (m *Maze) Exits() []Point {
	out := make([]Point, len(m.exits))
	copy(out, m.exits)
	return out
}

// InBounds reports whether p lies on the grid
func (m *Maze) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < m.height && p.Col >= 0 && p.Col < m.width
}

// IsWall reports whether p is a wall. Cells off the grid count as walls.
func (m *Maze) IsWall(p Point) bool {
	if !m.InBounds(p) {
		return true
	}
	return m.walls[p.Row][p.Col]
}

// IsFree reports whether the robot may stand on p
func (m *Maze) IsFree(p Point) bool {
	return !m.IsWall(p)
}

// IsExit reports whether p is an exit
func (m *Maze) IsExit(p Point) bool {
	return m.isExit[p]
}

// Walls returns the wall cells in row-major order
func (m *Maze) Walls() []Point {
	var out []Point
	for r := 0; r < m.height; r++ {
		for c := 0; c < m.width; c++ {
			if m.walls[r][c] {
				out = append(out, Point{Row: r, Col: c})
			}
		}
	}
	return out
}

// Neighbors returns the free cells adjacent to p in N, S, W, E order
func (m *Maze) Neighbors(p Point) []Point {
	var out []Point
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if n := p.Add(d[0], d[1]); m.IsFree(n) {
			out = append(out, n)
		}
	}
	return out
}

// Solvable reports whether some exit is reachable from the start
func (m *Maze) Solvable() bool {
	_, ok := m.ShortestPath()
	return ok
}

// ShortestPath returns the number of moves from start to the nearest exit
func (m *Maze) ShortestPath() (int, bool) {
	dist := map[Point]int{m.start: 0}
	queue := []Point{m.start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if m.isExit[p] {
			return dist[p], true
		}
		for _, n := range m.Neighbors(p) {
			if _, seen := dist[n]; !seen {
				dist[n] = dist[p] + 1
				queue = append(queue, n)
			}
		}
	}
	return 0, false
}

// Document converts the maze back into its file representation
func (m *Maze) Document() Document {
	doc := Document{
		Width:  m.width,
		Height: m.height,
		Start:  []int{m.start.Row, m.start.Col},
		Walls:  [][]int{},
		Exits:  [][]int{},
	}
	for _, w := range m.Walls() {
		doc.Walls = append(doc.Walls, []int{w.Row, w.Col})
	}
	exits := m.Exits()
	sort.Slice(exits, func(i, j int) bool {
		if exits[i].Row != exits[j].Row {
			return exits[i].Row < exits[j].Row
		}
		return exits[i].Col < exits[j].Col
	})
	for _, e := range exits {
		doc.Exits = append(doc.Exits, []int{e.Row, e.Col})
	}
	return doc
}
