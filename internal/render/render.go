// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     render
// Description: Terminal rendering of a maze with the robot, its trail and
//              the final run report
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/cellbot/internal/maze"
)

// Scene is what the renderer draws: a maze and the robot at one moment
type Scene struct {
	Maze     *maze.Maze
	Position maze.Point
	Facing   string
	Visited  map[maze.Point]bool
}

// Field is one labelled line of a report panel
type Field struct {
	Label string
	Value string
}

// Renderer draws scenes. Plain renderers emit one ASCII character per cell
// and no escape sequences.
type Renderer struct {
	plain bool
}

// New creates a renderer
func New(plain bool) *Renderer {
	return &Renderer{plain: plain}
}

// Plain reports whether the renderer is in ASCII mode
func (r *Renderer) Plain() bool { return r.plain }

// arrow returns the robot glyph for a facing letter
func arrow(facing string) string {
	switch facing {
	case "E":
		return ">"
	case "S":
		return "v"
	case "W":
		return "<"
	default:
		return "^"
	}
}

// Grid renders the maze rows
func (r *Renderer) Grid(s Scene) string {
	m := s.Maze
	lines := make([]string, 0, m.Height())

	for row := 0; row < m.Height(); row++ {
		var b strings.Builder
		for col := 0; col < m.Width(); col++ {
			b.WriteString(r.cell(s, maze.Point{Row: row, Col: col}))
		}
		lines = append(lines, b.String())
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) cell(s Scene, p maze.Point) string {
	m := s.Maze
	isRobot := p == s.Position

	if r.plain {
		switch {
		case isRobot:
			return arrow(s.Facing)
		case m.IsWall(p):
			return "#"
		case m.IsExit(p):
			return "E"
		case s.Visited[p]:
			return "+"
		default:
			return "."
		}
	}

	switch {
	case isRobot && m.IsExit(p):
		return RobotOnExitStyle.Render(arrow(s.Facing) + arrow(s.Facing))
	case isRobot:
		return RobotStyle.Render(arrow(s.Facing) + " ")
	case m.IsWall(p):
		return WallStyle.Render(GlyphWall)
	case m.IsExit(p):
		return ExitStyle.Render(GlyphExit)
	case s.Visited[p]:
		return VisitedStyle.Render(GlyphVisited)
	default:
		return FreeStyle.Render(GlyphFree)
	}
}

// Maze renders the grid inside a titled panel
func (r *Renderer) Maze(s Scene, title string) string {
	grid := r.Grid(s)
	if r.plain {
		if title == "" {
			return grid
		}
		return title + "\n" + grid
	}
	if title == "" {
		return MazePanelStyle.Render(grid)
	}
	return MazePanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), grid))
}

// Report renders labelled fields. ok selects the status color.
func (r *Renderer) Report(title string, ok bool, fields []Field) string {
	var b strings.Builder

	if r.plain {
		b.WriteString(title)
		for _, f := range fields {
			fmt.Fprintf(&b, "\n%-12s%s", f.Label+":", f.Value)
		}
		return b.String()
	}

	titleStyle := StatusOKStyle
	if !ok {
		titleStyle = StatusFailStyle
	}
	lines := []string{titleStyle.Render(title)}
	for _, f := range fields {
		lines = append(lines, LabelStyle.Render(f.Label)+ValueStyle.Render(f.Value))
	}
	return ReportPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Diagnostic renders an error line
func (r *Renderer) Diagnostic(msg string) string {
	if r.plain {
		return msg
	}
	return DiagnosticStyle.Render(msg)
}

// SortedKeys returns map keys in order, used for stable report fields
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
