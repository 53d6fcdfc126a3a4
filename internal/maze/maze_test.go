package maze

import (
	"os"
	"path/filepath"
	"testing"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
)

const corridorJSON = `{
  "width": 4,
  "height": 3,
  "walls": [[0,0],[0,1],[0,2],[0,3],[2,0],[2,1],[2,2],[2,3]],
  "start": [1,0],
  "exits": [[1,3]]
}`

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"JSON", FormatJSON, corridorJSON},
		{"YAML", FormatYAML, `
width: 4
height: 3
walls: [[0,0],[0,1],[0,2],[0,3],[2,0],[2,1],[2,2],[2,3]]
start: [1,0]
exits: [[1,3]]
`},
		{"TOML", FormatTOML, `
width = 4
height = 3
walls = [[0,0],[0,1],[0,2],[0,3],[2,0],[2,1],[2,2],[2,3]]
start = [1,0]
exits = [[1,3]]
`},
		{"Grid", FormatGrid, `
####
S..E
####
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if m.Width() != 4 || m.Height() != 3 {
				t.Errorf("Expected 4x3, got %dx%d", m.Width(), m.Height())
			}
			if m.Start() != (Point{1, 0}) {
				t.Errorf("Expected start (1,0), got %s", m.Start())
			}
			if !m.IsExit(Point{1, 3}) {
				t.Error("Expected exit at (1,3)")
			}
			if len(m.Walls()) != 8 {
				t.Errorf("Expected 8 walls, got %d", len(m.Walls()))
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"Bad JSON", FormatJSON, `{"width": 2,`},
		{"Unknown field", FormatJSON, `{"width": 2, "height": 2, "start": [0,0], "exits": [[1,1]], "robots": 2}`},
		{"Zero width", FormatJSON, `{"width": 0, "height": 2, "start": [0,0], "exits": [[1,1]]}`},
		{"Start on wall", FormatJSON, `{"width": 2, "height": 2, "walls": [[0,0]], "start": [0,0], "exits": [[1,1]]}`},
		{"Start outside", FormatJSON, `{"width": 2, "height": 2, "start": [2,0], "exits": [[1,1]]}`},
		{"Wall outside", FormatJSON, `{"width": 2, "height": 2, "walls": [[5,5]], "start": [0,0], "exits": [[1,1]]}`},
		{"Exit on wall", FormatJSON, `{"width": 2, "height": 2, "walls": [[1,1]], "start": [0,0], "exits": [[1,1]]}`},
		{"No exit", FormatJSON, `{"width": 2, "height": 2, "start": [0,0], "exits": []}`},
		{"Short pair", FormatJSON, `{"width": 2, "height": 2, "start": [0], "exits": [[1,1]]}`},
		{"Grid without start", FormatGrid, "..E"},
		{"Grid with two starts", FormatGrid, "S.S\n..E"},
		{"Grid bad char", FormatGrid, "S?E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), tt.format)
			if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
				t.Errorf("Expected invalid input error, got %v", err)
			}
		})
	}
}

func TestMaze_Walls(t *testing.T) {
	m, err := ParseGrid("S#\n.E")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		cell     Point
		expected bool
	}{
		{Point{0, 0}, false},
		{Point{0, 1}, true},
		{Point{-1, 0}, true},
		{Point{0, 2}, true},
		{Point{2, 0}, true},
	}
	for _, tt := range tests {
		if got := m.IsWall(tt.cell); got != tt.expected {
			t.Errorf("IsWall(%s): expected %v, got %v", tt.cell, tt.expected, got)
		}
	}
}

func TestMaze_ShortestPath(t *testing.T) {
	m, err := ParseGrid(`
S.#
#.#
#.E
`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	steps, ok := m.ShortestPath()
	if !ok || steps != 4 {
		t.Errorf("Expected 4 steps, got %d (%v)", steps, ok)
	}

	blocked, err := ParseGrid("S#E")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if blocked.Solvable() {
		t.Error("Expected unsolvable maze")
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	m, err := Parse([]byte(corridorJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML, FormatGrid} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := m.Document().Marshal(format)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}
			back, err := Parse(data, format)
			if err != nil {
				t.Fatalf("Parse error: %v\n%s", err, data)
			}
			if len(back.Walls()) != len(m.Walls()) || back.Start() != m.Start() {
				t.Errorf("Expected equal maze after %s round trip", format)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corridor.json")
	if err := os.WriteFile(path, []byte(corridorJSON), 0644); err != nil {
		t.Fatalf("Failed to write maze: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.Name() != "corridor.json" {
		t.Errorf("Expected name corridor.json, got %s", m.Name())
	}

	_, err = Load(filepath.Join(dir, "missing.json"))
	if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
	}{
		{"maze.json", FormatJSON},
		{"maze.YAML", FormatYAML},
		{"maze.yml", FormatYAML},
		{"maze.toml", FormatTOML},
		{"maze.txt", FormatGrid},
		{"maze", FormatJSON},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.path, tt.expected, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name     string
		expected Format
		wantErr  bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"grid", FormatGrid, false},
		{"xml", FormatJSON, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}
