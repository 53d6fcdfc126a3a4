package render

import (
	"strings"
	"testing"

	"github.com/msto63/cellbot/internal/maze"
)

func TestRenderer_PlainGrid(t *testing.T) {
	m, err := maze.ParseGrid(`
#####
#S..E
#####
`)
	if err != nil {
		t.Fatalf("Failed to parse maze: %v", err)
	}

	scene := Scene{
		Maze:     m,
		Position: maze.Point{Row: 1, Col: 3},
		Facing:   "E",
		Visited: map[maze.Point]bool{
			{Row: 1, Col: 1}: true,
			{Row: 1, Col: 2}: true,
			{Row: 1, Col: 3}: true,
		},
	}

	expected := "#####\n#++>E\n#####"
	if got := New(true).Grid(scene); got != expected {
		t.Errorf("Expected\n%s\ngot\n%s", expected, got)
	}
}

func TestRenderer_Arrows(t *testing.T) {
	tests := []struct {
		facing   string
		expected string
	}{
		{"N", "^"},
		{"E", ">"},
		{"S", "v"},
		{"W", "<"},
	}

	m, err := maze.ParseGrid("SE")
	if err != nil {
		t.Fatalf("Failed to parse maze: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.facing, func(t *testing.T) {
			got := New(true).Grid(Scene{Maze: m, Facing: tt.facing})
			if got != tt.expected+"E" {
				t.Errorf("Expected %sE, got %s", tt.expected, got)
			}
		})
	}
}

func TestRenderer_PlainReport(t *testing.T) {
	out := New(true).Report("Exit reached", true, []Field{
		{"Steps", "12"},
		{"Position", "(1,4)"},
	})

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %q", out)
	}
	if lines[0] != "Exit reached" {
		t.Errorf("Expected title line, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Steps:") || !strings.HasSuffix(lines[1], "12") {
		t.Errorf("Unexpected field line %q", lines[1])
	}
}

func TestRenderer_StyledContainsGrid(t *testing.T) {
	m, err := maze.ParseGrid("S#E")
	if err != nil {
		t.Fatalf("Failed to parse maze: %v", err)
	}
	out := New(false).Maze(Scene{Maze: m, Facing: "N"}, "demo")
	if !strings.Contains(out, "demo") {
		t.Errorf("Expected title in panel, got %q", out)
	}
	if !strings.Contains(out, GlyphWall) {
		t.Errorf("Expected wall glyph in panel, got %q", out)
	}
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	if strings.Join(keys, ",") != "a,b,c" {
		t.Errorf("Expected a,b,c, got %v", keys)
	}
}
