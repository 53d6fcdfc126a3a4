// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     maze
// Description: Loading maze documents from JSON, YAML, TOML or text grids
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package maze

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"gopkg.in/yaml.v3"
)

// Format identifies a maze document encoding
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
	FormatGrid
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// ParseFormat resolves a format name. The empty name means JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "grid", "txt", "maze":
		return FormatGrid, nil
	default:
		return FormatJSON, invalid(fmt.Sprintf("unknown maze format %q", name))
	}
}

// Document is the on-disk shape of a maze. Cells are [row, col] pairs.
type Document struct {
	Width  int     `json:"width" yaml:"width" toml:"width"`
	Height int     `json:"height" yaml:"height" toml:"height"`
	Walls  [][]int `json:"walls" yaml:"walls" toml:"walls"`
	Start  []int   `json:"start" yaml:"start" toml:"start"`
	Exits  [][]int `json:"exits" yaml:"exits" toml:"exits"`
}

// DetectFormat determines the format from the file extension
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".txt", ".maze":
		return FormatGrid
	default:
		return FormatJSON
	}
}

// Load reads and validates the maze at path
func Load(path string) (*Maze, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := mdwerror.CodeInvalidInput
		if os.IsNotExist(err) {
			code = mdwerror.CodeNotFound
		}
		return nil, mdwerror.Wrap(err, "failed to read maze").
			WithCode(code).
			WithDetail("path", path).
			WithOperation("maze.load")
	}

	m, err := Parse(data, DetectFormat(path))
	if err != nil {
		if mdwErr, ok := err.(*mdwerror.Error); ok {
			return nil, mdwErr.WithDetail("path", path)
		}
		return nil, err
	}
	return m.WithName(filepath.Base(path)), nil
}

// Parse decodes and validates a maze document
func Parse(data []byte, format Format) (*Maze, error) {
	if format == FormatGrid {
		return ParseGrid(string(data))
	}

	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	default:
		err = fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, format.String()+" maze parse error").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("format", format.String()).
			WithOperation("maze.parse")
	}

	return doc.Build()
}

// Build validates the document and constructs the maze
func (d Document) Build() (*Maze, error) {
	start, err := cell(d.Start, "start")
	if err != nil {
		return nil, err
	}

	walls := make([]Point, 0, len(d.Walls))
	for i, w := range d.Walls {
		p, err := cell(w, fmt.Sprintf("walls[%d]", i))
		if err != nil {
			return nil, err
		}
		walls = append(walls, p)
	}

	exits := make([]Point, 0, len(d.Exits))
	for i, e := range d.Exits {
		p, err := cell(e, fmt.Sprintf("exits[%d]", i))
		if err != nil {
			return nil, err
		}
		exits = append(exits, p)
	}

	return New(d.Width, d.Height, walls, start, exits)
}

func cell(pair []int, field string) (Point, error) {
	if len(pair) != 2 {
		return Point{}, invalid("cell must be a [row, col] pair").
			WithDetail("field", field).
			WithDetail("value", pair)
	}
	return Point{Row: pair[0], Col: pair[1]}, nil
}

// Marshal encodes the document in the given format
func (d Document) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(d, "", "  ")
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatGrid:
		m, err := d.Build()
		if err != nil {
			return nil, err
		}
		return []byte(m.GridText()), nil
	default:
		return nil, mdwerror.Newf("unsupported format: %s", format).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("maze.marshal")
	}
}

// GridText renders the maze in the text grid format read by ParseGrid
func (m *Maze) GridText() string {
	var b strings.Builder
	for row := 0; row < m.height; row++ {
		for col := 0; col < m.width; col++ {
			p := Point{Row: row, Col: col}
			switch {
			case p == m.start:
				b.WriteByte('S')
			case m.IsWall(p):
				b.WriteByte('#')
			case m.IsExit(p):
				b.WriteByte('E')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseGrid reads a text grid: '#' wall, '.' or ' ' free, 'S' start,
// 'E' exit. Short rows are padded with free cells.
func ParseGrid(text string) (*Maze, error) {
	var rows []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.TrimRight(line, " \t"))
	}
	if len(rows) == 0 {
		return nil, invalid("empty maze grid")
	}

	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	var (
		walls    []Point
		exits    []Point
		start    Point
		hasStart bool
	)
	for r, line := range rows {
		for c, ch := range []byte(line) {
			p := Point{Row: r, Col: c}
			switch ch {
			case '#':
				walls = append(walls, p)
			case '.', ' ':
			case 'S', 's':
				if hasStart {
					return nil, invalid("grid has more than one start").WithDetail("cell", p.String())
				}
				start, hasStart = p, true
			case 'E', 'e':
				exits = append(exits, p)
			default:
				return nil, invalid(fmt.Sprintf("unexpected grid character %q", ch)).WithDetail("cell", p.String())
			}
		}
	}
	if !hasStart {
		return nil, invalid("grid has no start")
	}

	return New(width, len(rows), walls, start, exits)
}
