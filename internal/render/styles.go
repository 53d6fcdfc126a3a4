// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     render
// Description: Styles for maze and report rendering
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorWall      = lipgloss.Color("#475569") // Slate 600
	ColorVisited   = lipgloss.Color("#1E3A8A") // Blue 900
)

// Cell styles
var (
	WallStyle = lipgloss.NewStyle().
			Foreground(ColorWall)

	FreeStyle = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	VisitedStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	ExitStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	RobotStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	RobotOnExitStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Background(ColorVisited).
				Bold(true)
)

// Panel styles
var (
	MazePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	ReportPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Width(12)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StatusFailStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	DiagnosticStyle = lipgloss.NewStyle().
			Foreground(ColorError)
)

// Glyphs, two columns per cell in styled mode
const (
	GlyphWall    = "██"
	GlyphFree    = "  "
	GlyphVisited = "··"
	GlyphExit    = "[]"
)
