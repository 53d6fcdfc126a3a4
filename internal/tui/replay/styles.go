// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     replay
// Description: Styles for the replay TUI
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package replay

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/cellbot/internal/render"
)

// Additional colors on top of the render palette
var (
	ColorBgPanel = lipgloss.Color("#1E293B") // Slate 800
	ColorTextDim = lipgloss.Color("#64748B") // Slate 500
)

// Logo/Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(render.ColorPrimary).
			Bold(true)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(render.ColorPrimary).
			Padding(0, 2)
)

// Panel styles
var (
	LogPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(render.ColorDimmed).
			Padding(0, 1)

	LogLineStyle = lipgloss.NewStyle().
			Foreground(render.ColorTextMuted)

	ActionStyle = lipgloss.NewStyle().
			Foreground(render.ColorSecondary).
			Bold(true)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(render.ColorText).
			Padding(0, 1)

	StatusPlayingStyle = lipgloss.NewStyle().
				Foreground(render.ColorSuccess).
				Bold(true)

	StatusPausedStyle = lipgloss.NewStyle().
				Foreground(render.ColorWarning).
				Bold(true)

	StatusLiveStyle = lipgloss.NewStyle().
			Foreground(render.ColorError).
			Bold(true)
)

// Help styles
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(render.ColorTextMuted).
			MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(render.ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Logo
const Logo = "cellbot replay"

// RenderKeyHint renders a keyboard shortcut hint
func RenderKeyHint(key, description string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}
