// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     replay
// Description: Bubbletea model that animates a run, either recorded from
//              history or streamed live from the runner
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package replay

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/render"
	"github.com/msto63/cellbot/internal/runner"
)

const (
	minInterval = 10 * time.Millisecond
	maxInterval = 2 * time.Second
)

// Config holds replay configuration
type Config struct {
	Title    string
	Maze     *maze.Maze
	Report   *runner.Report  // recorded run; nil for live runs until done
	Events   <-chan Event    // live run events; nil for recorded runs
	Log      func() []string // log lines shown below the maze
	Interval time.Duration   // time between frames during playback
}

// DefaultInterval is the playback speed when none is configured
const DefaultInterval = 150 * time.Millisecond

// Model is the Bubbletea model for the replay viewer
type Model struct {
	// State
	width    int
	height   int
	ready    bool
	playing  bool
	live     bool
	index    int
	interval time.Duration

	// Components
	viewport viewport.Model
	spinner  spinner.Model
	renderer *render.Renderer

	// Run
	title  string
	maze   *maze.Maze
	frames []runner.Frame
	report *runner.Report
	events <-chan Event
	log    func() []string
}

// New creates a replay model
func New(cfg Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(render.ColorPrimary)

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	m := Model{
		playing:  true,
		live:     cfg.Events != nil,
		interval: interval,
		spinner:  sp,
		renderer: render.New(false),
		title:    cfg.Title,
		maze:     cfg.Maze,
		report:   cfg.Report,
		events:   cfg.Events,
		log:      cfg.Log,
	}
	if cfg.Report != nil {
		m.frames = cfg.Report.Frames
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.tick()}
	if m.live {
		cmds = append(cmds, m.listen())
	}
	return tea.Batch(cmds...)
}

// Index returns the frame currently shown
func (m Model) Index() int { return m.index }

// Playing reports whether playback is running
func (m Model) Playing() bool { return m.playing }

// Frames returns the number of frames known so far
func (m Model) Frames() int { return len(m.frames) }

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		logHeight := msg.Height - m.mazeHeight() - 8
		if logHeight < 3 {
			logHeight = 3
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, logHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = logHeight
		}
		m.updateViewportContent()

	case spinner.TickMsg:
		if m.live && m.report == nil {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tickMsg:
		if m.playing && m.index < len(m.frames)-1 {
			m.index++
		}
		m.updateViewportContent()
		cmds = append(cmds, m.tick())

	case frameMsg:
		atEnd := m.index >= len(m.frames)-1
		m.frames = append(m.frames, msg.frame)
		if m.playing && atEnd {
			m.index = len(m.frames) - 1
		}
		cmds = append(cmds, m.listen())

	case finishedMsg:
		m.report = msg.report
		if len(msg.report.Frames) > len(m.frames) {
			m.frames = msg.report.Frames
		}
		m.updateViewportContent()
		cmds = append(cmds, m.listen())

	case closedMsg:
		m.events = nil
	}

	// Update viewport
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeySpace:
		m.playing = !m.playing
		return m, nil

	case tea.KeyRight:
		m.step(1)
		return m, nil

	case tea.KeyLeft:
		m.step(-1)
		return m, nil

	case tea.KeyHome:
		m.index = 0
		m.playing = false
		return m, nil

	case tea.KeyEnd:
		m.index = max(len(m.frames)-1, 0)
		return m, nil

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		return m, nil

	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			return m, tea.Quit

		// Pause/Resume
		case "p":
			m.playing = !m.playing
			return m, nil

		// Single steps
		case "l":
			m.step(1)
			return m, nil
		case "h":
			m.step(-1)
			return m, nil

		// Go to start / end
		case "g":
			m.index = 0
			m.playing = false
			return m, nil
		case "G":
			m.index = max(len(m.frames)-1, 0)
			return m, nil

		// Speed
		case "+":
			m.interval = max(m.interval/2, minInterval)
			return m, nil
		case "-":
			m.interval = min(m.interval*2, maxInterval)
			return m, nil
		}
	}

	return m, nil
}

// step moves by delta frames and pauses playback
func (m *Model) step(delta int) {
	m.playing = false
	m.index += delta
	if m.index >= len(m.frames) {
		m.index = len(m.frames) - 1
	}
	if m.index < 0 {
		m.index = 0
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading replay..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderer.Maze(m.scene(), m.title),
		"  ",
		m.renderSidePanel(),
	))
	b.WriteString("\n")

	b.WriteString(LogPanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	b.WriteString(m.renderHelpBar())

	return b.String()
}

// scene returns the render scene of the current frame
func (m Model) scene() render.Scene {
	r := runner.Report{Frames: m.frames}
	return r.Scene(m.maze, m.index)
}

func (m Model) mazeHeight() int {
	if m.maze == nil {
		return 0
	}
	return m.maze.Height() + 3
}

// renderHeader renders the header with logo and state
func (m Model) renderHeader() string {
	var state string
	switch {
	case m.live && m.report == nil:
		state = StatusLiveStyle.Render("LIVE")
	case m.playing:
		state = StatusPlayingStyle.Render("PLAYING")
	default:
		state = StatusPausedStyle.Render("PAUSED")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(Logo),
		strings.Repeat(" ", 3),
		state,
	)
	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

// renderSidePanel shows the current frame, or the report once the last
// frame of a finished run is on screen
func (m Model) renderSidePanel() string {
	if m.report != nil && m.index >= len(m.frames)-1 {
		return m.renderer.Report(m.report.Title(), m.report.Status.OK(), m.report.Fields())
	}

	fields := []render.Field{{Label: "Frame", Value: fmt.Sprintf("%d/%d", m.index+1, len(m.frames))}}
	if m.index < len(m.frames) {
		f := m.frames[m.index]
		fields = append(fields,
			render.Field{Label: "Action", Value: ActionStyle.Render(f.Action)},
			render.Field{Label: "Position", Value: f.Position.String()},
			render.Field{Label: "Facing", Value: f.Facing},
			render.Field{Label: "Visited", Value: strconv.Itoa(f.Visited)},
		)
		if f.AtExit {
			fields = append(fields, render.Field{Label: "At exit", Value: "yes"})
		}
	}
	return m.renderer.Report("Step "+strconv.Itoa(m.index), true, fields)
}

// renderStatusBar renders the status bar
func (m Model) renderStatusBar() string {
	left := HelpDescStyle.Render(fmt.Sprintf("Frame %d of %d", m.index+1, len(m.frames)))
	right := HelpDescStyle.Render(fmt.Sprintf("%v/frame", m.interval))
	if m.live && m.report == nil {
		right = m.spinner.View() + " running"
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 2 {
		padding = 2
	}
	return StatusBarStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", padding) + right)
}

// renderHelpBar renders the help shortcuts bar
func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("space", "Play/Pause"),
		RenderKeyHint("h/l", "Step"),
		RenderKeyHint("g/G", "Start/End"),
		RenderKeyHint("+/-", "Speed"),
		RenderKeyHint("q", "Quit"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// updateViewportContent shows the run log, or the action list when there
// is no log
func (m *Model) updateViewportContent() {
	var lines []string
	if m.log != nil {
		lines = m.log()
	}
	if len(lines) == 0 {
		for i, f := range m.frames[:min(m.index+1, len(m.frames))] {
			lines = append(lines, fmt.Sprintf("%4d  %-12s %s %s", i, f.Action, f.Position, f.Facing))
		}
	}

	var content strings.Builder
	for _, line := range lines {
		content.WriteString(LogLineStyle.Render(line))
		content.WriteString("\n")
	}
	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// tick schedules the next playback step
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listen waits for the next live event
func (m Model) listen() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		if ev.Report != nil {
			return finishedMsg{report: ev.Report}
		}
		return frameMsg{frame: *ev.Frame}
	}
}

// Run starts the replay TUI
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
