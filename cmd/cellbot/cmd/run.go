package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/msto63/cellbot/internal/history"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/render"
	"github.com/msto63/cellbot/internal/runner"
	"github.com/msto63/cellbot/internal/spectator"
	"github.com/msto63/cellbot/internal/tui/replay"
	"github.com/spf13/cobra"
)

var (
	runMaze      string
	runEntry     string
	runDelay     time.Duration
	runTimeout   time.Duration
	runTUI       bool
	runSpectate  bool
	runPlain     bool
	runNoHistory bool
)

var runCmd = &cobra.Command{
	Use:   "run <program.rcl>",
	Short: "Runs an RCL program in a maze",
	Long: `Runs an RCL program on a robot placed at the start of a maze.

The robot starts facing north. Walls and the border stop the robot; a
MOVE into a wall ends the run. The final maze and a report are printed
once the program finishes.

Examples:
  cellbot run examples/programs/right_hand.rcl --maze examples/mazes/spiral.json
  cellbot run prog.rcl --maze maze.txt --tui --delay 100ms
  cellbot run prog.rcl --maze maze.yaml --spectate`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runMaze, "maze", "m", "", "maze file (.json, .yaml, .toml or .txt grid)")
	runCmd.Flags().StringVarP(&runEntry, "entry", "e", "", "entry task (default from config: FINDEXIT)")
	runCmd.Flags().DurationVar(&runDelay, "delay", 0, "pause after every robot action")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort the run after this duration")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "watch the run in the terminal UI")
	runCmd.Flags().BoolVar(&runSpectate, "spectate", false, "stream frames to WebSocket spectators")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "plain ASCII output without colors")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run in the history")
	runCmd.MarkFlagRequired("maze")
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := readProgram(path)
	if err != nil {
		return err
	}
	m, err := loadMaze(runMaze)
	if err != nil {
		return err
	}

	opts := runner.Options{
		RunID:        uuid.New().String(),
		Program:      path,
		EntryTask:    runEntry,
		StepDelay:    appConfig.Run.StepDelay.Duration,
		Timeout:      appConfig.Run.Timeout.Duration,
		RecordFrames: true,
	}
	if cmd.Flags().Changed("delay") {
		opts.StepDelay = runDelay
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = runTimeout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runSpectate {
		hub, stopSpectator, err := startSpectator()
		if err != nil {
			return err
		}
		defer stopSpectator()
		hub.Begin(opts.RunID, m.Name())
		opts.Observers = append(opts.Observers, hub.Observe)
		defer func() { hub.Finish(lastReport) }()
	}

	var report *runner.Report
	if runTUI {
		report, err = runWithTUI(ctx, src, m, opts)
	} else {
		report, err = newRunner().Execute(ctx, src, m, opts)
	}
	if report == nil {
		return err
	}
	lastReport = report

	printReport(os.Stdout, report, m, path, runPlain)

	if appConfig.History.Enabled && !runNoHistory {
		if err := saveRun(report, src, m); err != nil {
			logger.Warn("Failed to record run: " + err.Error())
		}
	}

	if !report.Status.OK() {
		return errReported
	}
	return nil
}

// lastReport is published to spectators when the command returns
var lastReport = &runner.Report{Status: runner.StatusCancelled}

// startSpectator starts the WebSocket server from the spectator config
func startSpectator() (*spectator.Hub, func(), error) {
	cfg := spectator.DefaultConfig()
	cfg.Addr = appConfig.Spectator.Addr

	hub := spectator.NewHub()
	srv := spectator.NewServer(cfg, hub)
	if err := srv.StartAsync(); err != nil {
		return nil, nil, fmt.Errorf("failed to start spectator server: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Spectators: ws://%s/ws\n", srv.Address())

	return hub, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(ctx)
	}, nil
}

// runWithTUI runs the program in the background and shows it live
func runWithTUI(ctx context.Context, src string, m *maze.Maze, opts runner.Options) (*runner.Report, error) {
	// Keep the terminal clean while the UI owns it
	if err := rebuildLogger(io.Discard); err != nil {
		return nil, err
	}
	defer rebuildLogger(nil)

	if opts.StepDelay == 0 {
		opts.StepDelay = replay.DefaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan replay.Event, 64)
	opts.Observers = append(opts.Observers, func(f runner.Frame) {
		select {
		case events <- replay.Event{Frame: &f}:
		case <-ctx.Done():
		}
	})

	type result struct {
		report *runner.Report
		err    error
	}
	done := make(chan result, 1)
	r := newRunner()
	go func() {
		report, err := r.Execute(ctx, src, m, opts)
		if report != nil {
			select {
			case events <- replay.Event{Report: report}:
			case <-ctx.Done():
			}
		}
		close(events)
		done <- result{report, err}
	}()

	uiErr := replay.Run(replay.Config{
		Title:    m.Name(),
		Maze:     m,
		Events:   events,
		Log:      logCapture.Lines,
		Interval: opts.StepDelay,
	})

	// Quitting the UI stops a run that is still going
	cancel()
	res := <-done
	if uiErr != nil {
		return res.report, uiErr
	}
	return res.report, res.err
}

// printReport writes the final maze and the report
func printReport(w io.Writer, report *runner.Report, m *maze.Maze, path string, plain bool) {
	renderer := render.New(plain || !isatty.IsTerminal(os.Stdout.Fd()))

	if report.Status == runner.StatusCompileError {
		fmt.Fprintln(w, renderer.Diagnostic(diagnostic(path, report)))
		return
	}

	fmt.Fprintln(w, renderer.Maze(report.Scene(m, len(report.Frames)-1), m.Name()))
	fmt.Fprintln(w, renderer.Report(report.Title(), report.Status.OK(), report.Fields()))
}

// diagnostic formats a failed report as path:line:column: message
func diagnostic(path string, report *runner.Report) string {
	if report.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", path, report.Line, report.Column, report.Error)
	}
	return fmt.Sprintf("%s: %s", path, report.Error)
}

// saveRun records the run with the captured log lines
func saveRun(report *runner.Report, src string, m *maze.Maze) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	rec := history.FromReport(report, src, m, logCapture.Lines())
	if err := store.Save(context.Background(), rec); err != nil {
		return err
	}
	logger.Debug("Run recorded: " + rec.ID)
	return nil
}
