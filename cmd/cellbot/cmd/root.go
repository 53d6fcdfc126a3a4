package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/foundation/rcl"
	"github.com/msto63/cellbot/internal/history"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/runner"
	"github.com/msto63/cellbot/pkg/core/config"
	"github.com/msto63/cellbot/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	logFile   string
	verbose   bool

	appConfig  *config.Config
	logger     *mdwlog.Logger
	logConfig  logging.LoggerConfig
	logCapture *logging.CaptureWriter
	logCloser  io.Closer
)

// errReported marks failures that were already shown to the user
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "cellbot",
	Short: "cellbot - RCL robot maze runner",
	Long: `cellbot runs programs written in the Robot Control Language (RCL)
on a robot placed in a grid maze.

Programs move the robot with MOVE and ROTATE LEFT/RIGHT, read its
surroundings with GET ENVIRONMENT and declare TASKs; the task FINDEXIT
is started after the top-level statements.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/cellbot.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, text, json, logfmt)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
}

// setup loads the configuration and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.General.LogLevel = logLevel
	}
	if verbose {
		cfg.General.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.General.LogFormat = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg

	logCapture = logging.NewCaptureWriter(logging.DefaultCaptureLines)
	logConfig = logging.FromConfig(cfg, cfg.General.Name)
	logConfig.File = logFile
	logConfig.AdditionalOutputs = []io.Writer{logCapture}
	return rebuildLogger(nil)
}

// rebuildLogger recreates the logger writing to output, or stderr when
// output is nil. The capture buffer always receives a copy.
func rebuildLogger(output io.Writer) error {
	if logCloser != nil {
		logCloser.Close()
	}

	lc := logConfig
	lc.Output = output
	l, closer, err := logging.NewLogger(lc)
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	mdwlog.SetDefault(l)
	return nil
}

// newEngine creates an RCL engine from the run configuration
func newEngine() *rcl.Engine {
	return rcl.NewEngine(rcl.Config{
		Logger:        logger,
		EntryTask:     appConfig.Run.EntryTask,
		MaxIterations: appConfig.Run.MaxIterations,
		MaxCallDepth:  appConfig.Run.MaxCallDepth,
	})
}

// newRunner creates a runner on a fresh engine
func newRunner() *runner.Runner {
	return runner.New(newEngine(), logger)
}

// openHistory opens the configured history store
func openHistory() (*history.SQLiteStore, error) {
	return history.Open(history.Config{Path: appConfig.History.Path})
}

// readProgram reads an RCL source file; "-" reads stdin
func readProgram(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read program %s: %w", path, err)
	}
	return string(data), nil
}

// loadMaze loads the maze file given with --maze
func loadMaze(path string) (*maze.Maze, error) {
	if path == "" {
		return nil, errors.New("no maze given, use --maze")
	}
	return maze.Load(path)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
