package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/remote"
	grpcpkg "github.com/msto63/cellbot/pkg/core/grpc"
	"github.com/spf13/cobra"
)

var (
	remoteServer  string
	remoteTimeout time.Duration
	remoteMaze    string
	remoteEntry   string
	remotePlain   bool
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Talks to a remote runner started with \"cellbot serve\"",
}

var remoteRunCmd = &cobra.Command{
	Use:   "run <program.rcl>",
	Short: "Runs a program on the remote runner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readProgram(args[0])
		if err != nil {
			return err
		}
		if remoteMaze == "" {
			return fmt.Errorf("no maze given, use --maze")
		}
		data, err := os.ReadFile(remoteMaze)
		if err != nil {
			return fmt.Errorf("failed to read maze %s: %w", remoteMaze, err)
		}

		// Parse locally too: the report is drawn on this maze
		m, err := maze.Parse(data, maze.DetectFormat(remoteMaze))
		if err != nil {
			return err
		}
		m = m.WithName(filepath.Base(remoteMaze))

		return withRemote(func(ctx context.Context, client *remote.Client) error {
			report, err := client.Run(ctx, remote.Request{
				Source:        src,
				Program:       args[0],
				Maze:          string(data),
				MazeName:      m.Name(),
				MazeFormat:    maze.DetectFormat(remoteMaze),
				EntryTask:     remoteEntry,
				IncludeFrames: true,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, compileDiagnostic(args[0], err))
				return errReported
			}

			printReport(os.Stdout, report, m, args[0], remotePlain)
			if !report.Status.OK() {
				return errReported
			}
			return nil
		})
	},
}

var remoteCheckCmd = &cobra.Command{
	Use:   "check <program.rcl>",
	Short: "Compiles a program on the remote runner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readProgram(args[0])
		if err != nil {
			return err
		}

		return withRemote(func(ctx context.Context, client *remote.Client) error {
			result, err := client.Check(ctx, src)
			if err != nil {
				fmt.Fprintln(os.Stderr, compileDiagnostic(args[0], err))
				return errReported
			}
			fmt.Printf("%s: ok (%s)\n", args[0], shortID(result.Hash))
			for _, task := range result.Tasks {
				fmt.Printf("  %s\n", task)
			}
			return nil
		})
	},
}

var remoteHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Asks the remote runner whether it is serving",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRemote(func(ctx context.Context, client *remote.Client) error {
			ok, err := client.Healthy(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("%s: NOT SERVING\n", remoteTarget())
				return errReported
			}
			fmt.Printf("%s: SERVING\n", remoteTarget())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteRunCmd)
	remoteCmd.AddCommand(remoteCheckCmd)
	remoteCmd.AddCommand(remoteHealthCmd)

	remoteCmd.PersistentFlags().StringVarP(&remoteServer, "server", "s", "", "runner address (default from config)")
	remoteCmd.PersistentFlags().DurationVar(&remoteTimeout, "timeout", 0, "per-call timeout (default 5m)")

	remoteRunCmd.Flags().StringVarP(&remoteMaze, "maze", "m", "", "maze file (required)")
	remoteRunCmd.Flags().StringVarP(&remoteEntry, "entry", "e", "", "entry task (default from server config)")
	remoteRunCmd.Flags().BoolVar(&remotePlain, "plain", false, "ASCII output without colors")
	remoteRunCmd.MarkFlagRequired("maze")
}

func remoteTarget() string {
	if remoteServer != "" {
		return remoteServer
	}
	return appConfig.GetServiceAddress("server")
}

// withRemote dials the runner, calls fn under a signal-aware context and
// closes the connection
func withRemote(fn func(ctx context.Context, client *remote.Client) error) error {
	cfg := grpcpkg.DefaultClientConfig(remoteTarget())
	if remoteTimeout > 0 {
		cfg.Timeout = remoteTimeout
	}

	client, err := remote.Dial(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, client)
}
