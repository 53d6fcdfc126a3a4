package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/msto63/cellbot/internal/history"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/render"
	"github.com/msto63/cellbot/internal/runner"
	"github.com/msto63/cellbot/internal/tui/replay"
	"github.com/spf13/cobra"
)

var (
	historyStatus   string
	historyMaze     string
	historyLimit    int
	historyOlder    time.Duration
	historyShowLog  bool
	historyPlain    bool
	historyInterval time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists and replays recorded runs",
	Long: `Every run started with "cellbot run" is recorded in a local SQLite
database together with its frames and log output. Run IDs may be
abbreviated to any unique prefix.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Shows the report of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyReplayCmd = &cobra.Command{
	Use:   "replay <run-id>",
	Short: "Replays a run in the terminal UI",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryReplay,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Deletes a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Deletes old runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Shows run statistics",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyReplayCmd,
		historyDeleteCmd, historyPruneCmd, historyStatsCmd)

	historyListCmd.Flags().StringVar(&historyStatus, "status", "", "only runs with this status")
	historyListCmd.Flags().StringVar(&historyMaze, "maze", "", "only runs in this maze")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "number of runs (default from config)")

	historyShowCmd.Flags().BoolVar(&historyShowLog, "log", false, "print the captured log")
	historyShowCmd.Flags().BoolVar(&historyPlain, "plain", false, "plain ASCII output without colors")

	historyReplayCmd.Flags().DurationVar(&historyInterval, "interval", replay.DefaultInterval, "time between frames")

	historyPruneCmd.Flags().DurationVar(&historyOlder, "older-than", 30*24*time.Hour, "delete runs started before this age")
}

// withHistory opens the store for the duration of fn
func withHistory(fn func(context.Context, *history.SQLiteStore) error) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit := historyLimit
	if limit <= 0 {
		limit = appConfig.History.Limit
	}

	return withHistory(func(ctx context.Context, store *history.SQLiteStore) error {
		records, err := store.List(ctx, history.Filter{
			Status: runner.Status(historyStatus),
			Maze:   historyMaze,
			Limit:  limit,
		})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		fmt.Printf("%-8s  %-19s  %-15s  %-20s  %-24s  %7s\n", "ID", "STARTED", "STATUS", "MAZE", "PROGRAM", "ACTIONS")
		for _, r := range records {
			fmt.Printf("%-8s  %-19s  %-15s  %-20s  %-24s  %7d\n",
				shortID(r.ID),
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				truncate(r.Maze, 20),
				truncate(r.Program, 24),
				r.Actions,
			)
		}
		return nil
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, store *history.SQLiteStore) error {
		rec, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}

		report := rec.Report()
		renderer := render.New(historyPlain)
		if m, err := recordMaze(rec); err == nil {
			fmt.Println(renderer.Maze(report.Scene(m, len(report.Frames)-1), rec.Maze))
		}
		fmt.Println(renderer.Report(report.Title(), report.Status.OK(), report.Fields()))

		if historyShowLog {
			fmt.Println()
			for _, line := range rec.Log {
				fmt.Println(line)
			}
		}
		return nil
	})
}

func runHistoryReplay(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, store *history.SQLiteStore) error {
		rec, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		m, err := recordMaze(rec)
		if err != nil {
			return err
		}

		lines := rec.Log
		return replay.Run(replay.Config{
			Title:    rec.Maze,
			Maze:     m,
			Report:   rec.Report(),
			Log:      func() []string { return lines },
			Interval: historyInterval,
		})
	})
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, store *history.SQLiteStore) error {
		rec, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, rec.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted run %s\n", rec.ID)
		return nil
	})
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, store *history.SQLiteStore) error {
		n, err := store.Prune(ctx, historyOlder)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d run(s) older than %s\n", n, historyOlder)
		return nil
	})
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, store *history.SQLiteStore) error {
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Run history")
		fmt.Println("===========")
		fmt.Printf("  Database:     %s\n", store)
		fmt.Printf("  Total runs:   %v\n", stats["total_runs"])
		fmt.Printf("  Reached exit: %v\n", stats["reached_exit"])
		if avg, ok := stats["avg_moves"].(float64); ok {
			fmt.Printf("  Avg. moves:   %.1f\n", avg)
		}
		if byStatus, ok := stats["by_status"].(map[string]int64); ok && len(byStatus) > 0 {
			fmt.Println()
			fmt.Println("By status:")
			for _, status := range render.SortedKeys(byStatus) {
				fmt.Printf("  %-15s %d\n", status, byStatus[status])
			}
		}
		return nil
	})
}

// recordMaze rebuilds the maze stored with a run
func recordMaze(rec *history.Record) (*maze.Maze, error) {
	if rec.MazeDoc == nil {
		fmt.Fprintf(os.Stderr, "Run %s has no stored maze\n", shortID(rec.ID))
		return nil, errReported
	}
	m, err := rec.MazeDoc.Build()
	if err != nil {
		return nil, err
	}
	return m.WithName(rec.Maze), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate truncates a string to max length
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}

