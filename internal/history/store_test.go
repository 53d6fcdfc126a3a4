package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/runner"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(Config{Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	m, err := maze.ParseGrid("S.E")
	if err != nil {
		t.Fatalf("Failed to parse maze: %v", err)
	}

	report := &runner.Report{
		RunID:       "6f1c2a9e-0000-4000-8000-000000000001",
		Program:     "find_exit.rcl",
		ProgramHash: "abc",
		Maze:        "corridor",
		Status:      runner.StatusExited,
		Actions:     5,
		Moves:       2,
		ReachedExit: true,
		StartedAt:   time.Now(),
		Duration:    3 * time.Millisecond,
		Frames: []runner.Frame{
			{Step: 0, Action: "start", Facing: "N", Visited: 1},
			{Step: 1, Action: "rotate_right", Facing: "E", Visited: 1},
		},
	}

	rec := FromReport(report, "MOVE", m, []string{"line one", "line two"})
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, report.RunID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != runner.StatusExited || !got.ReachedExit {
		t.Errorf("Expected exited run, got %+v", got)
	}
	if got.Duration != 3*time.Millisecond {
		t.Errorf("Expected duration 3ms, got %v", got.Duration)
	}
	if len(got.Frames) != 2 || got.Frames[1].Facing != "E" {
		t.Errorf("Expected frames to round trip, got %+v", got.Frames)
	}
	if len(got.Log) != 2 {
		t.Errorf("Expected 2 log lines, got %v", got.Log)
	}
	if got.MazeDoc == nil || got.MazeDoc.Width != 3 {
		t.Errorf("Expected maze document, got %+v", got.MazeDoc)
	}
	if got.Source != "MOVE" {
		t.Errorf("Expected source MOVE, got %q", got.Source)
	}

	// prefix lookup
	byPrefix, err := store.Get(ctx, "6f1c2a9e")
	if err != nil {
		t.Fatalf("Get(prefix) error = %v", err)
	}
	if byPrefix.ID != report.RunID {
		t.Errorf("Expected %s, got %s", report.RunID, byPrefix.ID)
	}

	replay := got.Report()
	if replay.Facing != "E" || len(replay.Frames) != 2 {
		t.Errorf("Unexpected rebuilt report %+v", replay)
	}
}

func TestStore_GetErrors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"aa11", "aa22"} {
		if err := store.Save(ctx, &Record{ID: id, ProgramHash: "h", Status: runner.StatusFinished}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	if _, err := store.Get(ctx, "zz"); !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := store.Get(ctx, "aa"); !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("Expected ambiguous prefix error, got %v", err)
	}
	if err := store.Save(ctx, &Record{}); !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("Expected missing id error, got %v", err)
	}
}

func TestStore_ListAndStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	records := []*Record{
		{ID: "r1", StartedAt: base, ProgramHash: "h", Status: runner.StatusExited, ReachedExit: true, Moves: 4, Maze: "a"},
		{ID: "r2", StartedAt: base.Add(time.Minute), ProgramHash: "h", Status: runner.StatusCollision, Moves: 2, Maze: "a"},
		{ID: "r3", StartedAt: base.Add(2 * time.Minute), ProgramHash: "h", Status: runner.StatusExited, ReachedExit: true, Moves: 6, Maze: "b"},
	}
	for _, r := range records {
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{"All newest first", Filter{}, []string{"r3", "r2", "r1"}},
		{"By status", Filter{Status: runner.StatusExited}, []string{"r3", "r1"}},
		{"By maze", Filter{Maze: "a"}, []string{"r2", "r1"}},
		{"Limit", Filter{Limit: 1}, []string{"r3"}},
		{"Offset", Filter{Limit: 1, Offset: 1}, []string{"r2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d records, got %d", len(tt.expected), len(got))
			}
			for i, id := range tt.expected {
				if got[i].ID != id {
					t.Errorf("Expected %s at %d, got %s", id, i, got[i].ID)
				}
			}
		})
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats["total_runs"] != int64(3) {
		t.Errorf("Expected 3 runs, got %v", stats["total_runs"])
	}
	if stats["reached_exit"] != int64(2) {
		t.Errorf("Expected 2 exits, got %v", stats["reached_exit"])
	}
	if stats["avg_moves"] != 4.0 {
		t.Errorf("Expected avg 4 moves, got %v", stats["avg_moves"])
	}
}

func TestStore_DeleteAndPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Save(ctx, &Record{ID: "old", StartedAt: time.Now().Add(-48 * time.Hour), ProgramHash: "h", Status: runner.StatusFinished})
	store.Save(ctx, &Record{ID: "new", StartedAt: time.Now(), ProgramHash: "h", Status: runner.StatusFinished})

	n, err := store.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 pruned run, got %d", n)
	}

	if err := store.Delete(ctx, "new"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "new"); !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
	if err := store.PingContext(ctx); err != nil {
		t.Errorf("PingContext() error = %v", err)
	}
}
