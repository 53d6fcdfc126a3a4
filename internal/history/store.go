// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     history
// Description: SQLite-backed run history. Every run is stored with its
//              report, recorded frames, maze and captured log lines so it
//              can be listed and replayed later.
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/runner"
)

// Record is one stored run
type Record struct {
	ID          string         `json:"id"`
	StartedAt   time.Time      `json:"started_at"`
	Program     string         `json:"program"`
	ProgramHash string         `json:"program_hash"`
	Source      string         `json:"source,omitempty"`
	Maze        string         `json:"maze"`
	MazeDoc     *maze.Document `json:"maze_doc,omitempty"`
	Status      runner.Status  `json:"status"`
	Error       string         `json:"error,omitempty"`
	ErrorCode   string         `json:"error_code,omitempty"`
	Actions     int            `json:"actions"`
	Moves       int            `json:"moves"`
	ReachedExit bool           `json:"reached_exit"`
	Duration    time.Duration  `json:"duration"`
	Frames      []runner.Frame `json:"frames,omitempty"`
	Log         []string       `json:"log,omitempty"`
}

// FromReport builds a record from a finished run
func FromReport(report *runner.Report, source string, m *maze.Maze, log []string) *Record {
	rec := &Record{
		ID:          report.RunID,
		StartedAt:   report.StartedAt,
		Program:     report.Program,
		ProgramHash: report.ProgramHash,
		Source:      source,
		Maze:        report.Maze,
		Status:      report.Status,
		Error:       report.Error,
		ErrorCode:   report.ErrorCode,
		Actions:     report.Actions,
		Moves:       report.Moves,
		ReachedExit: report.ReachedExit,
		Duration:    report.Duration,
		Frames:      report.Frames,
		Log:         log,
	}
	if m != nil {
		doc := m.Document()
		rec.MazeDoc = &doc
	}
	return rec
}

// Report rebuilds the runner report used by the replay view
func (r *Record) Report() *runner.Report {
	report := &runner.Report{
		RunID:       r.ID,
		Program:     r.Program,
		ProgramHash: r.ProgramHash,
		Maze:        r.Maze,
		Status:      r.Status,
		Error:       r.Error,
		ErrorCode:   r.ErrorCode,
		Actions:     r.Actions,
		Moves:       r.Moves,
		ReachedExit: r.ReachedExit,
		StartedAt:   r.StartedAt,
		Duration:    r.Duration,
		Frames:      r.Frames,
	}
	if n := len(r.Frames); n > 0 {
		last := r.Frames[n-1]
		report.Position = last.Position
		report.Facing = last.Facing
		report.Visited = last.Visited
	}
	return report
}

// Filter selects records
type Filter struct {
	Status runner.Status
	Maze   string
	Since  time.Time
	Limit  int
	Offset int
}

// Store persists run records
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Stats(ctx context.Context) (map[string]interface{}, error)
	Delete(ctx context.Context, id string) error
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	PingContext(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Config holds configuration for the SQLite store
type Config struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Path: "./data/history.db",
	}
}

// Open creates or opens the history database
func Open(cfg Config) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory", "history.open")
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open database", "history.open")
	}

	store := &SQLiteStore{db: db, path: cfg.Path}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema", "history.open")
	}

	return store, nil
}

func dbError(err error, msg, op string) error {
	return mdwerror.Wrap(err, msg).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(op)
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		program TEXT,
		program_hash TEXT NOT NULL,
		source TEXT,
		maze TEXT,
		maze_doc TEXT,
		status TEXT NOT NULL,
		error TEXT,
		error_code TEXT,
		actions INTEGER NOT NULL DEFAULT 0,
		moves INTEGER NOT NULL DEFAULT 0,
		reached_exit INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		frames TEXT,
		log TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	CREATE INDEX IF NOT EXISTS idx_runs_program_hash ON runs(program_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores a record, replacing an existing one with the same ID
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		return mdwerror.New("record has no id").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("history.save")
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}

	var mazeDoc, frames, logLines []byte
	if rec.MazeDoc != nil {
		mazeDoc, _ = json.Marshal(rec.MazeDoc)
	}
	if len(rec.Frames) > 0 {
		frames, _ = json.Marshal(rec.Frames)
	}
	if len(rec.Log) > 0 {
		logLines, _ = json.Marshal(rec.Log)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, started_at, program, program_hash, source, maze, maze_doc,
			status, error, error_code, actions, moves, reached_exit, duration_ns, frames, log)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.StartedAt.UTC(), rec.Program, rec.ProgramHash, rec.Source, rec.Maze, nullable(mazeDoc),
		string(rec.Status), rec.Error, rec.ErrorCode, rec.Actions, rec.Moves, rec.ReachedExit,
		int64(rec.Duration), nullable(frames), nullable(logLines))
	if err != nil {
		return dbError(err, "failed to insert run", "history.save")
	}

	return nil
}

func nullable(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}

const selectColumns = `SELECT id, started_at, program, program_hash, source, maze, maze_doc,
	status, error, error_code, actions, moves, reached_exit, duration_ns, frames, log FROM runs`

// Get returns the record with id. A unique ID prefix is accepted.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := s.query(ctx, selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		found, err = s.query(ctx, selectColumns+` WHERE id LIKE ? LIMIT 2`, escapeLike(id)+"%")
		if err != nil {
			return nil, err
		}
	}

	switch len(found) {
	case 0:
		return nil, mdwerror.Newf("run %s not found", id).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("history.get")
	case 1:
		return found[0], nil
	default:
		return nil, mdwerror.Newf("run id prefix %s is ambiguous", id).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("history.get")
	}
}

// query runs a select and scans all records (must be called with lock held)
func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query runs", "history.query")
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to read runs", "history.query")
	}

	return records, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}

// List returns records, newest first
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns + ` WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.Maze != "" {
		query += " AND maze = ?"
		args = append(args, filter.Maze)
	}
	if !filter.Since.IsZero() {
		query += " AND started_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY started_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return s.query(ctx, query, args...)
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var (
		rec                                      Record
		status                                   string
		program, source, mazeName, errText, code sql.NullString
		mazeDoc, frames, logLines                sql.NullString
		durationNs                               int64
	)

	if err := rows.Scan(&rec.ID, &rec.StartedAt, &program, &rec.ProgramHash, &source, &mazeName, &mazeDoc,
		&status, &errText, &code, &rec.Actions, &rec.Moves, &rec.ReachedExit, &durationNs,
		&frames, &logLines); err != nil {
		return nil, dbError(err, "failed to scan run", "history.scan")
	}

	rec.Program = program.String
	rec.Source = source.String
	rec.Maze = mazeName.String
	rec.Status = runner.Status(status)
	rec.Error = errText.String
	rec.ErrorCode = code.String
	rec.Duration = time.Duration(durationNs)

	if mazeDoc.Valid {
		var doc maze.Document
		if err := json.Unmarshal([]byte(mazeDoc.String), &doc); err == nil {
			rec.MazeDoc = &doc
		}
	}
	if frames.Valid {
		json.Unmarshal([]byte(frames.String), &rec.Frames)
	}
	if logLines.Valid {
		json.Unmarshal([]byte(logLines.String), &rec.Log)
	}

	return &rec, nil
}

// Stats returns aggregate numbers over all runs
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	var total, exited int64
	var avgMoves sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(reached_exit), 0), AVG(moves) FROM runs
	`).Scan(&total, &exited, &avgMoves)
	if err != nil {
		return nil, dbError(err, "failed to query stats", "history.stats")
	}
	stats["total_runs"] = total
	stats["reached_exit"] = exited
	if avgMoves.Valid {
		stats["avg_moves"] = avgMoves.Float64
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return nil, dbError(err, "failed to query stats", "history.stats")
	}
	defer rows.Close()

	byStatus := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, dbError(err, "failed to scan stats", "history.stats")
		}
		byStatus[status] = count
	}
	stats["by_status"] = byStatus

	return stats, nil
}

// Delete removes a single run
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return dbError(err, "failed to delete run", "history.delete")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return mdwerror.Newf("run %s not found", id).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("history.delete")
	}
	return nil
}

// Prune removes runs older than the given age
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune runs", "history.prune")
	}
	return res.RowsAffected()
}

// PingContext checks the database connection
func (s *SQLiteStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file
func (s *SQLiteStore) Path() string { return s.path }

// String describes the store for logs
func (s *SQLiteStore) String() string {
	return fmt.Sprintf("sqlite:%s", s.path)
}
