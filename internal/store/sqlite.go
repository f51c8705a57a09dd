package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/cpusched/pkg/model"

	_ "modernc.org/sqlite"
)

// timeLayout has a fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Simulation runs ---

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.SimulationRun) error {
	s.logger.Debug("sql", "op", "insert", "table", "simulations", "id", run.ID)

	requestJSON, err := json.Marshal(run.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	var makespan int
	var avgWait, avgTurnaround float64
	if run.Result != nil && run.Result.Metrics != nil {
		m := run.Result.Metrics
		makespan, avgWait, avgTurnaround = m.Makespan, m.AvgWaitingTime, m.AvgTurnaroundTime
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO simulations (id, label, policy, request, result, process_count, makespan, avg_waiting_time, avg_turnaround_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, string(run.Policy), string(requestJSON), string(resultJSON),
		run.Request.ProcessCount(), makespan, avgWait, avgTurnaround,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

// GetRun returns the run with the given ID, or nil if there is none.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.SimulationRun, error) {
	s.logger.Debug("sql", "op", "select", "table", "simulations", "id", id)

	var run model.SimulationRun
	var policy, requestJSON, resultJSON, createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, label, policy, request, result, created_at FROM simulations WHERE id = ?`, id,
	).Scan(&run.ID, &run.Label, &policy, &requestJSON, &resultJSON, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.Policy = model.Policy(policy)
	if err := json.Unmarshal([]byte(requestJSON), &run.Request); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &run.Result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &run, nil
}

// ListRuns returns run summaries, newest first, and the total matching count.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.RunSummary, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "simulations", "limit", opts.Limit, "offset", opts.Offset, "policy", opts.Policy)
	opts.Clamp()

	whereSQL := ""
	var countArgs []any
	if opts.Policy != "" {
		whereSQL = " WHERE policy = ?"
		countArgs = append(countArgs, string(opts.Policy))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM simulations` + whereSQL
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT id, label, policy, process_count, makespan, avg_waiting_time, avg_turnaround_time, created_at
		FROM simulations` + whereSQL + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.RunSummary
	for rows.Next() {
		var sum model.RunSummary
		var policy, createdAt string
		if err := rows.Scan(&sum.ID, &sum.Label, &policy, &sum.ProcessCount, &sum.Makespan,
			&sum.AvgWaitingTime, &sum.AvgTurnaroundTime, &createdAt); err != nil {
			return nil, 0, err
		}
		sum.Policy = model.Policy(policy)
		sum.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		runs = append(runs, &sum)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "simulations", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM simulations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("simulation %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteRunsBefore removes runs created before cutoff and reports how many went.
func (s *SQLiteStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.logger.Debug("sql", "op", "delete_before", "table", "simulations", "cutoff", cutoff)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM simulations WHERE created_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
