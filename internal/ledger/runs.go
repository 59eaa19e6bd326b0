package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, input, bucket, prefix, state, failed_stage, error_message, plan, started_at, finished_at"

// BeginRun inserts a run in its initial state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("begin run: id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, input, bucket, prefix, state, plan, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Input, run.Bucket, run.Prefix, run.State, nullableString(run.Plan),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records the terminal state of a run.
func (s *Store) FinishRun(ctx context.Context, id string, outcome Outcome) error {
	if outcome.FinishedAt.IsZero() {
		outcome.FinishedAt = time.Now()
	}
	finished := outcome.FinishedAt
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET state = ?, failed_stage = ?, error_message = ?, plan = COALESCE(?, plan), finished_at = ? WHERE id = ?`,
		outcome.State, nullableString(outcome.FailedStage), nullableString(outcome.ErrorMessage),
		nullableString(outcome.Plan), nullableTime(&finished), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: %w", ErrNotFound)
	}
	return nil
}

// RecordArtifacts replaces the artifact rows of a run.
func (s *Store) RecordArtifacts(ctx context.Context, runID string, records []ArtifactRecord) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin artifacts tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM artifacts WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("clear artifacts: %w", err)
		}
		for _, rec := range records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO artifacts (run_id, position, kind, remote_path, status, error_message) VALUES (?, ?, ?, ?, ?, ?)`,
				runID, rec.Position, rec.Kind, rec.RemotePath, rec.Status, nullableString(rec.ErrorMessage),
			); err != nil {
				return fmt.Errorf("insert artifact %s: %w", rec.RemotePath, err)
			}
		}
		return tx.Commit()
	})
}

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Get fetches a run with its artifacts. Unique ID prefixes are accepted.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`, id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	var run *Run
	switch {
	case len(runs) == 0:
		return nil, ErrNotFound
	case runs[0].ID == id || len(runs) == 1:
		run = runs[0]
	case runs[1].ID == id:
		run = runs[1]
	default:
		return nil, fmt.Errorf("get run: id prefix %q is ambiguous", id)
	}

	if run.Artifacts, err = s.artifacts(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// Recent lists the most recent runs, newest first, without artifacts.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (s *Store) artifacts(ctx context.Context, runID string) ([]ArtifactRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, kind, remote_path, status, error_message FROM artifacts WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var records []ArtifactRecord
	for rows.Next() {
		var (
			rec    ArtifactRecord
			errMsg sql.NullString
		)
		if err := rows.Scan(&rec.Position, &rec.Kind, &rec.RemotePath, &rec.Status, &errMsg); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		rec.ErrorMessage = errMsg.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		failedStage sql.NullString
		errMsg      sql.NullString
		plan        sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.Input, &run.Bucket, &run.Prefix, &run.State,
		&failedStage, &errMsg, &plan, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}
	run.FailedStage = failedStage.String
	run.ErrorMessage = errMsg.String
	run.Plan = plan.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
