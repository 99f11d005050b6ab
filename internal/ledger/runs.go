package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, cycle, effective, stages, status, error_message, documents, skipped, started_at, finished_at"

// StartRun records a new running run.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return s.exec(ctx,
		`INSERT INTO runs (id, cycle, effective, stages, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Cycle, run.Effective, run.Stages, string(StatusRunning), formatTime(run.StartedAt),
	)
}

// FinishRun marks a run complete. A nil runErr records success.
func (s *Store) FinishRun(ctx context.Context, id string, finished time.Time, documents, skipped int, runErr error) error {
	status := StatusSucceeded
	var message any
	if runErr != nil {
		status = StatusFailed
		message = runErr.Error()
	}
	return s.exec(ctx,
		`UPDATE runs SET status = ?, error_message = ?, documents = ?, skipped = ?, finished_at = ? WHERE id = ?`,
		string(status), message, documents, skipped, formatTime(finished), id,
	)
}

// RecordOutputs stores transcoder outputs for a run in one transaction.
func (s *Store) RecordOutputs(ctx context.Context, runID string, outputs []Output) error {
	if len(outputs) == 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO outputs (run_id, airport, source, strategy, path) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, out := range outputs {
			if _, err := stmt.ExecContext(ctx, runID, out.Airport, out.Source, out.Strategy, out.Path); err != nil {
				return fmt.Errorf("record output %s: %w", out.Path, err)
			}
		}
		return tx.Commit()
	})
}

// RecordBundle stores a written bundle for a run.
func (s *Store) RecordBundle(ctx context.Context, runID string, b Bundle) error {
	return s.exec(ctx,
		`INSERT OR REPLACE INTO bundles (run_id, name, kind, archive, members, sha256, size, uri) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, b.Name, b.Kind, b.Archive, b.Members, b.SHA256, b.Size, nullableString(b.URI),
	)
}

// SetBundleURI records where a bundle was published.
func (s *Store) SetBundleURI(ctx context.Context, runID, name, uri string) error {
	return s.exec(ctx, `UPDATE bundles SET uri = ? WHERE run_id = ? AND name = ?`, uri, runID, name)
}

// Run fetches a run by id. It returns nil when no such run exists.
func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// RecentRuns lists up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?", limit)
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

// Outputs lists the outputs recorded for a run in path order.
func (s *Store) Outputs(ctx context.Context, runID string) ([]Output, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT airport, source, strategy, path FROM outputs WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	defer rows.Close()

	var outputs []Output
	for rows.Next() {
		var out Output
		if err := rows.Scan(&out.Airport, &out.Source, &out.Strategy, &out.Path); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		outputs = append(outputs, out)
	}
	return outputs, rows.Err()
}

// Bundles lists the bundles recorded for a run in name order.
func (s *Store) Bundles(ctx context.Context, runID string) ([]Bundle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, archive, members, sha256, size, uri FROM bundles WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()

	var bundles []Bundle
	for rows.Next() {
		var (
			b   Bundle
			uri sql.NullString
		)
		if err := rows.Scan(&b.Name, &b.Kind, &b.Archive, &b.Members, &b.SHA256, &b.Size, &uri); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		b.URI = uri.String
		bundles = append(bundles, b)
	}
	return bundles, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		status      string
		message     sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Cycle,
		&run.Effective,
		&run.Stages,
		&status,
		&message,
		&run.Documents,
		&run.Skipped,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.ErrorMessage = message.String
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

// timeLayout keeps a fixed fraction width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
