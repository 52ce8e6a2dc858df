package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/residuals.report/internal/numeric"
)

// ErrRunNotFound is returned when a run ID is not in the archive.
var ErrRunNotFound = errors.New("run not found")

// Run describes one archived residual computation.
type Run struct {
	ID               string
	CreatedAt        time.Time
	Input            string
	Output           string
	Model            string
	Region           string
	VsSource         string
	MechanismFromSOF bool
	MinAmp           float64
	Records          int
	Frequencies      int
	Version          string
}

// Residual is one archived cell.
type Residual struct {
	RowIndex int
	Freq     float64
	Value    numeric.Value
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun stores run and its residual matrix in one transaction. matrix
// rows must each align with freqs. An empty run.ID is filled with a new ID
// and a zero CreatedAt with the DB clock's time.
func (db *DB) RecordRun(ctx context.Context, run *Run, freqs []float64, matrix [][]numeric.Value) error {
	for i, row := range matrix {
		if len(row) != len(freqs) {
			return fmt.Errorf("row %d has %d residuals for %d frequencies", i, len(row), len(freqs))
		}
	}
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = db.clock.Now()
	}
	run.Records = len(matrix)
	run.Frequencies = len(freqs)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", run.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, input, output, model, region, vs_source,
			mechanism_from_sof, min_amp, records, frequencies, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.Input, run.Output, run.Model, run.Region, run.VsSource,
		run.MechanismFromSOF, run.MinAmp, run.Records, run.Frequencies, run.Version)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO residuals (run_id, row_index, freq_hz, resid) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare residual insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range matrix {
		for j, v := range row {
			var resid sql.NullFloat64
			if v.Defined {
				resid = sql.NullFloat64{Float64: v.V, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, run.ID, i, freqs[j], resid); err != nil {
				return fmt.Errorf("insert residual row %d freq %g: %w", i, freqs[j], err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

const runColumns = `id, created_at, input, output, model, region, vs_source,
	mechanism_from_sof, min_amp, records, frequencies, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var (
		r       Run
		created int64
	)
	err := s.Scan(&r.ID, &created, &r.Input, &r.Output, &r.Model, &r.Region, &r.VsSource,
		&r.MechanismFromSOF, &r.MinAmp, &r.Records, &r.Frequencies, &r.Version)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}

// GetRun returns the run with the given ID.
func (db *DB) GetRun(ctx context.Context, id string) (Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// ListRuns returns all runs, most recent first.
func (db *DB) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Residuals returns the archived cells of a run ordered by row and then
// frequency.
func (db *DB) Residuals(ctx context.Context, runID string) ([]Residual, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT row_index, freq_hz, resid FROM residuals
		WHERE run_id = ?
		ORDER BY row_index, freq_hz`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Residual
	for rows.Next() {
		var (
			r     Residual
			resid sql.NullFloat64
		)
		if err := rows.Scan(&r.RowIndex, &r.Freq, &resid); err != nil {
			return nil, err
		}
		if resid.Valid {
			r.Value = numeric.Some(resid.Float64)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its residuals.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
