// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/pdiddy/relational-matrix/internal/repository"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// ImportSummary holds row counts from an import run.
type ImportSummary struct {
	// Rows maps a table name to the number of rows written.
	Rows map[string]int
}

// Total returns the number of rows written across all tables.
func (s ImportSummary) Total() int {
	n := 0
	for _, c := range s.Rows {
		n += c
	}
	return n
}

// Import replaces the contents of every evidence table with ds inside one
// transaction. Progress lines are written to w. The schema is created first
// when missing.
func (s *Store) Import(ctx context.Context, ds *repository.Dataset, w io.Writer) (ImportSummary, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return ImportSummary{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	summary := ImportSummary{Rows: make(map[string]int)}

	for _, src := range types.AllSources {
		if !src.IsEffect() {
			continue
		}
		n, err := importEffects(ctx, tx, src.Table(), ds.Effects[src])
		if err != nil {
			return ImportSummary{}, err
		}
		summary.Rows[src.Table()] = n
		fmt.Fprintf(w, "imported %s (%d rows)\n", src.Table(), n)
	}

	steps := []struct {
		table string
		run   func(context.Context, *sqlx.Tx) (int, error)
	}{
		{types.SourceCorrelations.Table(), func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			return importCorrelations(ctx, tx, ds.Correlations)
		}},
		{types.SourceCausalities.Table(), func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			return importCausalities(ctx, tx, ds.Causalities)
		}},
		{repository.TableYearSpans, func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			return importYearSpans(ctx, tx, ds.YearSpans)
		}},
		{repository.TableReferences, func(ctx context.Context, tx *sqlx.Tx) (int, error) {
			return importReferences(ctx, tx, ds.References)
		}},
	}
	for _, step := range steps {
		n, err := step.run(ctx, tx)
		if err != nil {
			return ImportSummary{}, err
		}
		summary.Rows[step.table] = n
		fmt.Fprintf(w, "imported %s (%d rows)\n", step.table, n)
	}

	if err := tx.Commit(); err != nil {
		return ImportSummary{}, fmt.Errorf("committing import: %w", err)
	}

	fmt.Fprintf(w, "\ntables: %d, rows: %d\n", len(summary.Rows), summary.Total())
	s.logger.Info("import complete", "tables", len(summary.Rows), "rows", summary.Total())
	return summary, nil
}

// prepareReplace clears table and prepares insert inside tx.
func prepareReplace(ctx context.Context, tx *sqlx.Tx, table, insert string) (*sqlx.Stmt, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", table, err)
	}
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(insert))
	if err != nil {
		return nil, fmt.Errorf("preparing insert into %s: %w", table, err)
	}
	return stmt, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullYear(y int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(y), Valid: y != 0}
}

func importEffects(ctx context.Context, tx *sqlx.Tx, table string, rows []types.EffectFinding) (int, error) {
	stmt, err := prepareReplace(ctx, tx, table,
		`INSERT INTO `+table+` (id, level_of_analysis, level_of_analysis_other,
			selection_dependent, other_dependent, selection_independent, other_independent,
			effect_direction, variable_condition, other_condition, type_of_condition_effect,
			reference, notes, start_year, end_year, multiple_year_spans)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.ID, nullString(r.Level), nullString(r.LevelOther),
			nullString(r.SelectionDependent), nullString(r.OtherDependent),
			nullString(r.SelectionIndependent), nullString(r.OtherIndependent),
			nullString(r.EffectDirection), nullString(r.VariableCondition),
			nullString(r.OtherCondition), nullString(r.TypeOfConditionEffect),
			nullString(r.Reference), nullString(r.Notes),
			nullYear(r.StartYear), nullYear(r.EndYear), r.MultipleYearSpans,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting %s row %d: %w", table, r.ID, err)
		}
	}
	return len(rows), nil
}

func importCorrelations(ctx context.Context, tx *sqlx.Tx, rows []types.CorrelationFinding) (int, error) {
	stmt, err := prepareReplace(ctx, tx, "correlations",
		`INSERT INTO correlations (id, dependent_variable, independent_variable, correlation_2000, correlation_2023)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx, r.ID, r.DependentVariable, r.IndependentVariable,
			r.Correlation2000.Stored(), r.Correlation2023.Stored())
		if err != nil {
			return 0, fmt.Errorf("inserting correlation %d: %w", r.ID, err)
		}
	}
	return len(rows), nil
}

func importCausalities(ctx context.Context, tx *sqlx.Tx, rows []types.CausalityFinding) (int, error) {
	stmt, err := prepareReplace(ctx, tx, "granger_causalities",
		`INSERT INTO granger_causalities (id, dependent_variable, independent_variable, causality)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID, r.DependentVariable, r.IndependentVariable, nullString(r.Causality)); err != nil {
			return 0, fmt.Errorf("inserting causality %d: %w", r.ID, err)
		}
	}
	return len(rows), nil
}

func importYearSpans(ctx context.Context, tx *sqlx.Tx, spans map[int64][]types.YearSpan) (int, error) {
	stmt, err := prepareReplace(ctx, tx, repository.TableYearSpans,
		`INSERT INTO `+repository.TableYearSpans+` ("index", start_year, end_year) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for id, list := range spans {
		for _, sp := range list {
			if _, err := stmt.ExecContext(ctx, id, nullYear(sp.Start), nullYear(sp.End)); err != nil {
				return 0, fmt.Errorf("inserting year span for %d: %w", id, err)
			}
			n++
		}
	}
	return n, nil
}

func importReferences(ctx context.Context, tx *sqlx.Tx, refs map[int64][]types.Reference) (int, error) {
	stmt, err := prepareReplace(ctx, tx, repository.TableReferences,
		`INSERT INTO `+repository.TableReferences+` (query_id, reference, source) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for id, list := range refs {
		for _, ref := range list {
			if _, err := stmt.ExecContext(ctx, id, nullString(ref.Reference), nullString(ref.Source)); err != nil {
				return 0, fmt.Errorf("inserting reference for %d: %w", id, err)
			}
			n++
		}
	}
	return n, nil
}
