// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sqlstore reads evidence from a SQL database. The production
// database is PostgreSQL; SQLite serves local copies and tests. Queries are
// written with "?" placeholders and rebound for the active driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/relational-matrix/internal/repository"
	"github.com/pdiddy/relational-matrix/internal/selector"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Store serves evidence lookups from a SQL database.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ selector.Repository = (*Store)(nil)

// Open connects to the database described by cfg and waits for it to
// answer, retrying with backoff. Connection failures wrap
// types.ErrRepositoryUnavailable.
func Open(ctx context.Context, cfg types.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = types.DriverPostgres
	}
	if driver != types.DriverPostgres && driver != types.DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q (want %s or %s)", driver, types.DriverPostgres, types.DriverSQLite)
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url required for driver %s", driver)
	}

	db, err := sqlx.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := PingWithRetry(ctx, db, cfg.PingRetries, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s: %w", types.ErrRepositoryUnavailable, driver, err)
	}

	return New(db, logger), nil
}

// New wraps an open database. Columns the evidence structs do not know are
// ignored, so tables may carry extra columns.
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{db: db.Unsafe(), logger: logger}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// effectColumns lists the columns shared by the four effect tables.
const effectColumns = `
	id INTEGER PRIMARY KEY,
	level_of_analysis TEXT,
	level_of_analysis_other TEXT,
	selection_dependent TEXT,
	other_dependent TEXT,
	selection_independent TEXT,
	other_independent TEXT,
	effect_direction TEXT,
	variable_condition TEXT,
	other_condition TEXT,
	type_of_condition_effect TEXT,
	reference TEXT,
	notes TEXT,
	start_year INTEGER,
	end_year INTEGER,
	multiple_year_spans BOOLEAN`

// EnsureSchema creates the evidence tables and lookup indexes when they do
// not exist. The DDL is valid for both PostgreSQL and SQLite.
func (s *Store) EnsureSchema(ctx context.Context) error {
	var statements []string
	for _, src := range types.AllSources {
		if !src.IsEffect() {
			continue
		}
		t := src.Table()
		statements = append(statements,
			`CREATE TABLE IF NOT EXISTS `+t+` (`+effectColumns+`)`,
			`CREATE INDEX IF NOT EXISTS idx_`+t+`_selection ON `+t+` (level_of_analysis, selection_dependent, selection_independent)`,
		)
	}
	statements = append(statements,
		`CREATE TABLE IF NOT EXISTS correlations (
			id INTEGER PRIMARY KEY,
			dependent_variable TEXT NOT NULL,
			independent_variable TEXT NOT NULL,
			correlation_2000 DOUBLE PRECISION,
			correlation_2023 DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_correlations_pair ON correlations (dependent_variable, independent_variable)`,
		`CREATE TABLE IF NOT EXISTS granger_causalities (
			id INTEGER PRIMARY KEY,
			dependent_variable TEXT NOT NULL,
			independent_variable TEXT NOT NULL,
			causality TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_granger_causalities_pair ON granger_causalities (dependent_variable, independent_variable)`,
		`CREATE TABLE IF NOT EXISTS `+repository.TableYearSpans+` (
			"index" INTEGER NOT NULL,
			start_year INTEGER,
			end_year INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS `+repository.TableReferences+` (
			query_id INTEGER NOT NULL,
			reference TEXT,
			source TEXT
		)`,
	)

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// effectRow mirrors an effect table row. Every column except id may be NULL.
type effectRow struct {
	ID                    int64          `db:"id"`
	Level                 sql.NullString `db:"level_of_analysis"`
	LevelOther            sql.NullString `db:"level_of_analysis_other"`
	SelectionDependent    sql.NullString `db:"selection_dependent"`
	OtherDependent        sql.NullString `db:"other_dependent"`
	SelectionIndependent  sql.NullString `db:"selection_independent"`
	OtherIndependent      sql.NullString `db:"other_independent"`
	EffectDirection       sql.NullString `db:"effect_direction"`
	VariableCondition     sql.NullString `db:"variable_condition"`
	OtherCondition        sql.NullString `db:"other_condition"`
	TypeOfConditionEffect sql.NullString `db:"type_of_condition_effect"`
	Reference             sql.NullString `db:"reference"`
	Notes                 sql.NullString `db:"notes"`
	StartYear             sql.NullInt64  `db:"start_year"`
	EndYear               sql.NullInt64  `db:"end_year"`
	MultipleYearSpans     sql.NullBool   `db:"multiple_year_spans"`
}

func (r effectRow) finding() types.EffectFinding {
	return types.EffectFinding{
		ID:                    r.ID,
		Level:                 r.Level.String,
		LevelOther:            r.LevelOther.String,
		SelectionDependent:    r.SelectionDependent.String,
		OtherDependent:        r.OtherDependent.String,
		SelectionIndependent:  r.SelectionIndependent.String,
		OtherIndependent:      r.OtherIndependent.String,
		EffectDirection:       r.EffectDirection.String,
		VariableCondition:     r.VariableCondition.String,
		OtherCondition:        r.OtherCondition.String,
		TypeOfConditionEffect: r.TypeOfConditionEffect.String,
		Reference:             r.Reference.String,
		Notes:                 r.Notes.String,
		StartYear:             int(r.StartYear.Int64),
		EndYear:               int(r.EndYear.Int64),
		MultipleYearSpans:     r.MultipleYearSpans.Bool,
	}
}

// EffectFindings returns the rows of source's table matching f exactly,
// ordered by id.
func (s *Store) EffectFindings(ctx context.Context, source types.Source, f selector.EffectFilter) ([]types.EffectFinding, error) {
	if !source.IsEffect() {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownSource, source)
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT * FROM ` + source.Table() + ` WHERE level_of_analysis = ? AND selection_dependent = ?`)
	args = append(args, string(f.Level), f.Dependent)
	if f.MatchOtherDep {
		qb.WriteString(` AND other_dependent = ?`)
		args = append(args, f.OtherDependent)
	}
	qb.WriteString(` AND selection_independent = ?`)
	args = append(args, f.Independent)
	if f.MatchOtherIndep {
		qb.WriteString(` AND other_independent = ?`)
		args = append(args, f.OtherIndependent)
	}
	qb.WriteString(` ORDER BY id`)

	var rows []effectRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(qb.String()), args...); err != nil {
		return nil, describe(err)
	}

	s.logger.Debug("effect lookup", "table", source.Table(), "shape", f.Shape().String(), "level", f.Level, "rows", len(rows))

	out := make([]types.EffectFinding, len(rows))
	for i, r := range rows {
		out[i] = r.finding()
	}
	return out, nil
}

type correlationRow struct {
	ID                  int64           `db:"id"`
	DependentVariable   string          `db:"dependent_variable"`
	IndependentVariable string          `db:"independent_variable"`
	Correlation2000     sql.NullFloat64 `db:"correlation_2000"`
	Correlation2023     sql.NullFloat64 `db:"correlation_2023"`
}

// coefficient maps NULL and the sentinel to not applicable.
func coefficient(v sql.NullFloat64) types.Coefficient {
	if !v.Valid {
		return types.Coefficient{}
	}
	return types.CoefficientOf(v.Float64)
}

// Correlations returns correlation rows for the ordered pair.
func (s *Store) Correlations(ctx context.Context, dependent, independent string) ([]types.CorrelationFinding, error) {
	var rows []correlationRow
	q := s.db.Rebind(`SELECT * FROM correlations WHERE dependent_variable = ? AND independent_variable = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &rows, q, dependent, independent); err != nil {
		return nil, describe(err)
	}

	out := make([]types.CorrelationFinding, len(rows))
	for i, r := range rows {
		out[i] = types.CorrelationFinding{
			ID:                  r.ID,
			DependentVariable:   r.DependentVariable,
			IndependentVariable: r.IndependentVariable,
			Correlation2000:     coefficient(r.Correlation2000),
			Correlation2023:     coefficient(r.Correlation2023),
		}
	}
	return out, nil
}

type causalityRow struct {
	ID                  int64          `db:"id"`
	DependentVariable   string         `db:"dependent_variable"`
	IndependentVariable string         `db:"independent_variable"`
	Causality           sql.NullString `db:"causality"`
}

// Causalities returns Granger causality rows for the ordered pair.
func (s *Store) Causalities(ctx context.Context, dependent, independent string) ([]types.CausalityFinding, error) {
	var rows []causalityRow
	q := s.db.Rebind(`SELECT * FROM granger_causalities WHERE dependent_variable = ? AND independent_variable = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &rows, q, dependent, independent); err != nil {
		return nil, describe(err)
	}

	out := make([]types.CausalityFinding, len(rows))
	for i, r := range rows {
		out[i] = types.CausalityFinding{
			ID:                  r.ID,
			DependentVariable:   r.DependentVariable,
			IndependentVariable: r.IndependentVariable,
			Causality:           r.Causality.String,
		}
	}
	return out, nil
}

type yearSpanRow struct {
	StartYear sql.NullInt64 `db:"start_year"`
	EndYear   sql.NullInt64 `db:"end_year"`
}

// YearSpans returns the periods of a literature finding.
func (s *Store) YearSpans(ctx context.Context, findingID int64) ([]types.YearSpan, error) {
	var rows []yearSpanRow
	q := s.db.Rebind(`SELECT * FROM ` + repository.TableYearSpans + ` WHERE "index" = ? ORDER BY start_year`)
	if err := s.db.SelectContext(ctx, &rows, q, findingID); err != nil {
		return nil, describe(err)
	}

	out := make([]types.YearSpan, len(rows))
	for i, r := range rows {
		out[i] = types.YearSpan{Start: int(r.StartYear.Int64), End: int(r.EndYear.Int64)}
	}
	return out, nil
}

type referenceRow struct {
	Reference sql.NullString `db:"reference"`
	Source    sql.NullString `db:"source"`
}

// References returns the citations of an AI research finding.
func (s *Store) References(ctx context.Context, findingID int64) ([]types.Reference, error) {
	var rows []referenceRow
	q := s.db.Rebind(`SELECT * FROM ` + repository.TableReferences + ` WHERE query_id = ?`)
	if err := s.db.SelectContext(ctx, &rows, q, findingID); err != nil {
		return nil, describe(err)
	}

	out := make([]types.Reference, len(rows))
	for i, r := range rows {
		out[i] = types.Reference{Reference: r.Reference.String, Source: r.Source.String}
	}
	return out, nil
}

// undefinedTable is the PostgreSQL error code for a missing relation.
const undefinedTable = "42P01"

// describe adds a hint to errors whose cause is a missing table.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("evidence table missing (initialize the schema first): %w", err)
	}
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("evidence table missing (initialize the schema first): %w", err)
	}
	return err
}
