// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repository holds evidence datasets in memory and serves the
// selector's lookups from them. Spreadsheet-backed evidence is loaded into
// a Dataset; the SQL store can import one.
package repository

import (
	"context"
	"sort"

	"github.com/pdiddy/relational-matrix/internal/selector"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Dataset is a complete copy of the evidence tables.
type Dataset struct {
	// Effects holds the rows of each effect source's table.
	Effects map[types.Source][]types.EffectFinding

	Correlations []types.CorrelationFinding
	Causalities  []types.CausalityFinding

	// YearSpans maps a literature finding id to its periods.
	YearSpans map[int64][]types.YearSpan

	// References maps an AI research finding id to its citations.
	References map[int64][]types.Reference
}

// NewDataset returns an empty dataset ready for appending.
func NewDataset() *Dataset {
	return &Dataset{
		Effects:    make(map[types.Source][]types.EffectFinding),
		YearSpans:  make(map[int64][]types.YearSpan),
		References: make(map[int64][]types.Reference),
	}
}

// Rows returns the number of rows per table, keyed by table name.
func (d *Dataset) Rows() map[string]int {
	out := map[string]int{
		types.SourceCorrelations.Table(): len(d.Correlations),
		types.SourceCausalities.Table():  len(d.Causalities),
		TableYearSpans:                   countNested(d.YearSpans),
		TableReferences:                  countNested(d.References),
	}
	for _, s := range types.AllSources {
		if s.IsEffect() {
			out[s.Table()] = len(d.Effects[s])
		}
	}
	return out
}

func countNested[T any](m map[int64][]T) int {
	n := 0
	for _, v := range m {
		n += len(v)
	}
	return n
}

// Supplementary table names.
const (
	TableYearSpans  = "lit_inputs_multiple_year_spans"
	TableReferences = "ai_chatgpt_references"
)

// Memory serves lookups from a Dataset. It is read-only after construction
// and safe for concurrent use.
type Memory struct {
	ds *Dataset
}

var _ selector.Repository = (*Memory)(nil)

// NewMemory returns a repository over ds. The dataset must not be modified
// afterwards.
func NewMemory(ds *Dataset) *Memory {
	if ds == nil {
		ds = NewDataset()
	}
	return &Memory{ds: ds}
}

// EffectFindings returns the rows of source matching f exactly, ordered by
// id.
func (m *Memory) EffectFindings(ctx context.Context, source types.Source, f selector.EffectFilter) ([]types.EffectFinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []types.EffectFinding
	for _, row := range m.ds.Effects[source] {
		if row.Level != string(f.Level) ||
			row.SelectionDependent != f.Dependent ||
			row.SelectionIndependent != f.Independent {
			continue
		}
		if f.MatchOtherDep && row.OtherDependent != f.OtherDependent {
			continue
		}
		if f.MatchOtherIndep && row.OtherIndependent != f.OtherIndependent {
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Correlations returns correlation rows for the ordered pair by id.
func (m *Memory) Correlations(ctx context.Context, dependent, independent string) ([]types.CorrelationFinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []types.CorrelationFinding
	for _, row := range m.ds.Correlations {
		if row.DependentVariable == dependent && row.IndependentVariable == independent {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Causalities returns causality rows for the ordered pair by id.
func (m *Memory) Causalities(ctx context.Context, dependent, independent string) ([]types.CausalityFinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []types.CausalityFinding
	for _, row := range m.ds.Causalities {
		if row.DependentVariable == dependent && row.IndependentVariable == independent {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// YearSpans returns the periods of a literature finding ordered by start
// year.
func (m *Memory) YearSpans(ctx context.Context, findingID int64) ([]types.YearSpan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spans := append([]types.YearSpan(nil), m.ds.YearSpans[findingID]...)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans, nil
}

// References returns the citations of an AI research finding.
func (m *Memory) References(ctx context.Context, findingID int64) ([]types.Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]types.Reference(nil), m.ds.References[findingID]...), nil
}
