// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selector builds the repository lookups for a query key and
// collects the matching evidence rows per source.
//
// Effect sources are matched on level and variable selections, with the
// "Other" free text added to the match when a variable is an "Other"
// variant. All Levels fans out to every concrete level. Correlations and
// causalities are looked up for every combination of dependent and
// independent names; correlations fall back to the reversed pair.
package selector

import (
	"context"
	"fmt"

	"github.com/pdiddy/relational-matrix/pkg/types"
)

// QueryShape is one of the four effect lookups, determined by which
// variables carry "Other" free text.
type QueryShape int

const (
	ShapePlain QueryShape = iota
	ShapeOtherDependent
	ShapeOtherIndependent
	ShapeOtherBoth
)

func (s QueryShape) String() string {
	switch s {
	case ShapePlain:
		return "plain"
	case ShapeOtherDependent:
		return "other-dependent"
	case ShapeOtherIndependent:
		return "other-independent"
	case ShapeOtherBoth:
		return "other-both"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// EffectFilter is an equality match against an effect table.
type EffectFilter struct {
	// Level is always a concrete level.
	Level types.Level

	Dependent   string
	Independent string

	// OtherDependent and OtherIndependent are matched only when the
	// corresponding flag is set.
	OtherDependent   string
	MatchOtherDep    bool
	OtherIndependent string
	MatchOtherIndep  bool
}

// Shape returns the lookup shape of the filter.
func (f EffectFilter) Shape() QueryShape {
	switch {
	case f.MatchOtherDep && f.MatchOtherIndep:
		return ShapeOtherBoth
	case f.MatchOtherDep:
		return ShapeOtherDependent
	case f.MatchOtherIndep:
		return ShapeOtherIndependent
	}
	return ShapePlain
}

// Repository is the read-only evidence store.
type Repository interface {
	// EffectFindings returns the rows of an effect source's table that
	// match f exactly.
	EffectFindings(ctx context.Context, source types.Source, f EffectFilter) ([]types.EffectFinding, error)

	// Correlations returns correlation rows for the ordered pair.
	// Coefficients equal to the stored sentinel are not applicable.
	Correlations(ctx context.Context, dependent, independent string) ([]types.CorrelationFinding, error)

	// Causalities returns Granger causality rows for the ordered pair.
	Causalities(ctx context.Context, dependent, independent string) ([]types.CausalityFinding, error)

	// YearSpans returns the periods of a literature finding.
	YearSpans(ctx context.Context, findingID int64) ([]types.YearSpan, error)

	// References returns the citations of an AI research finding.
	References(ctx context.Context, findingID int64) ([]types.Reference, error)
}

// aiLevels are the levels the AI research source holds findings for.
var aiLevels = []types.Level{types.LevelNational, types.LevelRegional}

// Applies reports whether source is queried for key. The AI research
// source applies only to national or regional analyses of income
// inequality; every other source always applies.
func Applies(source types.Source, key types.QueryKey) bool {
	if source != types.SourceAIResearch {
		return true
	}
	switch key.Level {
	case types.LevelNational, types.LevelRegional, types.LevelAll:
	default:
		return false
	}
	return key.Dependent.Primary() == types.AIDependentVariable
}

// Levels returns the concrete levels to query for source.
func Levels(source types.Source, level types.Level) []types.Level {
	if level != types.LevelAll {
		return []types.Level{level}
	}
	if source == types.SourceAIResearch {
		return aiLevels
	}
	return types.ConcreteLevels
}

// Filter returns the effect filter for key at a concrete level.
func Filter(key types.QueryKey, level types.Level) EffectFilter {
	f := EffectFilter{
		Level:       level,
		Dependent:   key.Dependent.Primary(),
		Independent: key.Independent.Primary(),
	}
	if key.Dependent.IsOther() {
		f.OtherDependent = key.Dependent.Other
		f.MatchOtherDep = true
	}
	if key.Independent.IsOther() {
		f.OtherIndependent = key.Independent.Other
		f.MatchOtherIndep = true
	}
	return f
}

// Selector collects evidence rows from a Repository.
type Selector struct {
	repo Repository
}

// New returns a Selector reading from repo.
func New(repo Repository) *Selector {
	return &Selector{repo: repo}
}

// Effects returns the rows of an effect source for key, concatenated over
// the expanded levels in order. queried is false when the source does not
// apply to key, in which case no lookup is made.
func (s *Selector) Effects(ctx context.Context, source types.Source, key types.QueryKey) (rows []types.EffectFinding, queried bool, err error) {
	if !source.IsEffect() {
		return nil, false, fmt.Errorf("%w: %s has no effect rows", types.ErrUnknownSource, source)
	}
	if !Applies(source, key) {
		return nil, false, nil
	}

	for _, level := range Levels(source, key.Level) {
		found, err := s.repo.EffectFindings(ctx, source, Filter(key, level))
		if err != nil {
			return nil, true, unavailable(source, err)
		}
		rows = append(rows, found...)
	}
	return rows, true, nil
}

// Correlations returns one group per dependent × independent name pair
// that has rows. A pair with no rows is retried with the roles reversed.
func (s *Selector) Correlations(ctx context.Context, key types.QueryKey) ([]types.PairGroup[types.CorrelationFinding], error) {
	var groups []types.PairGroup[types.CorrelationFinding]
	for i, dep := range key.Dependent.Names {
		for j, ind := range key.Independent.Names {
			rows, err := s.repo.Correlations(ctx, dep, ind)
			if err != nil {
				return nil, unavailable(types.SourceCorrelations, err)
			}
			swapped := false
			if len(rows) == 0 {
				rows, err = s.repo.Correlations(ctx, ind, dep)
				if err != nil {
					return nil, unavailable(types.SourceCorrelations, err)
				}
				swapped = len(rows) > 0
			}
			if len(rows) == 0 {
				continue
			}
			groups = append(groups, types.PairGroup[types.CorrelationFinding]{
				Dependent:   dep,
				Independent: ind,
				DepIndex:    i,
				IndIndex:    j,
				Swapped:     swapped,
				Rows:        rows,
			})
		}
	}
	return groups, nil
}

// Causalities returns one group per dependent × independent name pair
// that has rows. Causality is directional, so there is no reversed lookup.
func (s *Selector) Causalities(ctx context.Context, key types.QueryKey) ([]types.PairGroup[types.CausalityFinding], error) {
	var groups []types.PairGroup[types.CausalityFinding]
	for i, dep := range key.Dependent.Names {
		for j, ind := range key.Independent.Names {
			rows, err := s.repo.Causalities(ctx, dep, ind)
			if err != nil {
				return nil, unavailable(types.SourceCausalities, err)
			}
			if len(rows) == 0 {
				continue
			}
			groups = append(groups, types.PairGroup[types.CausalityFinding]{
				Dependent:   dep,
				Independent: ind,
				DepIndex:    i,
				IndIndex:    j,
				Rows:        rows,
			})
		}
	}
	return groups, nil
}

// AttachDetails loads the supplementary rows shown in detail views: year
// spans for literature findings flagged with multiple spans, and
// references for AI research findings. rows is modified in place.
func (s *Selector) AttachDetails(ctx context.Context, source types.Source, rows []types.EffectFinding) error {
	switch source {
	case types.SourceLiterature:
		for i := range rows {
			if !rows[i].MultipleYearSpans {
				continue
			}
			spans, err := s.repo.YearSpans(ctx, rows[i].ID)
			if err != nil {
				return unavailable(source, err)
			}
			rows[i].YearSpans = spans
		}
	case types.SourceAIResearch:
		for i := range rows {
			refs, err := s.repo.References(ctx, rows[i].ID)
			if err != nil {
				return unavailable(source, err)
			}
			rows[i].References = refs
		}
	}
	return nil
}

func unavailable(source types.Source, err error) error {
	return fmt.Errorf("%w: querying %s: %w", types.ErrRepositoryUnavailable, source.Table(), err)
}
