// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/relational-matrix/internal/presentation"
	"github.com/pdiddy/relational-matrix/internal/repository"
	"github.com/pdiddy/relational-matrix/internal/selector"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

const growth = "Economic growth"

func incomeKey(level types.Level) types.QueryKey {
	return types.QueryKey{
		Level:       level,
		Dependent:   types.ParseVariable(types.AIDependentVariable, ""),
		Independent: types.ParseVariable(growth, ""),
	}
}

func effect(id int64, level types.Level, direction, condition string) types.EffectFinding {
	return types.EffectFinding{
		ID:                    id,
		Level:                 string(level),
		SelectionDependent:    types.AIDependentVariable,
		SelectionIndependent:  growth,
		EffectDirection:       direction,
		TypeOfConditionEffect: condition,
	}
}

func fixture() *repository.Dataset {
	ds := repository.NewDataset()
	ds.Effects[types.SourceEstimated] = []types.EffectFinding{
		effect(1, types.LevelNational, types.EffectIncreases, ""),
		effect(2, types.LevelNational, types.EffectIncreases, ""),
		effect(3, types.LevelSurvey, types.EffectDecreases, ""),
	}
	ds.Effects[types.SourceLiterature] = []types.EffectFinding{
		effect(10, types.LevelNational, types.EffectIncreases, ""),
		effect(11, types.LevelNational, types.EffectDecreases, types.ConditionDecreaseWeaker),
	}
	ds.Effects[types.SourceLiterature][0].MultipleYearSpans = true
	ds.YearSpans[10] = []types.YearSpan{{Start: 1990, End: 2000}, {Start: 2005, End: 2010}}

	ds.Effects[types.SourceAIResearch] = []types.EffectFinding{
		effect(20, types.LevelNational, types.EffectInconclusive, ""),
	}
	ds.References[20] = []types.Reference{
		{Reference: "World Bank", Source: "https://worldbank.org"},
		{Reference: "IMF", Source: "https://imf.org"},
	}

	ds.Correlations = []types.CorrelationFinding{
		{ID: 1, DependentVariable: types.AIDependentVariable, IndependentVariable: growth,
			Correlation2000: types.CoefficientOf(0.4), Correlation2023: types.CoefficientOf(types.CorrelationSentinel)},
	}
	ds.Causalities = []types.CausalityFinding{
		{ID: 1, DependentVariable: types.AIDependentVariable, IndependentVariable: growth,
			Causality: types.CausalityConsistentNegative},
	}
	return ds
}

func newEngine(repo selector.Repository, parallel int) *Engine {
	return New(repo, types.EngineConfig{Parallel: parallel}, nil)
}

func TestComputeSourceResults(t *testing.T) {
	defer goleak.VerifyNone(t)
	for _, parallel := range []int{0, 1, 6} {
		e := newEngine(repository.NewMemory(fixture()), parallel)

		res, err := e.ComputeSourceResults(context.Background(), incomeKey(types.LevelNational))
		require.NoError(t, err)

		want := []struct {
			counts   types.ClassifiedCounts
			findings int
			verdict  types.SourceVerdict
		}{
			{types.ClassifiedCounts{Positive: 2}, 2, types.VerdictPositive},
			{types.ClassifiedCounts{Positive: 2, Negative: 1}, 3, types.VerdictRatherPositive},
			{types.ClassifiedCounts{}, 0, types.VerdictNone},
			{types.ClassifiedCounts{Positive: 1}, 1, types.VerdictPositive},
			{types.ClassifiedCounts{Negative: 1}, 1, types.VerdictNegative},
			{types.ClassifiedCounts{Inconclusive: 1}, 1, types.VerdictInconclusive},
		}
		for i, w := range want {
			got := res.Sources[i]
			assert.Equal(t, types.AllSources[i], got.Source)
			assert.True(t, got.Queried, "source %s", got.Source)
			assert.Equal(t, w.counts, got.Counts, "source %s", got.Source)
			assert.Equal(t, w.findings, got.Findings, "source %s", got.Source)
			assert.Equal(t, w.verdict, got.Verdict, "source %s", got.Source)
		}

		assert.Equal(t, types.OverallVerdict{
			Label:      types.ImpactPositive,
			Percentage: "62.5",
			Confidence: types.ConfidenceModest,
		}, res.Overall)
	}
}

func TestComputeSourceResultsAIGate(t *testing.T) {
	e := newEngine(repository.NewMemory(fixture()), 2)

	key := incomeKey(types.LevelSurvey)
	res, err := e.ComputeSourceResults(context.Background(), key)
	require.NoError(t, err)

	ai := res.Sources[types.SourceAIResearch]
	assert.False(t, ai.Queried)
	assert.Equal(t, types.VerdictNotQueried, ai.Verdict)
	assert.Zero(t, ai.Counts.Total())

	assert.Equal(t, types.ClassifiedCounts{Negative: 1}, res.Sources[types.SourceEstimated].Counts)
}

func TestComputeSourceResultsAllLevels(t *testing.T) {
	e := newEngine(repository.NewMemory(fixture()), 3)

	res, err := e.ComputeSourceResults(context.Background(), incomeKey(types.LevelAll))
	require.NoError(t, err)

	assert.Equal(t, types.ClassifiedCounts{Positive: 2, Negative: 1}, res.Sources[types.SourceEstimated].Counts)
	assert.Equal(t, types.VerdictRatherPositive, res.Sources[types.SourceEstimated].Verdict)
	assert.True(t, res.Sources[types.SourceAIResearch].Queried)
}

func TestComputeSourceResultsNoEvidence(t *testing.T) {
	e := newEngine(repository.NewMemory(nil), 1)

	res, err := e.ComputeSourceResults(context.Background(), incomeKey(types.LevelRegional))
	require.NoError(t, err)
	for _, s := range res.Sources {
		assert.Equal(t, types.VerdictNone, s.Verdict)
		assert.Zero(t, s.Counts.Total())
	}
	assert.Equal(t, types.OverallVerdict{Percentage: "0%"}, res.Overall)
}

func TestComputeSourceResultsInvalidKey(t *testing.T) {
	e := newEngine(repository.NewMemory(fixture()), 1)

	_, err := e.ComputeSourceResults(context.Background(), types.QueryKey{Level: types.LevelNational})
	assert.ErrorIs(t, err, types.ErrInvalidQueryKey)
}

// failingRepo fails causality lookups.
type failingRepo struct {
	*repository.Memory
}

var errConnReset = errors.New("connection reset")

func (failingRepo) Causalities(context.Context, string, string) ([]types.CausalityFinding, error) {
	return nil, errConnReset
}

func TestComputeSourceResultsRepositoryFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	e := newEngine(failingRepo{repository.NewMemory(fixture())}, 6)

	res, err := e.ComputeSourceResults(context.Background(), incomeKey(types.LevelNational))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRepositoryUnavailable)
	assert.ErrorIs(t, err, errConnReset)
	assert.Equal(t, types.QueryResults{}, res)
}

func TestComputeOverallVerdictTie(t *testing.T) {
	var counts [types.NumSources]types.ClassifiedCounts
	counts[types.SourceEstimated] = types.ClassifiedCounts{Positive: 10}
	counts[types.SourceLiterature] = types.ClassifiedCounts{Negative: 10}

	v := ComputeOverallVerdict(counts)
	assert.Equal(t, types.ImpactInconclusive, v.Label)
	assert.Equal(t, types.ConfidenceModest, v.Confidence)
	assert.Equal(t, "50.0", v.Percentage)
}

func TestSourceDetailLiterature(t *testing.T) {
	e := newEngine(repository.NewMemory(fixture()), 1)

	d, err := e.SourceDetail(context.Background(), incomeKey(types.LevelNational), types.SourceLiterature)
	require.NoError(t, err)

	assert.Equal(t, types.VerdictRatherPositive, d.Result.Verdict)
	require.Len(t, d.Effects, 2)
	assert.Equal(t, "Positive", d.Effects[0].Impact.Label)
	assert.Len(t, d.Effects[0].YearSpans, 2)
	assert.Equal(t, "Makes Negative impact weaker. After some point impact becomes Positive", d.Effects[1].Condition)

	assert.Equal(t, presentation.Tally{Positive: 2, Negative: 1}, d.Tally)

	require.Len(t, d.Export, 2)
	assert.Equal(t, "1990-2000; 2005-2010", d.Export[0].Years)
	assert.Empty(t, d.Export[1].Years)
}

func TestSourceDetailAIReferences(t *testing.T) {
	e := newEngine(repository.NewMemory(fixture()), 1)

	d, err := e.SourceDetail(context.Background(), incomeKey(types.LevelNational), types.SourceAIResearch)
	require.NoError(t, err)

	require.Len(t, d.Effects, 1)
	assert.Len(t, d.Effects[0].References, 2)

	require.Len(t, d.Export, 2)
	assert.Equal(t, "World Bank", d.Export[0].Reference)
	assert.True(t, d.Export[1].Continuation)
	assert.Equal(t, "https://imf.org", d.Export[1].SourcesNotes)
}

func TestSourceDetailCorrelations(t *testing.T) {
	e := newEngine(repository.NewMemory(fixture()), 1)

	d, err := e.SourceDetail(context.Background(), incomeKey(types.LevelNational), types.SourceCorrelations)
	require.NoError(t, err)

	require.Len(t, d.Correlations, 1)
	assert.Equal(t, types.ClassifiedCounts{Positive: 1}, d.Result.Counts)
	assert.Empty(t, d.Effects)
	assert.Empty(t, d.Export)
}

func TestSourceDetailUnknownSource(t *testing.T) {
	e := newEngine(repository.NewMemory(fixture()), 1)

	_, err := e.SourceDetail(context.Background(), incomeKey(types.LevelNational), types.Source(42))
	assert.ErrorIs(t, err, types.ErrUnknownSource)
}
