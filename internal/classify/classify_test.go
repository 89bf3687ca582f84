// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/relational-matrix/pkg/types"
)

func effect(direction, condition string) types.EffectFinding {
	return types.EffectFinding{EffectDirection: direction, TypeOfConditionEffect: condition}
}

func TestEffects(t *testing.T) {
	tests := []struct {
		name         string
		rows         []types.EffectFinding
		want         types.ClassifiedCounts
		findings     int
		unrecognized int
	}{
		{
			name:     "plain directions",
			rows:     []types.EffectFinding{effect("Increases", ""), effect("Increase", ""), effect("Decreases", ""), effect("Inconclusive effect", ""), effect("No effect", "")},
			want:     types.ClassifiedCounts{Positive: 2, Negative: 1, Inconclusive: 1, NoEffect: 1},
			findings: 5,
		},
		{
			name:     "conditional increase weakened into negative",
			rows:     []types.EffectFinding{effect("Increases under a conditionality", types.ConditionIncreaseWeaker)},
			want:     types.ClassifiedCounts{Positive: 1, Negative: 1},
			findings: 2,
		},
		{
			name:     "decrease weakened into positive",
			rows:     []types.EffectFinding{effect("Decreases", types.ConditionDecreaseWeaker)},
			want:     types.ClassifiedCounts{Positive: 1, Negative: 1},
			findings: 2,
		},
		{
			name:     "strengthening condition adds nothing",
			rows:     []types.EffectFinding{effect("Increases", types.ConditionIncreaseStronger)},
			want:     types.ClassifiedCounts{Positive: 1},
			findings: 1,
		},
		{
			name:     "mismatched weakening condition is ignored",
			rows:     []types.EffectFinding{effect("Increases", types.ConditionDecreaseWeaker)},
			want:     types.ClassifiedCounts{Positive: 1},
			findings: 1,
		},
		{
			name:     "sign-changing directions count twice",
			rows:     []types.EffectFinding{effect(types.EffectFirstIncreasesThenDecays, ""), effect(types.EffectFirstDecreasesThenRises, "")},
			want:     types.ClassifiedCounts{Positive: 2, Negative: 2},
			findings: 4,
		},
		{
			name:         "unrecognized label is skipped but counted as seen",
			rows:         []types.EffectFinding{effect("increases", ""), effect("Increases", "")},
			want:         types.ClassifiedCounts{Positive: 1},
			findings:     2,
			unrecognized: 1,
		},
		{
			name: "no rows",
		},
	}

	c := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Effects(types.SourceLiterature, tt.rows)
			assert.Equal(t, tt.want, got.Counts)
			assert.Equal(t, tt.findings, got.Findings)
			assert.Equal(t, tt.unrecognized, got.Unrecognized)
			assert.GreaterOrEqual(t, got.Counts.Total()+got.Unrecognized, len(tt.rows))
		})
	}
}

func TestEffectsLogsUnrecognized(t *testing.T) {
	var buf bytes.Buffer
	c := New(slog.New(slog.NewTextHandler(&buf, nil)))

	c.Effects(types.SourceEstimated, []types.EffectFinding{{ID: 42, EffectDirection: "Sideways"}})

	assert.Contains(t, buf.String(), "skipping unrecognized label")
	assert.Contains(t, buf.String(), "label=Sideways")
	assert.Contains(t, buf.String(), "source=estimated")
}

func corrGroup(c2000, c2023 float64, extra ...types.CorrelationFinding) types.PairGroup[types.CorrelationFinding] {
	rows := append([]types.CorrelationFinding{{
		Correlation2000: types.CoefficientOf(c2000),
		Correlation2023: types.CoefficientOf(c2023),
	}}, extra...)
	return types.PairGroup[types.CorrelationFinding]{Rows: rows}
}

func TestCorrelations(t *testing.T) {
	tests := []struct {
		name     string
		groups   []types.PairGroup[types.CorrelationFinding]
		want     types.ClassifiedCounts
		findings int
	}{
		{
			name:     "both years by sign",
			groups:   []types.PairGroup[types.CorrelationFinding]{corrGroup(0.3, -0.2)},
			want:     types.ClassifiedCounts{Positive: 1, Negative: 1},
			findings: 2,
		},
		{
			name:     "sentinel year is skipped",
			groups:   []types.PairGroup[types.CorrelationFinding]{corrGroup(10, 0.4)},
			want:     types.ClassifiedCounts{Positive: 1},
			findings: 1,
		},
		{
			name:   "both years not applicable",
			groups: []types.PairGroup[types.CorrelationFinding]{corrGroup(10, 10)},
		},
		{
			name:     "zero is no effect",
			groups:   []types.PairGroup[types.CorrelationFinding]{corrGroup(0, 0)},
			want:     types.ClassifiedCounts{NoEffect: 2},
			findings: 2,
		},
		{
			name: "only the first row of a group is classified",
			groups: []types.PairGroup[types.CorrelationFinding]{
				corrGroup(0.5, 0.5, types.CorrelationFinding{
					Correlation2000: types.CoefficientOf(-0.9),
					Correlation2023: types.CoefficientOf(-0.9),
				}),
				corrGroup(-0.1, 10),
			},
			want:     types.ClassifiedCounts{Positive: 2, Negative: 1},
			findings: 3,
		},
	}

	c := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Correlations(tt.groups)
			assert.Equal(t, tt.want, got.Counts)
			assert.Equal(t, tt.findings, got.Findings)
		})
	}
}

func TestCausalities(t *testing.T) {
	group := func(labels ...string) types.PairGroup[types.CausalityFinding] {
		var rows []types.CausalityFinding
		for _, l := range labels {
			rows = append(rows, types.CausalityFinding{Causality: l})
		}
		return types.PairGroup[types.CausalityFinding]{Rows: rows}
	}

	c := New(nil)
	got := c.Causalities([]types.PairGroup[types.CausalityFinding]{
		group("Consistent positive", "Consistent negative"),
		group("Predominantly negative"),
		group("Mixed trend"),
		group("No causality"),
	})

	assert.Equal(t, types.ClassifiedCounts{Positive: 1, Negative: 1, Inconclusive: 1}, got.Counts)
	assert.Equal(t, 4, got.Findings)
	assert.Equal(t, 1, got.Unrecognized)
}
