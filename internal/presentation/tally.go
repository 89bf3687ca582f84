// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package presentation

import (
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Tally is the per-direction count shown on a source's overview. Unlike
// ClassifiedCounts it keeps conditional and sign-changing directions apart.
type Tally struct {
	Positive               int `json:"positive" yaml:"positive"`
	PositiveConditionality int `json:"positive_conditionality" yaml:"positive_conditionality"`
	Negative               int `json:"negative" yaml:"negative"`
	NegativeConditionality int `json:"negative_conditionality" yaml:"negative_conditionality"`
	Inconclusive           int `json:"inconclusive" yaml:"inconclusive"`
	NoEffect               int `json:"no_effect" yaml:"no_effect"`
	FirstPositive          int `json:"first_positive" yaml:"first_positive"`
	FirstNegative          int `json:"first_negative" yaml:"first_negative"`
}

// Total returns the sum of all counters.
func (t Tally) Total() int {
	return t.Positive + t.PositiveConditionality + t.Negative + t.NegativeConditionality +
		t.Inconclusive + t.NoEffect + t.FirstPositive + t.FirstNegative
}

// TallyEffects counts effect rows of source by direction. For the estimated,
// literature, and perceived sources a weakening condition on a positive or
// negative direction also counts once in the opposite plain direction.
func TallyEffects(source types.Source, rows []types.EffectFinding) Tally {
	var t Tally
	for _, row := range rows {
		var positiveSide, negativeSide bool
		switch row.EffectDirection {
		case types.EffectIncreases, types.EffectIncrease:
			t.Positive++
			positiveSide = true
		case types.EffectIncreasesConditionally:
			t.PositiveConditionality++
			positiveSide = true
		case types.EffectDecreases:
			t.Negative++
			negativeSide = true
		case types.EffectDecreasesConditionally:
			t.NegativeConditionality++
			negativeSide = true
		case types.EffectInconclusive:
			t.Inconclusive++
		case types.EffectNone:
			t.NoEffect++
		case types.EffectFirstIncreasesThenDecays:
			t.FirstPositive++
		case types.EffectFirstDecreasesThenRises:
			t.FirstNegative++
		}

		if !relabelsConditions(source) {
			continue
		}
		switch {
		case positiveSide && row.TypeOfConditionEffect == types.ConditionIncreaseWeaker:
			t.Negative++
		case negativeSide && row.TypeOfConditionEffect == types.ConditionDecreaseWeaker:
			t.Positive++
		}
	}
	return t
}

// TallyCorrelations counts the first row of each group by the signs of its
// applicable years.
func TallyCorrelations(groups []types.PairGroup[types.CorrelationFinding]) Tally {
	var t Tally
	for _, g := range groups {
		row := g.First()
		for _, c := range []types.Coefficient{row.Correlation2000, row.Correlation2023} {
			if !c.Applicable {
				continue
			}
			switch c.Sign() {
			case 1:
				t.Positive++
			case -1:
				t.Negative++
			default:
				t.NoEffect++
			}
		}
	}
	return t
}

// TallyCausalities counts the first row of each group by causality label.
func TallyCausalities(groups []types.PairGroup[types.CausalityFinding]) Tally {
	var t Tally
	for _, g := range groups {
		switch g.First().Causality {
		case types.CausalityConsistentPositive, types.CausalityPredominantlyPositive:
			t.Positive++
		case types.CausalityConsistentNegative, types.CausalityPredominantlyNegative:
			t.Negative++
		case types.CausalityMixedTrend:
			t.Inconclusive++
		}
	}
	return t
}
