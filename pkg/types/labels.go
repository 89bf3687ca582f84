// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Effect direction labels stored in the effect tables. Matching is exact
// and case-sensitive.
const (
	EffectIncreases                = "Increases"
	EffectIncrease                 = "Increase"
	EffectIncreasesConditionally   = "Increases under a conditionality"
	EffectDecreases                = "Decreases"
	EffectDecreasesConditionally   = "Decreases under a conditionality"
	EffectInconclusive             = "Inconclusive effect"
	EffectNone                     = "No effect"
	EffectFirstIncreasesThenDecays = "First increases and after some point decreases"
	EffectFirstDecreasesThenRises  = "First decreases and after some point increases"
)

// Type-of-condition-effect labels.
const (
	ConditionIncreaseStronger = "Makes increase even stronger"
	ConditionDecreaseStronger = "Makes decrease even stronger"
	ConditionIncreaseWeaker   = "Makes increase weaker. After some point impact becomes negative"
	ConditionDecreaseWeaker   = "Makes decrease weaker. After some point impact becomes positive"
)

// Granger causality labels.
const (
	CausalityConsistentPositive    = "Consistent positive"
	CausalityPredominantlyPositive = "Predominantly positive"
	CausalityConsistentNegative    = "Consistent negative"
	CausalityPredominantlyNegative = "Predominantly negative"
	CausalityMixedTrend            = "Mixed trend"
)

// AIDependentVariable is the only dependent variable the AI research
// source holds findings for.
const AIDependentVariable = "Unequal Income distribution (individuals or social groups)"

// PairGroup holds the correlation or causality rows found for one
// (dependent name, independent name) combination of a query key.
type PairGroup[T any] struct {
	// Dependent and Independent are the names that were combined.
	Dependent   string `json:"dependent" yaml:"dependent"`
	Independent string `json:"independent" yaml:"independent"`

	// DepIndex and IndIndex are the positions of the names in the query
	// key's dependent and independent name lists. Zero is the primary name.
	DepIndex int `json:"dep_index" yaml:"dep_index"`
	IndIndex int `json:"ind_index" yaml:"ind_index"`

	// Swapped is set when the rows were found with the names in reverse
	// roles (correlations only).
	Swapped bool `json:"swapped,omitempty" yaml:"swapped,omitempty"`

	// Rows is never empty.
	Rows []T `json:"rows" yaml:"rows"`
}

// First returns the first row of the group.
func (g PairGroup[T]) First() T {
	return g.Rows[0]
}
