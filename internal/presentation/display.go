// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package presentation maps classified evidence rows to what users see:
// impact labels and card colors, relabeled condition texts, variable
// names annotated with the secondary variable that approximated them, the
// per-source effect tally, and the flat rows handed to exporters.
//
// Nothing here feeds back into counts or verdicts.
package presentation

import (
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Color is the card color tag of a displayed finding.
type Color string

const (
	ColorNone           Color = ""
	ColorPositive       Color = "positive"
	ColorRatherPositive Color = "rather-positive"
	ColorNegative       Color = "negative"
	ColorRatherNegative Color = "rather-negative"
	ColorInconclusive   Color = "inconclusive"
	ColorNoEffect       Color = "no-effect"
	ColorFirstPositive  Color = "first-positive"
	ColorFirstNegative  Color = "first-negative"
)

// Display is the user-facing impact label and color of a raw label.
type Display struct {
	Label string `json:"label" yaml:"label"`
	Color Color  `json:"color" yaml:"color"`
}

var effectDisplay = map[string]Display{
	types.EffectIncreases:                {"Positive", ColorPositive},
	types.EffectIncrease:                 {"Positive", ColorPositive},
	types.EffectIncreasesConditionally:   {"Positive under a conditionality", ColorRatherPositive},
	types.EffectDecreases:                {"Negative", ColorNegative},
	types.EffectDecreasesConditionally:   {"Negative under a conditionality", ColorRatherNegative},
	types.EffectInconclusive:             {"Inconclusive Impact", ColorInconclusive},
	types.EffectNone:                     {"No Impact", ColorNoEffect},
	types.EffectFirstIncreasesThenDecays: {"First Positive and after some point Negative", ColorFirstPositive},
	types.EffectFirstDecreasesThenRises:  {"First Negative and after some point Positive", ColorFirstNegative},
}

var conditionText = map[string]string{
	types.ConditionIncreaseStronger: "Makes Positive impact even stronger",
	types.ConditionDecreaseStronger: "Makes Negative impact even stronger",
	types.ConditionIncreaseWeaker:   "Makes Positive impact weaker. After some point impact becomes Negative",
	types.ConditionDecreaseWeaker:   "Makes Negative impact weaker. After some point impact becomes Positive",
}

var causalityColor = map[string]Color{
	types.CausalityConsistentPositive:    ColorPositive,
	types.CausalityPredominantlyPositive: ColorRatherPositive,
	types.CausalityConsistentNegative:    ColorNegative,
	types.CausalityPredominantlyNegative: ColorRatherNegative,
	types.CausalityMixedTrend:            ColorInconclusive,
}

// MapEffect returns the display of an effect direction. Unknown labels are
// returned unchanged with no color and ok false.
func MapEffect(direction string) (d Display, ok bool) {
	d, ok = effectDisplay[direction]
	if !ok {
		return Display{Label: direction}, false
	}
	return d, true
}

// ConditionText rewrites a type-of-condition-effect text in terms of
// positive and negative impact. Other texts are returned unchanged.
func ConditionText(raw string) string {
	if s, ok := conditionText[raw]; ok {
		return s
	}
	return raw
}

// MapCausality returns the color of a Granger causality label.
func MapCausality(label string) (Color, bool) {
	c, ok := causalityColor[label]
	return c, ok
}

// MapCorrelation colors a correlation row by the signs of its two yearly
// coefficients. When only one year is applicable its sign decides alone;
// with neither applicable the row has no color.
func MapCorrelation(row types.CorrelationFinding) Color {
	a, b := row.Correlation2000, row.Correlation2023
	switch {
	case a.Applicable && b.Applicable:
		return pairColor(a.Sign(), b.Sign())
	case a.Applicable:
		return singleColor(a.Sign())
	case b.Applicable:
		return singleColor(b.Sign())
	}
	return ColorNone
}

func pairColor(a, b int) Color {
	switch {
	case a > 0 && b > 0:
		return ColorPositive
	case a < 0 && b < 0:
		return ColorNegative
	case a*b < 0:
		return ColorInconclusive
	case a+b > 0:
		return ColorRatherPositive
	case a+b < 0:
		return ColorRatherNegative
	}
	return ColorNoEffect
}

func singleColor(sign int) Color {
	switch {
	case sign > 0:
		return ColorPositive
	case sign < 0:
		return ColorNegative
	}
	return ColorNoEffect
}

// relabelsConditions reports whether a source's condition texts are shown
// in impact terms. AI research rows keep their stored text.
func relabelsConditions(source types.Source) bool {
	switch source {
	case types.SourceEstimated, types.SourceLiterature, types.SourcePerceived:
		return true
	}
	return false
}

// EffectView is an effect finding prepared for display.
type EffectView struct {
	types.EffectFinding `yaml:",inline"`

	// Table is the title of the source the finding came from.
	Table string `json:"table" yaml:"table"`

	Impact Display `json:"impact" yaml:"impact"`

	// Condition is the type of condition effect in impact terms.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// CorrelationView is the first row of a correlation group prepared for
// display.
type CorrelationView struct {
	types.CorrelationFinding `yaml:",inline"`

	Table string `json:"table" yaml:"table"`
	Color Color  `json:"color" yaml:"color"`
}

// CausalityView is the first row of a causality group prepared for display.
type CausalityView struct {
	types.CausalityFinding `yaml:",inline"`

	Table string `json:"table" yaml:"table"`
	Color Color  `json:"color" yaml:"color"`
}

// Effects maps effect rows of source for display.
func Effects(source types.Source, rows []types.EffectFinding) []EffectView {
	views := make([]EffectView, 0, len(rows))
	for _, row := range rows {
		d, _ := MapEffect(row.EffectDirection)
		v := EffectView{
			EffectFinding: row,
			Table:         source.Title(),
			Impact:        d,
			Condition:     row.TypeOfConditionEffect,
		}
		if relabelsConditions(source) {
			v.Condition = ConditionText(row.TypeOfConditionEffect)
		}
		views = append(views, v)
	}
	return views
}

// Correlations maps the first row of each group for display, with variable
// names annotated where a secondary variable approximated them.
func Correlations(key types.QueryKey, groups []types.PairGroup[types.CorrelationFinding]) []CorrelationView {
	views := make([]CorrelationView, 0, len(groups))
	for _, g := range groups {
		row := RelabelCorrelation(key, g)
		views = append(views, CorrelationView{
			CorrelationFinding: row,
			Table:              types.SourceCorrelations.Title(),
			Color:              MapCorrelation(row),
		})
	}
	return views
}

// Causalities maps the first row of each group for display.
func Causalities(key types.QueryKey, groups []types.PairGroup[types.CausalityFinding]) []CausalityView {
	views := make([]CausalityView, 0, len(groups))
	for _, g := range groups {
		row := RelabelCausality(key, g)
		c, _ := MapCausality(row.Causality)
		views = append(views, CausalityView{
			CausalityFinding: row,
			Table:            types.SourceCausalities.Title(),
			Color:            c,
		})
	}
	return views
}
