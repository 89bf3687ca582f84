// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify maps raw evidence rows to impact buckets.
//
// Effect rows are classified by their effect direction and, for positive or
// negative directions, by a weakening condition that flips the sign after
// some point. Correlation and causality groups are classified from their
// first row only. Labels outside the known vocabulary are logged and
// skipped without failing the computation.
package classify

import (
	"io"
	"log/slog"

	"github.com/pdiddy/relational-matrix/pkg/types"
)

type bucket uint8

const (
	positive bucket = 1 << iota
	negative
	inconclusive
	noEffect
)

func (b bucket) addTo(c *types.ClassifiedCounts) {
	if b&positive != 0 {
		c.Positive++
	}
	if b&negative != 0 {
		c.Negative++
	}
	if b&inconclusive != 0 {
		c.Inconclusive++
	}
	if b&noEffect != 0 {
		c.NoEffect++
	}
}

// rule describes how one raw label is counted.
type rule struct {
	buckets bucket

	// signChange marks labels that count as two findings.
	signChange bool

	// weakening is the condition-effect text that adds the opposite bucket
	// and one extra finding.
	weakening string
	opposite  bucket
}

var effectRules = map[string]rule{
	types.EffectIncreases:              {buckets: positive, weakening: types.ConditionIncreaseWeaker, opposite: negative},
	types.EffectIncrease:               {buckets: positive, weakening: types.ConditionIncreaseWeaker, opposite: negative},
	types.EffectIncreasesConditionally: {buckets: positive, weakening: types.ConditionIncreaseWeaker, opposite: negative},
	types.EffectDecreases:              {buckets: negative, weakening: types.ConditionDecreaseWeaker, opposite: positive},
	types.EffectDecreasesConditionally: {buckets: negative, weakening: types.ConditionDecreaseWeaker, opposite: positive},
	types.EffectInconclusive:           {buckets: inconclusive},
	types.EffectNone:                   {buckets: noEffect},

	types.EffectFirstIncreasesThenDecays: {buckets: positive | negative, signChange: true},
	types.EffectFirstDecreasesThenRises:  {buckets: positive | negative, signChange: true},
}

var causalityRules = map[string]rule{
	types.CausalityConsistentPositive:    {buckets: positive},
	types.CausalityPredominantlyPositive: {buckets: positive},
	types.CausalityConsistentNegative:    {buckets: negative},
	types.CausalityPredominantlyNegative: {buckets: negative},
	types.CausalityMixedTrend:            {buckets: inconclusive},
}

// rulesBySource holds the label table for every label-driven source.
// Correlations are classified by coefficient sign instead.
var rulesBySource = map[types.Source]map[string]rule{
	types.SourceEstimated:   effectRules,
	types.SourceLiterature:  effectRules,
	types.SourcePerceived:   effectRules,
	types.SourceAIResearch:  effectRules,
	types.SourceCausalities: causalityRules,
}

// Result is the classification of one source's rows.
type Result struct {
	Counts types.ClassifiedCounts

	// Findings counts processed findings, including the extra finding for
	// sign-changing effects.
	Findings int

	// Unrecognized counts rows whose label matched no rule.
	Unrecognized int
}

// Classifier classifies evidence rows. It is stateless apart from its
// logger and safe for concurrent use.
type Classifier struct {
	logger *slog.Logger
}

// New returns a Classifier that reports unrecognized labels to logger.
// A nil logger discards them.
func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Classifier{logger: logger}
}

// Effects classifies rows from one of the effect sources. Every row counts
// one finding; sign-changing directions and weakening conditions add one
// more.
func (c *Classifier) Effects(source types.Source, rows []types.EffectFinding) Result {
	var res Result
	table := rulesBySource[source]
	for _, row := range rows {
		res.Findings++

		r, ok := table[row.EffectDirection]
		if !ok {
			c.unrecognized(&res, source, row.ID, row.EffectDirection)
			continue
		}
		r.buckets.addTo(&res.Counts)
		if r.signChange {
			res.Findings++
		}
		if r.weakening != "" && row.TypeOfConditionEffect == r.weakening {
			r.opposite.addTo(&res.Counts)
			res.Findings++
		}
	}
	return res
}

// Correlations classifies the first row of each group. Each applicable
// year is one finding, bucketed by the sign of its coefficient.
func (c *Classifier) Correlations(groups []types.PairGroup[types.CorrelationFinding]) Result {
	var res Result
	for _, g := range groups {
		if len(g.Rows) == 0 {
			continue
		}
		row := g.First()
		for _, coef := range []types.Coefficient{row.Correlation2000, row.Correlation2023} {
			if !coef.Applicable {
				continue
			}
			signBucket(coef.Sign()).addTo(&res.Counts)
			res.Findings++
		}
	}
	return res
}

// Causalities classifies the first row of each group. Every group counts
// one finding even when its label is unrecognized.
func (c *Classifier) Causalities(groups []types.PairGroup[types.CausalityFinding]) Result {
	var res Result
	for _, g := range groups {
		if len(g.Rows) == 0 {
			continue
		}
		row := g.First()
		res.Findings++

		r, ok := causalityRules[row.Causality]
		if !ok {
			c.unrecognized(&res, types.SourceCausalities, row.ID, row.Causality)
			continue
		}
		r.buckets.addTo(&res.Counts)
	}
	return res
}

func (c *Classifier) unrecognized(res *Result, source types.Source, id int64, label string) {
	res.Unrecognized++
	c.logger.Warn("skipping unrecognized label",
		"source", source.String(), "row", id, "label", label)
}

func signBucket(sign int) bucket {
	switch {
	case sign > 0:
		return positive
	case sign < 0:
		return negative
	}
	return noEffect
}
