// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package impact turns classified counts into verdicts: one per source and
// one overall verdict with a confidence tier.
//
// Share thresholds are compared in integer arithmetic (100*bucket against
// percent*total) so boundary cases such as exactly 65% or exactly 50% are
// decided exactly.
package impact

import (
	"math/big"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/pdiddy/relational-matrix/pkg/types"
)

// dominancePercent is the share a bucket must strictly exceed to make a
// mixed source lean one way.
const dominancePercent = 65

// EstimateSource returns the verdict for one source's counts.
func EstimateSource(c types.ClassifiedCounts) types.SourceVerdict {
	t := c.Total()
	switch {
	case t == 0:
		return types.VerdictNone
	case c.Positive == t:
		return types.VerdictPositive
	case c.Negative == t:
		return types.VerdictNegative
	case c.Inconclusive == t:
		return types.VerdictInconclusive
	case c.NoEffect == t:
		return types.VerdictNoEffect
	case exceeds(c.Positive, t, dominancePercent):
		return types.VerdictRatherPositive
	case exceeds(c.Negative, t, dominancePercent):
		return types.VerdictRatherNegative
	case exceeds(c.Inconclusive, t, dominancePercent):
		return types.VerdictPossiblyInconclusive
	case exceeds(c.NoEffect, t, dominancePercent):
		return types.VerdictPossiblyNoEffect
	}
	return types.VerdictInconclusive
}

// tier is one confidence level and the minimum share that reaches it.
type tier struct {
	percent    int
	confidence types.Confidence
}

var tiers = []tier{
	{90, types.ConfidenceVeryHigh},
	{75, types.ConfidenceHigh},
	{50, types.ConfidenceModest},
}

// EstimateOverall sums the per-source counts and returns the overall verdict.
func EstimateOverall(perSource [types.NumSources]types.ClassifiedCounts) types.OverallVerdict {
	var sum types.ClassifiedCounts
	for _, c := range perSource {
		sum = sum.Add(c)
	}
	return estimate(sum)
}

func estimate(c types.ClassifiedCounts) types.OverallVerdict {
	t := c.Total()
	if t == 0 {
		return types.OverallVerdict{Percentage: "0%"}
	}

	buckets := []struct {
		label types.ImpactLabel
		n     int
	}{
		{types.ImpactPositive, c.Positive},
		{types.ImpactNegative, c.Negative},
		{types.ImpactInconclusive, c.Inconclusive},
		{types.ImpactNoEffect, c.NoEffect},
	}

	for _, tr := range tiers {
		for _, b := range buckets {
			if !atLeast(b.n, t, tr.percent) {
				continue
			}
			label := b.label
			if tr.confidence == types.ConfidenceModest && label == types.ImpactPositive && c.Positive == c.Negative {
				label = types.ImpactInconclusive
			}
			return verdict(label, b.n, t, tr.confidence)
		}
	}

	// No bucket reaches half: the largest wins, ties resolved in bucket
	// order, and a positive/negative tie is inconclusive.
	switch {
	case c.Positive >= c.Negative && c.Positive >= c.Inconclusive && c.Positive >= c.NoEffect:
		label := types.ImpactPositive
		if c.Positive == c.Negative {
			label = types.ImpactInconclusive
		}
		return verdict(label, c.Positive, t, types.ConfidenceLow)
	case c.Negative >= c.Inconclusive && c.Negative >= c.NoEffect:
		return verdict(types.ImpactNegative, c.Negative, t, types.ConfidenceLow)
	case c.Inconclusive >= c.NoEffect:
		return verdict(types.ImpactInconclusive, c.Inconclusive, t, types.ConfidenceLow)
	}
	return verdict(types.ImpactNoEffect, c.NoEffect, t, types.ConfidenceLow)
}

func verdict(label types.ImpactLabel, n, t int, conf types.Confidence) types.OverallVerdict {
	return types.OverallVerdict{
		Label:      label,
		Percentage: Percentage(n, t),
		Confidence: conf,
	}
}

// Percentage formats n/t as a percentage with one decimal and no percent
// sign. The share is (n/t)*100 in float64 and is rounded on its exact
// binary value; an exact half rounds up.
func Percentage(n, t int) string {
	if t == 0 {
		return "0.0"
	}
	share := float64(n) / float64(t) * 100
	if exactHalf(share) {
		if rounded, err := stats.Round(share, 1); err == nil {
			return strconv.FormatFloat(rounded, 'f', 1, 64)
		}
	}
	return strconv.FormatFloat(share, 'f', 1, 64)
}

// exactHalf reports whether x lies exactly halfway between two
// one-decimal values, that is x*20 is an odd integer.
func exactHalf(x float64) bool {
	r := new(big.Rat).SetFloat64(x)
	if r == nil {
		return false
	}
	r.Mul(r, big.NewRat(20, 1))
	return r.IsInt() && r.Num().Bit(0) == 1
}

// exceeds reports n > percent% of t.
func exceeds(n, t, percent int) bool {
	return 100*n > percent*t
}

// atLeast reports n >= percent% of t.
func atLeast(n, t, percent int) bool {
	return 100*n >= percent*t
}
