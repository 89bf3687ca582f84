// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ClassifiedCounts holds the number of classified findings per impact
// bucket. A single finding may increment more than one bucket.
type ClassifiedCounts struct {
	Positive     int `json:"positive" yaml:"positive"`
	Negative     int `json:"negative" yaml:"negative"`
	Inconclusive int `json:"inconclusive" yaml:"inconclusive"`
	NoEffect     int `json:"no_effect" yaml:"no_effect"`
}

// Total returns the sum of all buckets.
func (c ClassifiedCounts) Total() int {
	return c.Positive + c.Negative + c.Inconclusive + c.NoEffect
}

// Add returns the bucket-wise sum of c and o.
func (c ClassifiedCounts) Add(o ClassifiedCounts) ClassifiedCounts {
	return ClassifiedCounts{
		Positive:     c.Positive + o.Positive,
		Negative:     c.Negative + o.Negative,
		Inconclusive: c.Inconclusive + o.Inconclusive,
		NoEffect:     c.NoEffect + o.NoEffect,
	}
}

// SourceVerdict is the per-source impact label.
type SourceVerdict string

const (
	// VerdictNotQueried marks a source that was skipped for the query key.
	VerdictNotQueried SourceVerdict = ""

	// VerdictNone marks a source that was queried but had no classified findings.
	VerdictNone SourceVerdict = "-"

	VerdictPositive             SourceVerdict = "positive"
	VerdictNegative             SourceVerdict = "negative"
	VerdictInconclusive         SourceVerdict = "inconclusive"
	VerdictNoEffect             SourceVerdict = "no-effect"
	VerdictRatherPositive       SourceVerdict = "rather-positive"
	VerdictRatherNegative       SourceVerdict = "rather-negative"
	VerdictPossiblyInconclusive SourceVerdict = "possibly-inconclusive"
	VerdictPossiblyNoEffect     SourceVerdict = "possibly-no-effect"
)

// ImpactLabel is the label of the overall verdict.
type ImpactLabel string

const (
	ImpactNone         ImpactLabel = ""
	ImpactPositive     ImpactLabel = "Positive"
	ImpactNegative     ImpactLabel = "Negative"
	ImpactInconclusive ImpactLabel = "Inconclusive"
	ImpactNoEffect     ImpactLabel = "No Effect"
)

// Confidence is the tier of the overall verdict.
type Confidence string

const (
	ConfidenceNone     Confidence = ""
	ConfidenceLow      Confidence = "Low"
	ConfidenceModest   Confidence = "Modest"
	ConfidenceHigh     Confidence = "High"
	ConfidenceVeryHigh Confidence = "Very High"
)

// OverallVerdict is the aggregate verdict across all sources.
type OverallVerdict struct {
	Label ImpactLabel `json:"label" yaml:"label"`

	// Percentage is the winning bucket's share of all classified findings,
	// formatted with one decimal and no percent sign. It is "0%" when there
	// is no evidence.
	Percentage string `json:"percentage" yaml:"percentage"`

	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// SourceResult is the outcome of evaluating one source for a query key.
type SourceResult struct {
	Source Source `json:"source" yaml:"source"`

	// Queried is false when the source does not apply to the query key.
	Queried bool `json:"queried" yaml:"queried"`

	Counts ClassifiedCounts `json:"counts" yaml:"counts"`

	// Findings counts processed findings, including the extra finding
	// recorded for effects that change sign.
	Findings int `json:"findings" yaml:"findings"`

	Verdict SourceVerdict `json:"verdict" yaml:"verdict"`
}

// QueryResults is the full result of one evidence computation.
type QueryResults struct {
	Key     QueryKey                 `json:"key" yaml:"key"`
	Sources [NumSources]SourceResult `json:"sources" yaml:"sources"`
	Overall OverallVerdict           `json:"overall" yaml:"overall"`
}

// Counts returns the per-source counts in source order.
func (r QueryResults) Counts() [NumSources]ClassifiedCounts {
	var out [NumSources]ClassifiedCounts
	for i, s := range r.Sources {
		out[i] = s.Counts
	}
	return out
}
