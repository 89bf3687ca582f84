// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the relational-matrix
// evidence engine: query keys, evidence rows, classified counts, and verdicts.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Source identifies one of the six evidence sources. The numeric value is
// the source's fixed position in per-query results.
type Source int

const (
	SourceEstimated Source = iota
	SourceLiterature
	SourcePerceived
	SourceCorrelations
	SourceCausalities
	SourceAIResearch
)

// NumSources is the number of evidence sources.
const NumSources = 6

// AllSources lists the sources in result order.
var AllSources = [NumSources]Source{
	SourceEstimated,
	SourceLiterature,
	SourcePerceived,
	SourceCorrelations,
	SourceCausalities,
	SourceAIResearch,
}

var sourceNames = [NumSources]string{
	"estimated",
	"literature",
	"perceived",
	"correlations",
	"granger_causalities",
	"ai_research",
}

var sourceTitles = [NumSources]string{
	"Estimated Inputs",
	"Literature Inputs",
	"Perceived Inputs",
	"Correlations Table",
	"Granger Causalities Table",
	"AI (ChatGPT) Research",
}

var sourceTables = [NumSources]string{
	"estimated_inputs",
	"literature_inputs",
	"perceived_inputs",
	"correlations",
	"granger_causalities",
	"ai_chatgpt_research",
}

// String returns the short machine name of the source (e.g. "literature").
func (s Source) String() string {
	if !s.Valid() {
		return fmt.Sprintf("source(%d)", int(s))
	}
	return sourceNames[s]
}

// Title returns the human-readable name used in reports.
func (s Source) Title() string {
	if !s.Valid() {
		return s.String()
	}
	return sourceTitles[s]
}

// Table returns the evidence table that backs the source.
func (s Source) Table() string {
	if !s.Valid() {
		return ""
	}
	return sourceTables[s]
}

// Valid reports whether s is one of the six known sources.
func (s Source) Valid() bool {
	return s >= SourceEstimated && s <= SourceAIResearch
}

// IsEffect reports whether the source stores effect-direction rows
// (estimated, literature, perceived, AI research).
func (s Source) IsEffect() bool {
	switch s {
	case SourceEstimated, SourceLiterature, SourcePerceived, SourceAIResearch:
		return true
	}
	return false
}

// MarshalText encodes the source by its short name.
func (s Source) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSource, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a short name produced by MarshalText.
func (s *Source) UnmarshalText(b []byte) error {
	parsed, err := ParseSource(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSource resolves a source from its short name or table name.
// Matching is case-insensitive.
func ParseSource(name string) (Source, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range AllSources {
		if n == sourceNames[s] || n == sourceTables[s] {
			return s, nil
		}
	}
	switch n {
	case "causalities", "granger":
		return SourceCausalities, nil
	case "ai", "ai_chatgpt":
		return SourceAIResearch, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// Level is a level of analysis as stored in the evidence tables.
type Level string

const (
	LevelNational  Level = "National (compare countries)"
	LevelRegional  Level = "Regional (compare regions or areas)"
	LevelSurvey    Level = "Survey (compare individuals or social groups)"
	LevelCaseStudy Level = "Case Study (in depth analysis)"
	LevelOther     Level = "Other"

	// LevelAll is a query directive that expands to every concrete level.
	// It never appears in stored rows.
	LevelAll Level = "All Levels"
)

// ConcreteLevels lists the stored levels in the order All Levels expands to.
var ConcreteLevels = []Level{
	LevelNational,
	LevelRegional,
	LevelSurvey,
	LevelCaseStudy,
	LevelOther,
}

// Valid reports whether l is a concrete level or LevelAll.
func (l Level) Valid() bool {
	if l == LevelAll {
		return true
	}
	for _, c := range ConcreteLevels {
		if l == c {
			return true
		}
	}
	return false
}

// otherPrefix marks a variable selection that is accompanied by free text.
const otherPrefix = "Other"

// dualVariablePrefixes names the canonical variables whose selection encodes
// a primary and a secondary name separated by dualSeparator.
var dualVariablePrefixes = []string{
	"Size of Public sector",
	"Adequate transportation infrastructure",
	"Level of development",
	"Discrimination with respect to race",
}

const dualSeparator = " - "

// VariableRef is a dependent or independent variable as selected by the user.
type VariableRef struct {
	// Names holds the primary canonical name, followed by the secondary name
	// for dual variables. The secondary name only broadens correlation and
	// causality lookups.
	Names []string `json:"names" yaml:"names"`

	// Other is the free text accompanying an "Other" selection.
	Other string `json:"other,omitempty" yaml:"other,omitempty"`
}

// ParseVariable builds a VariableRef from a selection string as submitted
// by the selection form, plus the free text for "Other" selections.
// Selections of dual variables are split into primary and secondary names.
func ParseVariable(selection, other string) VariableRef {
	selection = strings.TrimSpace(selection)
	other = strings.TrimSpace(other)
	if selection == "" {
		return VariableRef{Other: other}
	}
	for _, prefix := range dualVariablePrefixes {
		if strings.HasPrefix(selection, prefix) {
			parts := strings.SplitN(selection, dualSeparator, 2)
			return VariableRef{Names: parts, Other: other}
		}
	}
	return VariableRef{Names: []string{selection}, Other: other}
}

// Primary returns the primary canonical name, or "" when unset.
func (v VariableRef) Primary() string {
	if len(v.Names) == 0 {
		return ""
	}
	return v.Names[0]
}

// IsOther reports whether the selection is an "Other" variant.
func (v VariableRef) IsOther() bool {
	return strings.HasPrefix(v.Primary(), otherPrefix)
}

// Display returns the name shown to users: the free text for "Other"
// selections, otherwise the primary name.
func (v VariableRef) Display() string {
	if v.IsOther() {
		return v.Other
	}
	return v.Primary()
}

// IndexOf returns the position of name in Names, or -1.
func (v VariableRef) IndexOf(name string) int {
	for i, n := range v.Names {
		if n == name {
			return i
		}
	}
	return -1
}

func (v VariableRef) validate(field string) error {
	if v.Primary() == "" {
		return &QueryKeyError{Field: field, Reason: "no variable selected"}
	}
	if v.IsOther() && v.Other == "" {
		return &QueryKeyError{Field: field, Reason: "\"Other\" selection requires free text"}
	}
	if !v.IsOther() && v.Other != "" {
		return &QueryKeyError{Field: field, Reason: "free text given for a non-\"Other\" selection"}
	}
	return nil
}

// QueryKey identifies one evidence computation.
type QueryKey struct {
	// Level is a concrete level or LevelAll.
	Level Level `json:"level" yaml:"level"`

	// Dependent is the outcome variable.
	Dependent VariableRef `json:"dependent" yaml:"dependent"`

	// Independent is the driver variable.
	Independent VariableRef `json:"independent" yaml:"independent"`
}

// Validate checks that the key names a known level and two unambiguous
// variable selections. Errors wrap ErrInvalidQueryKey.
func (k QueryKey) Validate() error {
	if k.Level == "" {
		return &QueryKeyError{Field: "level", Reason: "no level selected"}
	}
	if !k.Level.Valid() {
		return &QueryKeyError{Field: "level", Reason: fmt.Sprintf("unknown level %q", k.Level)}
	}
	if err := k.Dependent.validate("dependent"); err != nil {
		return err
	}
	return k.Independent.validate("independent")
}

// YearSpan is one period covered by a literature finding.
type YearSpan struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Reference is one citation attached to an AI research finding.
type Reference struct {
	// Reference is the citation text.
	Reference string `json:"reference" yaml:"reference"`

	// Source is the link or origin of the citation.
	Source string `json:"source" yaml:"source"`
}

// EffectFinding is a row from the estimated, literature, perceived, or AI
// research tables.
type EffectFinding struct {
	ID                    int64  `json:"id" yaml:"id"`
	Level                 string `json:"level_of_analysis" yaml:"level_of_analysis"`
	LevelOther            string `json:"level_of_analysis_other,omitempty" yaml:"level_of_analysis_other,omitempty"`
	SelectionDependent    string `json:"selection_dependent" yaml:"selection_dependent"`
	OtherDependent        string `json:"other_dependent,omitempty" yaml:"other_dependent,omitempty"`
	SelectionIndependent  string `json:"selection_independent" yaml:"selection_independent"`
	OtherIndependent      string `json:"other_independent,omitempty" yaml:"other_independent,omitempty"`
	EffectDirection       string `json:"effect_direction" yaml:"effect_direction"`
	VariableCondition     string `json:"variable_condition,omitempty" yaml:"variable_condition,omitempty"`
	OtherCondition        string `json:"other_condition,omitempty" yaml:"other_condition,omitempty"`
	TypeOfConditionEffect string `json:"type_of_condition_effect,omitempty" yaml:"type_of_condition_effect,omitempty"`
	Reference             string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Notes                 string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// StartYear and EndYear are zero when the finding has no single period.
	StartYear int `json:"start_year,omitempty" yaml:"start_year,omitempty"`
	EndYear   int `json:"end_year,omitempty" yaml:"end_year,omitempty"`

	// MultipleYearSpans marks literature rows whose periods live in
	// YearSpans instead of StartYear/EndYear.
	MultipleYearSpans bool       `json:"multiple_year_spans,omitempty" yaml:"multiple_year_spans,omitempty"`
	YearSpans         []YearSpan `json:"year_spans,omitempty" yaml:"year_spans,omitempty"`

	// References is populated for AI research rows in detail views.
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
}

// CorrelationSentinel is the stored coefficient value meaning "not
// applicable for this year".
const CorrelationSentinel = 10.0

// NotApplicableText is how a not-applicable coefficient is rendered.
const NotApplicableText = "-"

// Coefficient is a correlation coefficient for one reference year. The zero
// value is not applicable.
type Coefficient struct {
	Value      float64
	Applicable bool
}

// CoefficientOf wraps a stored value, mapping the sentinel to not applicable.
func CoefficientOf(v float64) Coefficient {
	if v == CorrelationSentinel {
		return Coefficient{}
	}
	return Coefficient{Value: v, Applicable: true}
}

// Sign returns 1, -1, or 0 for applicable coefficients and 0 otherwise.
func (c Coefficient) Sign() int {
	switch {
	case !c.Applicable:
		return 0
	case c.Value > 0:
		return 1
	case c.Value < 0:
		return -1
	}
	return 0
}

// Stored returns the value as persisted, using the sentinel for not
// applicable.
func (c Coefficient) Stored() float64 {
	if !c.Applicable {
		return CorrelationSentinel
	}
	return c.Value
}

// String renders the coefficient, or "-" when not applicable.
func (c Coefficient) String() string {
	if !c.Applicable {
		return NotApplicableText
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// MarshalJSON encodes applicable coefficients as numbers and the rest as "-".
func (c Coefficient) MarshalJSON() ([]byte, error) {
	if !c.Applicable {
		return json.Marshal(NotApplicableText)
	}
	return json.Marshal(c.Value)
}

// MarshalYAML mirrors MarshalJSON.
func (c Coefficient) MarshalYAML() (any, error) {
	if !c.Applicable {
		return NotApplicableText, nil
	}
	return c.Value, nil
}

// CorrelationFinding is a row from the correlations table.
type CorrelationFinding struct {
	ID                  int64       `json:"id" yaml:"id"`
	DependentVariable   string      `json:"dependent_variable" yaml:"dependent_variable"`
	IndependentVariable string      `json:"independent_variable" yaml:"independent_variable"`
	Correlation2000     Coefficient `json:"correlation_2000" yaml:"correlation_2000"`
	Correlation2023     Coefficient `json:"correlation_2023" yaml:"correlation_2023"`
}

// CausalityFinding is a row from the Granger causalities table.
type CausalityFinding struct {
	ID                  int64  `json:"id" yaml:"id"`
	DependentVariable   string `json:"dependent_variable" yaml:"dependent_variable"`
	IndependentVariable string `json:"independent_variable" yaml:"independent_variable"`
	Causality           string `json:"causality" yaml:"causality"`
}
