// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package presentation

import (
	"strconv"
	"strings"

	"github.com/pdiddy/relational-matrix/pkg/types"
)

// ExportHeaders are the column titles of an exported result table, in the
// order of ExportRow.Values.
var ExportHeaders = []string{
	"No.", "Years", "Level of Analysis", "Other Level",
	"Dependent Variable", "Other Dependent",
	"Independent Variable", "Other Independent",
	"Impact", "Variable Condition", "Other Condition",
	"Type of Condition Effect", "Reference", "Sources/Notes",
}

// missing fills empty export cells.
const missing = "-"

// ExportRow is one line of an exported result table. Findings with several
// references produce one full line followed by continuation lines that
// carry only No., Reference, and Sources/Notes.
type ExportRow struct {
	No                    int    `json:"no" yaml:"no"`
	Years                 string `json:"years" yaml:"years"`
	Level                 string `json:"level" yaml:"level"`
	OtherLevel            string `json:"other_level" yaml:"other_level"`
	Dependent             string `json:"dependent" yaml:"dependent"`
	OtherDependent        string `json:"other_dependent" yaml:"other_dependent"`
	Independent           string `json:"independent" yaml:"independent"`
	OtherIndependent      string `json:"other_independent" yaml:"other_independent"`
	Impact                string `json:"impact" yaml:"impact"`
	VariableCondition     string `json:"variable_condition" yaml:"variable_condition"`
	OtherCondition        string `json:"other_condition" yaml:"other_condition"`
	TypeOfConditionEffect string `json:"type_of_condition_effect" yaml:"type_of_condition_effect"`
	Reference             string `json:"reference" yaml:"reference"`
	SourcesNotes          string `json:"sources_notes" yaml:"sources_notes"`

	// Continuation marks a line that only adds a further reference.
	Continuation bool `json:"continuation,omitempty" yaml:"continuation,omitempty"`
}

// Values returns the row's cells in ExportHeaders order. Continuation
// lines leave the finding columns blank.
func (r ExportRow) Values() []string {
	no := strconv.Itoa(r.No)
	if r.Continuation {
		return []string{no, "", "", "", "", "", "", "", "", "", "", "", r.Reference, r.SourcesNotes}
	}
	return []string{
		no, r.Years, r.Level, r.OtherLevel,
		r.Dependent, r.OtherDependent,
		r.Independent, r.OtherIndependent,
		r.Impact, r.VariableCondition, r.OtherCondition,
		r.TypeOfConditionEffect, r.Reference, r.SourcesNotes,
	}
}

// Years formats the periods of a finding: its year spans joined by "; ",
// else its single start and end year, else "".
func Years(f types.EffectFinding) string {
	var spans []string
	for _, s := range f.YearSpans {
		if s.Start != 0 && s.End != 0 {
			spans = append(spans, span(s.Start, s.End))
		}
	}
	if len(spans) > 0 {
		return strings.Join(spans, "; ")
	}
	if f.StartYear != 0 && f.EndYear != 0 {
		return span(f.StartYear, f.EndYear)
	}
	return ""
}

func span(start, end int) string {
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

// ExportRows flattens displayed effect findings into export lines,
// numbered from 1.
func ExportRows(views []EffectView) []ExportRow {
	var out []ExportRow
	for i, v := range views {
		base := ExportRow{
			No:                    i + 1,
			Years:                 Years(v.EffectFinding),
			Level:                 orMissing(v.Level),
			OtherLevel:            orMissing(v.LevelOther),
			Dependent:             orMissing(v.SelectionDependent),
			OtherDependent:        orMissing(v.OtherDependent),
			Independent:           orMissing(v.SelectionIndependent),
			OtherIndependent:      orMissing(v.OtherIndependent),
			Impact:                orMissing(v.Impact.Label),
			VariableCondition:     orMissing(v.VariableCondition),
			OtherCondition:        orMissing(v.OtherCondition),
			TypeOfConditionEffect: orMissing(v.Condition),
		}

		if len(v.References) == 0 {
			base.Reference = orMissing(v.Reference)
			base.SourcesNotes = orMissing(v.Notes)
			out = append(out, base)
			continue
		}

		for j, ref := range v.References {
			if j == 0 {
				base.Reference = orMissing(ref.Reference)
				base.SourcesNotes = orMissing(ref.Source)
				out = append(out, base)
				continue
			}
			out = append(out, ExportRow{
				No:           i + 1,
				Reference:    orMissing(ref.Reference),
				SourcesNotes: orMissing(ref.Source),
				Continuation: true,
			})
		}
	}
	return out
}
