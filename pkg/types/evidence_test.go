// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariable(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		other     string
		wantNames []string
		wantOther bool
	}{
		{
			name:      "plain variable",
			selection: "Economic growth",
			wantNames: []string{"Economic growth"},
		},
		{
			name:      "dual variable splits into primary and secondary",
			selection: "Size of Public sector - Government expenditure (% of GDP)",
			wantNames: []string{"Size of Public sector", "Government expenditure (% of GDP)"},
		},
		{
			name:      "dual variable without secondary",
			selection: "Level of development",
			wantNames: []string{"Level of development"},
		},
		{
			name:      "separator on a plain variable is kept",
			selection: "Trade - openness",
			wantNames: []string{"Trade - openness"},
		},
		{
			name:      "other selection keeps free text",
			selection: "Other (please specify)",
			other:     "  Remittances ",
			wantNames: []string{"Other (please specify)"},
			wantOther: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParseVariable(tt.selection, tt.other)
			assert.Equal(t, tt.wantNames, v.Names)
			assert.Equal(t, tt.wantOther, v.IsOther())
			if tt.wantOther {
				assert.Equal(t, "Remittances", v.Display())
			} else {
				assert.Equal(t, tt.wantNames[0], v.Display())
			}
		})
	}
}

func TestQueryKeyValidate(t *testing.T) {
	plain := ParseVariable("Economic growth", "")
	other := ParseVariable("Other", "Remittances")

	tests := []struct {
		name    string
		key     QueryKey
		field   string
		wantErr bool
	}{
		{name: "valid plain key", key: QueryKey{Level: LevelNational, Dependent: plain, Independent: plain}},
		{name: "valid all levels with other", key: QueryKey{Level: LevelAll, Dependent: other, Independent: plain}},
		{name: "missing level", key: QueryKey{Dependent: plain, Independent: plain}, field: "level", wantErr: true},
		{name: "unknown level", key: QueryKey{Level: "Global", Dependent: plain, Independent: plain}, field: "level", wantErr: true},
		{name: "missing dependent", key: QueryKey{Level: LevelSurvey, Independent: plain}, field: "dependent", wantErr: true},
		{
			name:    "other without free text",
			key:     QueryKey{Level: LevelSurvey, Dependent: plain, Independent: ParseVariable("Other", "")},
			field:   "independent",
			wantErr: true,
		},
		{
			name:    "free text on a plain selection is ambiguous",
			key:     QueryKey{Level: LevelSurvey, Dependent: ParseVariable("Economic growth", "x"), Independent: plain},
			field:   "dependent",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQueryKey))
			var qe *QueryKeyError
			require.True(t, errors.As(err, &qe))
			assert.Equal(t, tt.field, qe.Field)
		})
	}
}

func TestParseSource(t *testing.T) {
	for _, s := range AllSources {
		got, err := ParseSource(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)

		got, err = ParseSource(s.Table())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseSource("surveys")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestSourceIsEffect(t *testing.T) {
	assert.True(t, SourceEstimated.IsEffect())
	assert.True(t, SourceAIResearch.IsEffect())
	assert.False(t, SourceCorrelations.IsEffect())
	assert.False(t, SourceCausalities.IsEffect())
}

func TestCoefficientSentinel(t *testing.T) {
	c := CoefficientOf(10)
	assert.False(t, c.Applicable)
	assert.Equal(t, "-", c.String())
	assert.Equal(t, 0, c.Sign())

	c = CoefficientOf(-0.42)
	assert.True(t, c.Applicable)
	assert.Equal(t, "-0.42", c.String())
	assert.Equal(t, -1, c.Sign())

	assert.Equal(t, 0, CoefficientOf(0).Sign())
}

func TestCorrelationFindingJSON(t *testing.T) {
	f := CorrelationFinding{
		ID:                  7,
		DependentVariable:   "A",
		IndependentVariable: "B",
		Correlation2000:     CoefficientOf(10),
		Correlation2023:     CoefficientOf(0.5),
	}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"dependent_variable":"A","independent_variable":"B","correlation_2000":"-","correlation_2023":0.5}`, string(data))
}

func TestClassifiedCounts(t *testing.T) {
	a := ClassifiedCounts{Positive: 2, Negative: 1}
	b := ClassifiedCounts{Inconclusive: 3, NoEffect: 4}
	sum := a.Add(b)
	assert.Equal(t, ClassifiedCounts{Positive: 2, Negative: 1, Inconclusive: 3, NoEffect: 4}, sum)
	assert.Equal(t, 10, sum.Total())
}
