// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workbook loads evidence from an .xlsx workbook. Each evidence
// table is a sheet named after the table, with column names in the first
// row. Sheets that are absent load as empty tables.
package workbook

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/relational-matrix/internal/repository"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Load reads every evidence sheet of the workbook at path.
func Load(path string, logger *slog.Logger) (*repository.Dataset, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("workbook %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	read := func(sheet string) ([]record, error) {
		if !present[sheet] {
			logger.Warn("workbook sheet missing, treating as empty", "sheet", sheet)
			return nil, nil
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		return records(sheet, rows), nil
	}

	ds := repository.NewDataset()

	for _, src := range types.AllSources {
		if !src.IsEffect() {
			continue
		}
		recs, err := read(src.Table())
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			finding, err := rec.effect()
			if err != nil {
				return nil, err
			}
			ds.Effects[src] = append(ds.Effects[src], finding)
		}
	}

	recs, err := read(types.SourceCorrelations.Table())
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		c, err := rec.correlation()
		if err != nil {
			return nil, err
		}
		ds.Correlations = append(ds.Correlations, c)
	}

	if recs, err = read(types.SourceCausalities.Table()); err != nil {
		return nil, err
	}
	for _, rec := range recs {
		c, err := rec.causality()
		if err != nil {
			return nil, err
		}
		ds.Causalities = append(ds.Causalities, c)
	}

	if recs, err = read(repository.TableYearSpans); err != nil {
		return nil, err
	}
	for _, rec := range recs {
		id, err := rec.wholeID("index")
		if err != nil {
			return nil, err
		}
		start, err := rec.whole("start_year")
		if err != nil {
			return nil, err
		}
		end, err := rec.whole("end_year")
		if err != nil {
			return nil, err
		}
		ds.YearSpans[id] = append(ds.YearSpans[id], types.YearSpan{Start: start, End: end})
	}

	if recs, err = read(repository.TableReferences); err != nil {
		return nil, err
	}
	for _, rec := range recs {
		id, err := rec.wholeID("query_id")
		if err != nil {
			return nil, err
		}
		ds.References[id] = append(ds.References[id], types.Reference{
			Reference: rec.str("reference"),
			Source:    rec.str("source"),
		})
	}

	total := 0
	for _, n := range ds.Rows() {
		total += n
	}
	logger.Info("workbook loaded", "path", path, "rows", total)
	return ds, nil
}

// record is one data row keyed by header name.
type record struct {
	sheet  string
	row    int
	values map[string]string
}

// records maps the data rows of a sheet to their headers. Fully blank rows
// are dropped.
func records(sheet string, rows [][]string) []record {
	if len(rows) == 0 {
		return nil
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var out []record
	for i := 1; i < len(rows); i++ {
		values := make(map[string]string, len(headers))
		blank := true
		for j, cell := range rows[i] {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				blank = false
			}
			values[headers[j]] = cell
		}
		if blank {
			continue
		}
		// Spreadsheet rows are 1-based and the header occupies row 1.
		out = append(out, record{sheet: sheet, row: i + 1, values: values})
	}
	return out
}

func (r record) str(col string) string {
	return r.values[col]
}

func (r record) fail(col string, err error) error {
	return fmt.Errorf("sheet %s row %d column %s: %w", r.sheet, r.row, col, err)
}

// whole parses a whole number, accepting the "1990.0" form spreadsheets
// produce for numeric cells. Empty cells are zero.
func (r record) whole(col string) (int, error) {
	v := r.values[col]
	if v == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, r.fail(col, fmt.Errorf("not a whole number: %q", v))
	}
	return int(f), nil
}

func (r record) wholeID(col string) (int64, error) {
	n, err := r.whole(col)
	return int64(n), err
}

// id returns the id column, falling back to the spreadsheet row number.
func (r record) id() (int64, error) {
	if r.values["id"] == "" {
		return int64(r.row), nil
	}
	return r.wholeID("id")
}

func (r record) flag(col string) (bool, error) {
	v := strings.ToLower(r.values[col])
	switch v {
	case "":
		return false, nil
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, r.fail(col, err)
	}
	return b, nil
}

// coefficient parses a correlation cell. Empty cells and the sentinel are
// not applicable.
func (r record) coefficient(col string) (types.Coefficient, error) {
	v := r.values[col]
	if v == "" || v == types.NotApplicableText {
		return types.Coefficient{}, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return types.Coefficient{}, r.fail(col, err)
	}
	return types.CoefficientOf(f), nil
}

func (r record) effect() (types.EffectFinding, error) {
	id, err := r.id()
	if err != nil {
		return types.EffectFinding{}, err
	}
	start, err := r.whole("start_year")
	if err != nil {
		return types.EffectFinding{}, err
	}
	end, err := r.whole("end_year")
	if err != nil {
		return types.EffectFinding{}, err
	}
	multi, err := r.flag("multiple_year_spans")
	if err != nil {
		return types.EffectFinding{}, err
	}
	return types.EffectFinding{
		ID:                    id,
		Level:                 r.str("level_of_analysis"),
		LevelOther:            r.str("level_of_analysis_other"),
		SelectionDependent:    r.str("selection_dependent"),
		OtherDependent:        r.str("other_dependent"),
		SelectionIndependent:  r.str("selection_independent"),
		OtherIndependent:      r.str("other_independent"),
		EffectDirection:       r.str("effect_direction"),
		VariableCondition:     r.str("variable_condition"),
		OtherCondition:        r.str("other_condition"),
		TypeOfConditionEffect: r.str("type_of_condition_effect"),
		Reference:             r.str("reference"),
		Notes:                 r.str("notes"),
		StartYear:             start,
		EndYear:               end,
		MultipleYearSpans:     multi,
	}, nil
}

func (r record) correlation() (types.CorrelationFinding, error) {
	id, err := r.id()
	if err != nil {
		return types.CorrelationFinding{}, err
	}
	c2000, err := r.coefficient("correlation_2000")
	if err != nil {
		return types.CorrelationFinding{}, err
	}
	c2023, err := r.coefficient("correlation_2023")
	if err != nil {
		return types.CorrelationFinding{}, err
	}
	return types.CorrelationFinding{
		ID:                  id,
		DependentVariable:   r.str("dependent_variable"),
		IndependentVariable: r.str("independent_variable"),
		Correlation2000:     c2000,
		Correlation2023:     c2023,
	}, nil
}

func (r record) causality() (types.CausalityFinding, error) {
	id, err := r.id()
	if err != nil {
		return types.CausalityFinding{}, err
	}
	return types.CausalityFinding{
		ID:                  id,
		DependentVariable:   r.str("dependent_variable"),
		IndependentVariable: r.str("independent_variable"),
		Causality:           r.str("causality"),
	}, nil
}
