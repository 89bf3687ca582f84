// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package presentation

import (
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// approximated renders primary as approximated by the name found in the row.
func approximated(primary, rowName string) string {
	return primary + " (approximated by " + rowName + ")"
}

// RelabelCorrelation returns the first row of g with its variable names
// rewritten to the key's primary names, annotated with the secondary name
// that matched when one did. For reversed pairs the row's roles are
// swapped back before annotation.
//
// TODO: for reversed pairs where only one side matched a secondary name,
// the annotation lands on the opposite variable. This matches the labels
// users already know; confirm with the research team before changing it.
func RelabelCorrelation(key types.QueryKey, g types.PairGroup[types.CorrelationFinding]) types.CorrelationFinding {
	row := g.First()
	dep0 := key.Dependent.Primary()
	ind0 := key.Independent.Primary()

	depIndex, indIndex := g.DepIndex, g.IndIndex
	if g.Swapped {
		depIndex, indIndex = g.IndIndex, g.DepIndex
	}

	rowDep, rowInd := row.DependentVariable, row.IndependentVariable
	switch {
	case depIndex > 0 && indIndex > 0:
		if g.Swapped {
			row.DependentVariable = approximated(dep0, rowInd)
			row.IndependentVariable = approximated(ind0, rowDep)
		} else {
			row.DependentVariable = approximated(dep0, rowDep)
			row.IndependentVariable = approximated(ind0, rowInd)
		}
	case depIndex > 0:
		if g.Swapped {
			row.DependentVariable = dep0
			row.IndependentVariable = approximated(ind0, rowInd)
		} else {
			row.DependentVariable = approximated(dep0, rowDep)
			row.IndependentVariable = ind0
		}
	case indIndex > 0:
		if g.Swapped {
			row.DependentVariable = approximated(dep0, rowInd)
			row.IndependentVariable = ind0
		} else {
			row.DependentVariable = dep0
			row.IndependentVariable = approximated(ind0, rowInd)
		}
	default:
		if g.Swapped {
			row.DependentVariable = dep0
			row.IndependentVariable = ind0
		}
	}
	return row
}

// RelabelCausality returns the first row of g with each variable name that
// came from a secondary name annotated against the key's primary name.
func RelabelCausality(key types.QueryKey, g types.PairGroup[types.CausalityFinding]) types.CausalityFinding {
	row := g.First()
	if g.DepIndex > 0 {
		row.DependentVariable = approximated(key.Dependent.Primary(), row.DependentVariable)
	}
	if g.IndIndex > 0 {
		row.IndependentVariable = approximated(key.Independent.Primary(), row.IndependentVariable)
	}
	return row
}
