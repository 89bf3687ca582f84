// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"fmt"

	"github.com/pdiddy/relational-matrix/internal/presentation"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Detail is the view of one source for a query key: its verdict, the
// per-direction tally, and the selected rows prepared for display.
type Detail struct {
	Result types.SourceResult `json:"result" yaml:"result"`
	Tally  presentation.Tally `json:"tally" yaml:"tally"`

	Effects      []presentation.EffectView      `json:"effects,omitempty" yaml:"effects,omitempty"`
	Correlations []presentation.CorrelationView `json:"correlations,omitempty" yaml:"correlations,omitempty"`
	Causalities  []presentation.CausalityView   `json:"causalities,omitempty" yaml:"causalities,omitempty"`

	// Export holds the effect rows in export layout.
	Export []presentation.ExportRow `json:"export,omitempty" yaml:"export,omitempty"`
}

// SourceDetail selects and evaluates one source for key and maps its rows
// for display. Literature rows carry their year spans and AI research rows
// their references.
func (e *Engine) SourceDetail(ctx context.Context, key types.QueryKey, src types.Source) (Detail, error) {
	if !src.Valid() {
		return Detail{}, fmt.Errorf("%w: %d", types.ErrUnknownSource, int(src))
	}
	if err := key.Validate(); err != nil {
		return Detail{}, err
	}

	sel, err := e.selectRows(ctx, src, key)
	if err != nil {
		return Detail{}, err
	}
	if src.IsEffect() && sel.Queried {
		if err := e.sel.AttachDetails(ctx, src, sel.Effects); err != nil {
			return Detail{}, err
		}
	}

	d := MapForDisplay(key, sel)
	d.Result = e.evaluate(sel)
	return d, nil
}

// MapForDisplay prepares a selection for display. It does not classify;
// Result is left for the caller.
func MapForDisplay(key types.QueryKey, sel Selection) Detail {
	d := Detail{Result: types.SourceResult{Source: sel.Source, Queried: sel.Queried}}
	switch sel.Source {
	case types.SourceCorrelations:
		d.Correlations = presentation.Correlations(key, sel.Correlations)
		d.Tally = presentation.TallyCorrelations(sel.Correlations)
	case types.SourceCausalities:
		d.Causalities = presentation.Causalities(key, sel.Causalities)
		d.Tally = presentation.TallyCausalities(sel.Causalities)
	default:
		d.Effects = presentation.Effects(sel.Source, sel.Effects)
		d.Tally = presentation.TallyEffects(sel.Source, sel.Effects)
		d.Export = presentation.ExportRows(d.Effects)
	}
	return d
}
