// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence computes verdicts for a query key. For each of the six
// sources it selects the matching rows, classifies them into impact
// buckets, and estimates a per-source verdict; the per-source counts are
// then combined into one overall verdict.
//
// Sources are evaluated concurrently. Each source writes only its own slot
// of the result, and the first repository failure cancels the rest: a
// computation either completes for all sources or returns an error.
package evidence

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/relational-matrix/internal/classify"
	"github.com/pdiddy/relational-matrix/internal/impact"
	"github.com/pdiddy/relational-matrix/internal/selector"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

// Engine evaluates query keys against an evidence repository. It holds no
// per-query state and is safe for concurrent use.
type Engine struct {
	sel      *selector.Selector
	cls      *classify.Classifier
	logger   *slog.Logger
	parallel int
}

// New returns an Engine reading from repo.
func New(repo selector.Repository, cfg types.EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	parallel := cfg.Parallel
	if parallel < 1 {
		parallel = 1
	}
	return &Engine{
		sel:      selector.New(repo),
		cls:      classify.New(logger),
		logger:   logger,
		parallel: parallel,
	}
}

// Selection holds the rows selected from one source. Exactly one of the
// row fields is used, depending on the source.
type Selection struct {
	Source types.Source

	// Queried is false when the source does not apply to the key.
	Queried bool

	Effects      []types.EffectFinding
	Correlations []types.PairGroup[types.CorrelationFinding]
	Causalities  []types.PairGroup[types.CausalityFinding]
}

// ComputeSourceResults evaluates all six sources for key and derives the
// overall verdict. An invalid key returns types.ErrInvalidQueryKey; any
// repository failure returns an error wrapping
// types.ErrRepositoryUnavailable and no partial result.
func (e *Engine) ComputeSourceResults(ctx context.Context, key types.QueryKey) (types.QueryResults, error) {
	if err := key.Validate(); err != nil {
		return types.QueryResults{}, err
	}

	results := types.QueryResults{Key: key}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallel)
	for i, src := range types.AllSources {
		i, src := i, src
		g.Go(func() error {
			sel, err := e.selectRows(gctx, src, key)
			if err != nil {
				return err
			}
			results.Sources[i] = e.evaluate(sel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error("evidence computation failed", "level", key.Level, "error", err)
		return types.QueryResults{}, err
	}

	results.Overall = ComputeOverallVerdict(results.Counts())

	e.logger.Info("evidence computed",
		"level", key.Level,
		"dependent", key.Dependent.Display(),
		"independent", key.Independent.Display(),
		"verdict", results.Overall.Label,
		"confidence", results.Overall.Confidence)
	return results, nil
}

// ComputeOverallVerdict combines per-source counts into the overall
// verdict.
func ComputeOverallVerdict(counts [types.NumSources]types.ClassifiedCounts) types.OverallVerdict {
	return impact.EstimateOverall(counts)
}

// selectRows collects the rows of one source for key.
func (e *Engine) selectRows(ctx context.Context, src types.Source, key types.QueryKey) (Selection, error) {
	sel := Selection{Source: src, Queried: true}
	var err error
	switch src {
	case types.SourceCorrelations:
		sel.Correlations, err = e.sel.Correlations(ctx, key)
	case types.SourceCausalities:
		sel.Causalities, err = e.sel.Causalities(ctx, key)
	default:
		sel.Effects, sel.Queried, err = e.sel.Effects(ctx, src, key)
	}
	if err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// evaluate classifies a selection and estimates its verdict.
func (e *Engine) evaluate(sel Selection) types.SourceResult {
	res := types.SourceResult{Source: sel.Source, Queried: sel.Queried}
	if !sel.Queried {
		res.Verdict = types.VerdictNotQueried
		return res
	}

	var cr classify.Result
	switch sel.Source {
	case types.SourceCorrelations:
		cr = e.cls.Correlations(sel.Correlations)
	case types.SourceCausalities:
		cr = e.cls.Causalities(sel.Causalities)
	default:
		cr = e.cls.Effects(sel.Source, sel.Effects)
	}

	res.Counts = cr.Counts
	res.Findings = cr.Findings
	res.Verdict = impact.EstimateSource(cr.Counts)

	e.logger.Debug("source evaluated",
		"source", sel.Source.String(),
		"findings", cr.Findings,
		"total", cr.Counts.Total(),
		"unrecognized", cr.Unrecognized,
		"verdict", res.Verdict)
	return res
}
