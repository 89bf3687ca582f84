// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/relational-matrix/internal/evidence"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Compute per-source and overall verdicts for a query",
	Long: `Results evaluates all six evidence sources for a level of analysis and a
dependent/independent variable pair. For each source it prints the classified
counts (positive, negative, inconclusive, no effect), the total, and the source
verdict, followed by the overall verdict with its percentage and confidence.

Variables that are "Other" selections take their free text from
--dependent-other and --independent-other.`,
	Example: `  relational-matrix results --workbook evidence.xlsx --level national \
    --dependent "Unequal Income distribution (individuals or social groups)" \
    --independent "Economic growth"`,
	RunE: runResults,
}

func runResults(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := appConfig()
	if err != nil {
		return err
	}

	logger := slog.Default()
	ctx := cmd.Context()

	src, err := openDataSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.close()

	engine := evidence.New(src.repo, cfg.Engine, logger)
	results, err := engine.ComputeSourceResults(ctx, queryKeyFromFlags(cmd))
	if err != nil {
		return err
	}

	return formatResults(cmd.OutOrStdout(), results, format)
}

func formatResults(w io.Writer, results types.QueryResults, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "Level:       %s\n", results.Key.Level)
	fmt.Fprintf(w, "Dependent:   %s\n", results.Key.Dependent.Display())
	fmt.Fprintf(w, "Independent: %s\n\n", results.Key.Independent.Display())

	fmt.Fprintf(w, "%-26s  %8s  %8s  %12s  %9s  %5s  %s\n",
		"Source", "Positive", "Negative", "Inconclusive", "No Effect", "Total", "Verdict")
	fmt.Fprintln(w, strings.Repeat("-", 96))

	var sum types.ClassifiedCounts
	for _, r := range results.Sources {
		if !r.Queried {
			fmt.Fprintf(w, "%-26s  %8s  %8s  %12s  %9s  %5s  %s\n",
				r.Source.Title(), "", "", "", "", "", "not applicable")
			continue
		}
		c := r.Counts
		sum = sum.Add(c)
		fmt.Fprintf(w, "%-26s  %8d  %8d  %12d  %9d  %5d  %s\n",
			r.Source.Title(), c.Positive, c.Negative, c.Inconclusive, c.NoEffect, c.Total(), r.Verdict)
	}
	fmt.Fprintln(w, strings.Repeat("-", 96))
	fmt.Fprintf(w, "%-26s  %8d  %8d  %12d  %9d  %5d\n\n",
		"All sources", sum.Positive, sum.Negative, sum.Inconclusive, sum.NoEffect, sum.Total())

	o := results.Overall
	if o.Label == types.ImpactNone {
		fmt.Fprintln(w, "Overall: no evidence")
		return nil
	}
	fmt.Fprintf(w, "Overall: %s (%s%%, %s confidence)\n", o.Label, o.Percentage, o.Confidence)
	return nil
}

func init() {
	addQueryFlags(resultsCmd)
	addOutputFlags(resultsCmd)
	rootCmd.AddCommand(resultsCmd)
}
