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
	"github.com/pdiddy/relational-matrix/internal/presentation"
	"github.com/pdiddy/relational-matrix/pkg/types"
)

var findingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "Show the findings of one evidence source for a query",
	Long: `Findings lists the rows one source holds for a query, mapped for display:
impact label and colour, condition text in impact terms, and variable names
annotated where a secondary variable approximated them. A tally by direction
precedes the rows.

Literature findings include their year spans and AI research findings their
references. Use --export for the tab-separated export layout of effect rows.`,
	Example: `  relational-matrix findings --source literature --level all \
    --dependent "Level of development - GDP per capita" --independent "Trade openness"`,
	RunE: runFindings,
}

func runFindings(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("source")
	source, err := types.ParseSource(name)
	if err != nil {
		return err
	}
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	export, _ := cmd.Flags().GetBool("export")

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
	detail, err := engine.SourceDetail(ctx, queryKeyFromFlags(cmd), source)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if export {
		return formatExport(w, detail.Export)
	}
	return formatDetail(w, detail, format)
}

func formatDetail(w io.Writer, d evidence.Detail, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	}

	r := d.Result
	fmt.Fprintf(w, "%s\n", r.Source.Title())
	if !r.Queried {
		fmt.Fprintln(w, "Not applicable to this query.")
		return nil
	}
	fmt.Fprintf(w, "Verdict: %s  (findings: %d, classified: %d)\n\n", r.Verdict, r.Findings, r.Counts.Total())

	t := d.Tally
	fmt.Fprintf(w, "Positive %d | Positive under a conditionality %d | Negative %d | Negative under a conditionality %d\n",
		t.Positive, t.PositiveConditionality, t.Negative, t.NegativeConditionality)
	fmt.Fprintf(w, "Inconclusive %d | No effect %d | First positive %d | First negative %d\n\n",
		t.Inconclusive, t.NoEffect, t.FirstPositive, t.FirstNegative)

	switch {
	case len(d.Effects) > 0:
		fmt.Fprintf(w, "%-4s  %-20s  %-45s  %-30s  %s\n", "No.", "Years", "Impact", "Condition", "Reference")
		fmt.Fprintln(w, strings.Repeat("-", 130))
		for i, v := range d.Effects {
			fmt.Fprintf(w, "%-4d  %-20s  %-45s  %-30s  %s\n",
				i+1, presentation.Years(v.EffectFinding), v.Impact.Label,
				truncate(v.Condition, 30), truncate(v.Reference, 40))
		}
	case len(d.Correlations) > 0:
		fmt.Fprintf(w, "%-40s  %-40s  %8s  %8s  %s\n", "Dependent", "Independent", "2000", "2023", "Color")
		fmt.Fprintln(w, strings.Repeat("-", 115))
		for _, v := range d.Correlations {
			fmt.Fprintf(w, "%-40s  %-40s  %8s  %8s  %s\n",
				truncate(v.DependentVariable, 40), truncate(v.IndependentVariable, 40),
				v.Correlation2000, v.Correlation2023, v.Color)
		}
	case len(d.Causalities) > 0:
		fmt.Fprintf(w, "%-40s  %-40s  %-25s  %s\n", "Dependent", "Independent", "Causality", "Color")
		fmt.Fprintln(w, strings.Repeat("-", 120))
		for _, v := range d.Causalities {
			fmt.Fprintf(w, "%-40s  %-40s  %-25s  %s\n",
				truncate(v.DependentVariable, 40), truncate(v.IndependentVariable, 40), v.Causality, v.Color)
		}
	default:
		fmt.Fprintln(w, "No findings.")
	}
	return nil
}

// formatExport writes export rows as tab-separated values with a header.
func formatExport(w io.Writer, rows []presentation.ExportRow) error {
	if _, err := fmt.Fprintln(w, strings.Join(presentation.ExportHeaders, "\t")); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(r.Values(), "\t")); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	addQueryFlags(findingsCmd)
	addOutputFlags(findingsCmd)
	findingsCmd.Flags().String("source", "", "evidence source: estimated, literature, perceived, correlations, granger_causalities, ai_research")
	findingsCmd.Flags().Bool("export", false, "print effect rows in export layout (tab-separated)")
	findingsCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(findingsCmd)
}
