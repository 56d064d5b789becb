package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"semforge/internal/diagnose"
	"semforge/internal/optimize"
	"semforge/internal/sampler"
)

func newOptimizeCommand() *cobra.Command {
	var req optimize.Request
	var noAutoLearn bool

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Propose (and optionally persist) a semantic type from examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := buildStack(cfg)
			if err != nil {
				return err
			}

			if noAutoLearn {
				autoLearn := false
				req.AutoLearn = &autoLearn
			}

			var samples []sampler.ColumnSample
			if req.DatasetCSV != "" {
				samples = s.sampler.SampleColumns(req.DatasetCSV, req.Columns, cfg.SampleLimit)
			}

			result, err := s.orchestrator.Run(cmd.Context(), req, samples)
			if err != nil {
				return err
			}
			printOptimization(cmd, result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Description, "description", "", "natural language description of the type")
	flags.StringVar(&req.TypeName, "name", "", "explicit type name (derived from the description when empty)")
	flags.StringSliceVar(&req.PositiveValues, "positive", nil, "positive value example (repeatable)")
	flags.StringSliceVar(&req.NegativeValues, "negative", nil, "negative value example (repeatable)")
	flags.StringSliceVar(&req.PositiveHeaders, "positive-header", nil, "header that should match (repeatable)")
	flags.StringSliceVar(&req.NegativeHeaders, "negative-header", nil, "header that must not match (repeatable)")
	flags.StringVar(&req.DatasetCSV, "dataset", "", "dataset CSV to profile, relative to the datasets root")
	flags.StringSliceVar(&req.Columns, "column", nil, "target column (repeatable; all columns when empty)")
	flags.BoolVar(&req.RequireFinite, "require-finite", false, "reject regex-only matches")
	flags.BoolVar(&req.Persist, "persist", false, "write qualifying definitions to the registry")
	flags.IntVar(&req.MinSamples, "min-samples", 0, "minimum non-null samples per column")
	flags.IntVar(&req.FiniteThreshold, "finite-threshold", 0, "finite coverage acceptance percentage")
	flags.IntVar(&req.RegexThreshold, "regex-threshold", 0, "regex coverage acceptance percentage")
	flags.IntVar(&req.TopKUnmatched, "top-k", 0, "how many unmatched values to report")
	flags.BoolVar(&noAutoLearn, "no-auto-learn", false, "do not fold suggested additions into the candidate")
	return cmd
}

func printOptimization(cmd *cobra.Command, result *optimize.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", bold("type:"), cyan(result.SemanticType))
	fmt.Fprintf(out, "%s %s\n", bold("rationale:"), result.Rationale)

	for _, outcome := range result.Outcomes {
		diag := outcome.Diagnostics
		decision := string(diag.DecisionReason)
		switch diag.DecisionReason {
		case diagnose.DecisionFiniteMatch, diagnose.DecisionRegexMatch:
			decision = green(decision)
		case diagnose.DecisionInsufficientSamples:
			decision = yellow(decision)
		default:
			decision = red(decision)
		}
		fmt.Fprintf(out, "  %-24s %s  finite=%.2f regex=%.2f samples=%d\n",
			outcome.ColumnName, decision, diag.FiniteCoverage, diag.RegexCoverage, diag.NonNullCount)
		if len(diag.UnmatchedTop) > 0 {
			fmt.Fprintf(out, "    %s %v\n", gray("unmatched:"), diag.UnmatchedTop)
		}
		if len(diag.SuggestedAdditions) > 0 {
			fmt.Fprintf(out, "    %s %v\n", gray("suggested:"), diag.SuggestedAdditions)
		}
	}

	if result.FinitePlugin != nil {
		fmt.Fprintf(out, "%s finite list with %d members\n", green("plugin:"), len(result.FinitePlugin.Members()))
	}
	if result.RegexPlugin != nil {
		fmt.Fprintf(out, "%s regex %v\n", green("plugin:"), result.RegexPlugin.Patterns())
	}
	if result.Persisted {
		fmt.Fprintln(out, green("persisted to registry and vector index"))
	}
}
