package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"semforge/internal/evaluate"
	"semforge/internal/optimize"
)

func newOptimizeAndEvalCommand() *cobra.Command {
	var optReq optimize.Request
	var evalReq evaluate.Request

	cmd := &cobra.Command{
		Use:   "optimize-and-eval",
		Short: "Run the full optimize, re-evaluate and keep-or-rollback cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := buildStack(cfg)
			if err != nil {
				return err
			}
			if evalReq.DatasetCSV == "" {
				evalReq.DatasetCSV = optReq.DatasetCSV
			}

			outcome, err := s.gate.OptimizeAndEval(cmd.Context(), optReq, evalReq)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s f1=%.3f\n", bold("baseline:"), outcome.Baseline.F1)
			if outcome.After != nil {
				fmt.Fprintf(out, "%s f1=%.3f\n", bold("after:"), outcome.After.F1)
			}
			if outcome.Persisted {
				fmt.Fprintf(out, "%s kept %s (deltaF1=%+.3f)\n", green("decision:"), cyan(outcome.Optimization.SemanticType), outcome.DeltaF1)
			} else {
				fmt.Fprintf(out, "%s baseline stands\n", yellow("decision:"))
			}
			printEvaluation(cmd, outcome.Result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&optReq.Description, "description", "", "natural language description of the type")
	flags.StringVar(&optReq.TypeName, "name", "", "explicit type name")
	flags.StringSliceVar(&optReq.PositiveValues, "positive", nil, "positive value example (repeatable)")
	flags.StringSliceVar(&optReq.NegativeValues, "negative", nil, "negative value example (repeatable)")
	flags.StringSliceVar(&optReq.PositiveHeaders, "positive-header", nil, "header that should match (repeatable)")
	flags.StringSliceVar(&optReq.NegativeHeaders, "negative-header", nil, "header that must not match (repeatable)")
	flags.StringVar(&optReq.DatasetCSV, "dataset", "", "dataset CSV, relative to the datasets root")
	flags.StringSliceVar(&optReq.Columns, "column", nil, "target column for profiling (repeatable)")
	flags.BoolVar(&optReq.RequireFinite, "require-finite", false, "reject regex-only matches")
	flags.StringVar(&evalReq.DatasetCSV, "eval-dataset", "", "evaluation dataset (defaults to --dataset)")
	flags.StringSliceVar(&evalReq.Columns, "eval-column", nil, "evaluation column subset (repeatable)")
	flags.StringSliceVar(&evalReq.GroundTruthPairs, "ground-truth", nil, "expected label as column=TYPE (repeatable)")
	cobra.CheckErr(cmd.MarkFlagRequired("dataset"))
	return cmd
}
