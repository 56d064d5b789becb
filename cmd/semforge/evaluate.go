package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"semforge/internal/evaluate"
)

func newEvaluateCommand() *cobra.Command {
	var req evaluate.Request

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the current registry against labeled ground truth",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := buildStack(cfg)
			if err != nil {
				return err
			}

			result, err := s.runner.Evaluate(cmd.Context(), req)
			if err != nil {
				return err
			}
			printEvaluation(cmd, result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.DatasetCSV, "dataset", "", "dataset CSV to score, relative to the datasets root")
	flags.StringSliceVar(&req.Columns, "column", nil, "column subset (repeatable; all columns when empty)")
	flags.StringSliceVar(&req.GroundTruthPairs, "ground-truth", nil, "expected label as column=TYPE (repeatable)")
	cobra.CheckErr(cmd.MarkFlagRequired("dataset"))
	return cmd
}

func printEvaluation(cmd *cobra.Command, result *evaluate.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s precision=%.3f recall=%.3f f1=%s\n",
		bold("scores:"), result.Precision, result.Recall, bold(fmt.Sprintf("%.3f", result.F1)))
	fmt.Fprintf(out, "%s TP=%d FP=%d FN=%d over %d/%d columns\n",
		bold("counts:"), result.TruePositives, result.FalsePositives, result.FalseNegatives,
		result.EvaluatedColumns, result.TotalColumns)

	for _, detail := range result.Details {
		mark := red("✗")
		if detail.Correct {
			mark = green("✓")
		}
		predicted := detail.PredictedType
		if predicted == "" {
			predicted = gray("(none)")
		}
		fmt.Fprintf(out, "  %s %-24s predicted=%s expected=%s\n", mark, detail.ColumnName, predicted, detail.ExpectedType)
	}
}
