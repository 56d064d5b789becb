package evaluate

import (
	"context"
	"fmt"
	"strings"

	"semforge/internal/logging"
	"semforge/internal/sampler"
	"semforge/internal/semtype"
)

// maxEvalRows bounds how many data rows feed the classifier per run.
const maxEvalRows = 2000

// Runner scores the registry as it currently stands. It holds no state of
// its own; every Evaluate call reloads the dataset and relists the
// registry, so callers can run it before and after a registry change and
// compare.
type Runner struct {
	root       string
	registry   semtype.Registry
	classifier Classifier
	logger     logging.Logger
}

func NewRunner(root string, registry semtype.Registry, classifier Classifier, logger logging.Logger) *Runner {
	return &Runner{
		root:       root,
		registry:   registry,
		classifier: classifier,
		logger:     logging.OrNop(logger),
	}
}

// Evaluate classifies the dataset with the current registry and compares
// predictions against ground truth. Dataset and ground truth problems are
// hard errors; a wrong metric is worse than no metric.
func (r *Runner) Evaluate(ctx context.Context, req Request) (*Result, error) {
	table, err := sampler.LoadTable(r.root, req.DatasetCSV)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", req.DatasetCSV, err)
	}
	if len(table.Rows) > maxEvalRows {
		table.Rows = table.Rows[:maxEvalRows]
	}

	groundTruth, err := resolveGroundTruth(table, req.GroundTruthPairs)
	if err != nil {
		return nil, err
	}

	types, err := r.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registry: %w", err)
	}
	predictions, err := r.classifier.Classify(ctx, table, types)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", table.Name, err)
	}

	result := &Result{TotalColumns: len(table.Headers)}
	for _, header := range columnsInScope(table, req.Columns) {
		expected := groundTruth[header]
		predicted := ""
		if p, ok := predictions[header]; ok {
			predicted = p.SemanticType
		}
		if expected == "" && predicted == "" {
			continue
		}

		correct := expected != "" && predicted == expected
		switch {
		case correct:
			result.TruePositives++
		case predicted != "":
			result.FalsePositives++
			if expected != "" {
				result.FalseNegatives++
			}
		default:
			result.FalseNegatives++
		}
		result.Details = append(result.Details, PerColumn{
			ColumnName:    header,
			PredictedType: predicted,
			ExpectedType:  expected,
			Correct:       correct,
		})
	}
	result.EvaluatedColumns = len(result.Details)
	result.Precision, result.Recall, result.F1 = scores(result.TruePositives, result.FalsePositives, result.FalseNegatives)

	r.logger.Info("evaluated %s: %d columns, P=%.3f R=%.3f F1=%.3f",
		table.Name, result.EvaluatedColumns, result.Precision, result.Recall, result.F1)
	return result, nil
}

// scores computes precision, recall and F1 with zero-safe denominators.
func scores(tp, fp, fn int) (precision, recall, f1 float64) {
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

func resolveGroundTruth(table *sampler.Table, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return table.GroundTruth(), nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		column, expected, ok := strings.Cut(pair, "=")
		column = strings.TrimSpace(column)
		expected = strings.TrimSpace(expected)
		if !ok || column == "" || expected == "" {
			return nil, fmt.Errorf("malformed ground truth pair %q, want column=TYPE", pair)
		}
		out[column] = expected
	}
	return out, nil
}

func columnsInScope(table *sampler.Table, subset []string) []string {
	if len(subset) == 0 {
		headers := make([]string, 0, len(table.Headers))
		for _, h := range table.Headers {
			if strings.TrimSpace(h) != "" {
				headers = append(headers, strings.TrimSpace(h))
			}
		}
		return headers
	}
	out := make([]string, 0, len(subset))
	for _, c := range subset {
		if strings.TrimSpace(c) != "" {
			out = append(out, strings.TrimSpace(c))
		}
	}
	return out
}
