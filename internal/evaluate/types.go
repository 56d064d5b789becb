// Package evaluate scores the current semantic type registry against
// labeled ground truth and reports precision, recall and F1.
package evaluate

import (
	"context"

	"semforge/internal/sampler"
	"semforge/internal/semtype"
)

// Request identifies one dataset to score, optionally narrowed to a column
// subset. GroundTruthPairs override the dataset's own label rows; each pair
// is "column=EXPECTED.TYPE".
type Request struct {
	DatasetCSV       string   `json:"datasetCSV"`
	Columns          []string `json:"columns,omitempty"`
	GroundTruthPairs []string `json:"groundTruthPairs,omitempty"`
}

// PerColumn records one evaluated column.
type PerColumn struct {
	ColumnName    string `json:"columnName"`
	PredictedType string `json:"predictedType"`
	ExpectedType  string `json:"expectedType"`
	Correct       bool   `json:"correct"`
}

// Result is an F1 evaluation outcome. Precision, recall and F1 are zero
// whenever their denominator is zero.
type Result struct {
	Precision        float64     `json:"precision"`
	Recall           float64     `json:"recall"`
	F1               float64     `json:"f1"`
	TotalColumns     int         `json:"totalColumns"`
	EvaluatedColumns int         `json:"evaluatedColumns"`
	TruePositives    int         `json:"truePositives"`
	FalsePositives   int         `json:"falsePositives"`
	FalseNegatives   int         `json:"falseNegatives"`
	Details          []PerColumn `json:"details"`
}

// Prediction is one classifier verdict for a column.
type Prediction struct {
	SemanticType string
	Confidence   float64
}

// Classifier maps table columns to semantic types given a registry
// snapshot. Columns without a confident prediction are absent from the
// returned map.
type Classifier interface {
	Classify(ctx context.Context, table *sampler.Table, types []*semtype.CustomSemanticType) (map[string]Prediction, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, table *sampler.Table, types []*semtype.CustomSemanticType) (map[string]Prediction, error)

func (f ClassifierFunc) Classify(ctx context.Context, table *sampler.Table, types []*semtype.CustomSemanticType) (map[string]Prediction, error) {
	return f(ctx, table, types)
}
