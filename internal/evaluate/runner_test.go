package evaluate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"semforge/internal/sampler"
	"semforge/internal/semtype"
)

const ordersCSV = `,ORDER.STATUS,
,CUSTOM.ORDER_STATUS,
order_id,status,amount
1,OPEN,10.50
2,SHIPPED,20.00
3,OPEN,
4,CLOSED,7.25
`

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func fixedClassifier(predictions map[string]Prediction) Classifier {
	return ClassifierFunc(func(ctx context.Context, table *sampler.Table, types []*semtype.CustomSemanticType) (map[string]Prediction, error) {
		return predictions, nil
	})
}

func TestEvaluateAllCorrect(t *testing.T) {
	root := writeDataset(t, "orders.csv", ordersCSV)
	runner := NewRunner(root, semtype.NewInMemoryRegistry(), fixedClassifier(map[string]Prediction{
		"status": {SemanticType: "CUSTOM.ORDER_STATUS", Confidence: 0.97},
	}), nil)

	result, err := runner.Evaluate(context.Background(), Request{DatasetCSV: "orders.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if result.TruePositives != 1 || result.FalsePositives != 0 || result.FalseNegatives != 0 {
		t.Fatalf("counts: TP=%d FP=%d FN=%d", result.TruePositives, result.FalsePositives, result.FalseNegatives)
	}
	if result.Precision != 1 || result.Recall != 1 || result.F1 != 1 {
		t.Errorf("scores: P=%v R=%v F1=%v", result.Precision, result.Recall, result.F1)
	}
	if result.TotalColumns != 3 || result.EvaluatedColumns != 1 {
		t.Errorf("columns: total=%d evaluated=%d", result.TotalColumns, result.EvaluatedColumns)
	}
	if len(result.Details) != 1 || !result.Details[0].Correct || result.Details[0].ColumnName != "status" {
		t.Errorf("details: %+v", result.Details)
	}
}

func TestEvaluateWrongPredictionCountsBothWays(t *testing.T) {
	root := writeDataset(t, "orders.csv", ordersCSV)
	runner := NewRunner(root, semtype.NewInMemoryRegistry(), fixedClassifier(map[string]Prediction{
		"status": {SemanticType: "CUSTOM.COUNTRY", Confidence: 0.95},
	}), nil)

	result, err := runner.Evaluate(context.Background(), Request{DatasetCSV: "orders.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if result.TruePositives != 0 || result.FalsePositives != 1 || result.FalseNegatives != 1 {
		t.Fatalf("counts: TP=%d FP=%d FN=%d", result.TruePositives, result.FalsePositives, result.FalseNegatives)
	}
	if result.F1 != 0 {
		t.Errorf("F1 must be zero when TP is zero, got %v", result.F1)
	}
}

func TestEvaluateMissedColumnIsFalseNegative(t *testing.T) {
	root := writeDataset(t, "orders.csv", ordersCSV)
	runner := NewRunner(root, semtype.NewInMemoryRegistry(), fixedClassifier(nil), nil)

	result, err := runner.Evaluate(context.Background(), Request{DatasetCSV: "orders.csv"})
	if err != nil {
		t.Fatal(err)
	}
	if result.FalseNegatives != 1 || result.FalsePositives != 0 {
		t.Fatalf("counts: FP=%d FN=%d", result.FalsePositives, result.FalseNegatives)
	}
	if result.Precision != 0 || result.Recall != 0 || result.F1 != 0 {
		t.Errorf("scores must be zero: P=%v R=%v F1=%v", result.Precision, result.Recall, result.F1)
	}
}

func TestEvaluateSpuriousPredictionIsFalsePositive(t *testing.T) {
	root := writeDataset(t, "orders.csv", ordersCSV)
	runner := NewRunner(root, semtype.NewInMemoryRegistry(), fixedClassifier(map[string]Prediction{
		"status": {SemanticType: "CUSTOM.ORDER_STATUS"},
		"amount": {SemanticType: "CUSTOM.AMOUNT"},
	}), nil)

	result, err := runner.Evaluate(context.Background(), Request{DatasetCSV: "orders.csv"})
	if err != nil {
		t.Fatal(err)
	}
	// amount has no expected label, so its prediction is a false positive
	// without a matching false negative.
	if result.TruePositives != 1 || result.FalsePositives != 1 || result.FalseNegatives != 0 {
		t.Fatalf("counts: TP=%d FP=%d FN=%d", result.TruePositives, result.FalsePositives, result.FalseNegatives)
	}
	if result.Precision != 0.5 || result.Recall != 1 {
		t.Errorf("scores: P=%v R=%v", result.Precision, result.Recall)
	}
}

func TestEvaluateGroundTruthPairsOverrideLabels(t *testing.T) {
	root := writeDataset(t, "orders.csv", ordersCSV)
	runner := NewRunner(root, semtype.NewInMemoryRegistry(), fixedClassifier(map[string]Prediction{
		"amount": {SemanticType: "CUSTOM.MONEY"},
	}), nil)

	result, err := runner.Evaluate(context.Background(), Request{
		DatasetCSV:       "orders.csv",
		GroundTruthPairs: []string{"amount=CUSTOM.MONEY"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.TruePositives != 1 || result.FalseNegatives != 0 {
		t.Fatalf("counts: TP=%d FN=%d", result.TruePositives, result.FalseNegatives)
	}
}

func TestEvaluateMalformedGroundTruthPair(t *testing.T) {
	root := writeDataset(t, "orders.csv", ordersCSV)
	runner := NewRunner(root, semtype.NewInMemoryRegistry(), fixedClassifier(nil), nil)

	_, err := runner.Evaluate(context.Background(), Request{
		DatasetCSV:       "orders.csv",
		GroundTruthPairs: []string{"statusCUSTOM.ORDER_STATUS"},
	})
	if err == nil {
		t.Fatal("expected error for malformed pair")
	}
}

func TestEvaluateMissingDatasetIsHardError(t *testing.T) {
	runner := NewRunner(t.TempDir(), semtype.NewInMemoryRegistry(), fixedClassifier(nil), nil)

	_, err := runner.Evaluate(context.Background(), Request{DatasetCSV: "nope/missing.csv"})
	if !errors.Is(err, sampler.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestEvaluateColumnSubset(t *testing.T) {
	root := writeDataset(t, "orders.csv", ordersCSV)
	runner := NewRunner(root, semtype.NewInMemoryRegistry(), fixedClassifier(map[string]Prediction{
		"status": {SemanticType: "CUSTOM.ORDER_STATUS"},
		"amount": {SemanticType: "CUSTOM.MONEY"},
	}), nil)

	result, err := runner.Evaluate(context.Background(), Request{
		DatasetCSV: "orders.csv",
		Columns:    []string{"status"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.EvaluatedColumns != 1 || result.FalsePositives != 0 {
		t.Fatalf("subset must exclude amount: evaluated=%d FP=%d", result.EvaluatedColumns, result.FalsePositives)
	}
}

func TestScoresZeroSafe(t *testing.T) {
	cases := []struct {
		tp, fp, fn int
		p, r, f1   float64
	}{
		{0, 0, 0, 0, 0, 0},
		{0, 5, 0, 0, 0, 0},
		{0, 0, 5, 0, 0, 0},
		{3, 1, 0, 0.75, 1, 6.0 / 7.0},
		{2, 2, 2, 0.5, 0.5, 0.5},
	}
	for _, tc := range cases {
		p, r, f1 := scores(tc.tp, tc.fp, tc.fn)
		if p != tc.p || r != tc.r || f1 != tc.f1 {
			t.Errorf("scores(%d,%d,%d) = %v,%v,%v want %v,%v,%v",
				tc.tp, tc.fp, tc.fn, p, r, f1, tc.p, tc.r, tc.f1)
		}
	}
}
