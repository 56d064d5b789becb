package evaluate

import (
	"context"
	"testing"

	"semforge/internal/sampler"
	"semforge/internal/semtype"
)

func classifierTable() *sampler.Table {
	return &sampler.Table{
		Name:    "orders.csv",
		Headers: []string{"order_id", "status", "country"},
		Rows: [][]string{
			{"1", "OPEN", "US"},
			{"2", "shipped", "DE"},
			{"3", "OPEN", "FR"},
			{"4", "CLOSED", "usa"},
		},
	}
}

func TestRuleClassifierListType(t *testing.T) {
	statusType := semtype.NewListType("CUSTOM.ORDER_STATUS", "order states",
		[]string{"OPEN", "SHIPPED", "CLOSED"}, 92, 880)

	predictions, err := NewRuleClassifier().Classify(context.Background(), classifierTable(),
		[]*semtype.CustomSemanticType{statusType})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := predictions["status"]
	if !ok || got.SemanticType != "CUSTOM.ORDER_STATUS" {
		t.Fatalf("predictions: %+v", predictions)
	}
	if _, ok := predictions["order_id"]; ok {
		t.Error("order_id must not match the status list")
	}
}

func TestRuleClassifierRegexRequiresFullMatch(t *testing.T) {
	// "usa" fails the two-letter pattern, putting coverage at 75 which is
	// under the threshold.
	countryType := semtype.NewRegexType("CUSTOM.COUNTRY_ISO2", "country codes",
		[]string{"[A-Za-z]{2}"}, 90, 820)

	predictions, err := NewRuleClassifier().Classify(context.Background(), classifierTable(),
		[]*semtype.CustomSemanticType{countryType})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := predictions["country"]; ok {
		t.Fatalf("coverage below threshold must not predict: %+v", predictions)
	}

	countryType.Threshold = 70
	predictions, err = NewRuleClassifier().Classify(context.Background(), classifierTable(),
		[]*semtype.CustomSemanticType{countryType})
	if err != nil {
		t.Fatal(err)
	}
	if got := predictions["country"].SemanticType; got != "CUSTOM.COUNTRY_ISO2" {
		t.Errorf("predicted %q", got)
	}
}

func TestRuleClassifierNegativeHeaderGuard(t *testing.T) {
	statusType := semtype.NewListType("CUSTOM.ORDER_STATUS", "order states",
		[]string{"OPEN", "SHIPPED", "CLOSED"}, 92, 880)
	statusType.SetHeaderPatterns([]semtype.HeaderRegExp{
		{RegExp: "(?i)status", Confidence: -100, Mandatory: true},
	})

	predictions, err := NewRuleClassifier().Classify(context.Background(), classifierTable(),
		[]*semtype.CustomSemanticType{statusType})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := predictions["status"]; ok {
		t.Fatalf("negative guard must veto the column: %+v", predictions)
	}
}

func TestRuleClassifierPrefersHigherPriorityOnTie(t *testing.T) {
	finite := semtype.NewListType("CUSTOM.STATE_LIST", "states",
		[]string{"OPEN", "SHIPPED", "CLOSED"}, 90, 880)
	regex := semtype.NewRegexType("CUSTOM.STATE_REGEX", "states",
		[]string{"(?i)(open|shipped|closed)"}, 90, 820)

	predictions, err := NewRuleClassifier().Classify(context.Background(), classifierTable(),
		[]*semtype.CustomSemanticType{regex, finite})
	if err != nil {
		t.Fatal(err)
	}
	if got := predictions["status"].SemanticType; got != "CUSTOM.STATE_LIST" {
		t.Errorf("tie must go to the higher priority type, got %q", got)
	}
}

func TestRuleClassifierSkipsEmptyColumns(t *testing.T) {
	table := &sampler.Table{
		Headers: []string{"empty"},
		Rows:    [][]string{{""}, {"  "}},
	}
	predictions, err := NewRuleClassifier().Classify(context.Background(), table,
		[]*semtype.CustomSemanticType{semtype.NewListType("CUSTOM.X", "x", []string{"A"}, 50, 880)})
	if err != nil {
		t.Fatal(err)
	}
	if len(predictions) != 0 {
		t.Errorf("predictions: %+v", predictions)
	}
}
