package diagnose

import (
	"reflect"
	"testing"
)

func defaultParams() Params {
	return Params{MinSamples: 5, FiniteThreshold: 92, RegexThreshold: 96, TopKUnmatched: 10}
}

func repeat(value string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestDiagnoseFiniteMatch(t *testing.T) {
	candidate := Candidate{Members: []string{"OPEN", "SHIPPED", "CLOSED"}}
	samples := append(repeat("open", 5), append(repeat("Shipped", 4), "closed")...)

	diag := Diagnose(candidate, samples, "status", defaultParams())

	if diag.FiniteCoverage != 1.0 {
		t.Errorf("finite coverage: %v", diag.FiniteCoverage)
	}
	if diag.DecisionReason != DecisionFiniteMatch {
		t.Errorf("decision: %s", diag.DecisionReason)
	}
	if diag.NonNullCount != 10 {
		t.Errorf("non-null count: %d", diag.NonNullCount)
	}
}

// Scenario A: fewer non-null samples than minSamples ends in
// insufficient_samples regardless of coverage.
func TestDiagnoseInsufficientSamples(t *testing.T) {
	candidate := Candidate{Members: []string{"OPEN"}}
	samples := []string{"OPEN", "OPEN", "  ", "OPEN", "", "OPEN"}

	diag := Diagnose(candidate, samples, "status", defaultParams())

	if diag.NonNullCount != 4 {
		t.Fatalf("blank samples must not count: %d", diag.NonNullCount)
	}
	if diag.DecisionReason != DecisionInsufficientSamples {
		t.Errorf("decision: %s", diag.DecisionReason)
	}
}

func TestDiagnoseFinitePreferredOverRegex(t *testing.T) {
	// Both matchers cover everything; finite must win.
	candidate := Candidate{
		Members: []string{"US", "DE", "FR", "JP", "BR"},
		Regexes: []string{`[A-Z]{2}`},
	}
	samples := []string{"US", "DE", "FR", "JP", "BR"}

	diag := Diagnose(candidate, samples, "country", defaultParams())
	if diag.DecisionReason != DecisionFiniteMatch {
		t.Errorf("finite should win when both qualify, got %s", diag.DecisionReason)
	}
}

func TestDiagnoseRegexMatchAndFullAnchoring(t *testing.T) {
	candidate := Candidate{Regexes: []string{`[A-Z]{2}`}}
	samples := []string{"US", "DE", "FR", "JP", "BR"}

	diag := Diagnose(candidate, samples, "country", defaultParams())
	if diag.DecisionReason != DecisionRegexMatch {
		t.Errorf("decision: %s", diag.DecisionReason)
	}

	// "USA" must not count as a match for a two-letter pattern.
	diag = Diagnose(candidate, []string{"USA", "GER", "FRA", "JPN", "BRA"}, "country", defaultParams())
	if diag.RegexCoverage != 0 {
		t.Errorf("patterns must match whole values: %v", diag.RegexCoverage)
	}
	if diag.DecisionReason != DecisionRejected {
		t.Errorf("decision: %s", diag.DecisionReason)
	}
}

func TestDiagnoseRequireFiniteSuppressesRegexPath(t *testing.T) {
	candidate := Candidate{Regexes: []string{`[A-Z]{2}`}}
	samples := []string{"US", "DE", "FR", "JP", "BR"}

	params := defaultParams()
	params.RequireFinite = true
	diag := Diagnose(candidate, samples, "country", params)
	if diag.DecisionReason != DecisionRejected {
		t.Errorf("requireFinite must reject regex-only coverage, got %s", diag.DecisionReason)
	}
}

func TestDiagnoseUnmatchedRankingStable(t *testing.T) {
	candidate := Candidate{Members: []string{"OPEN"}}
	// PENDING x3, HOLD x2, then three singletons in first-seen order.
	samples := []string{
		"PENDING", "HOLD", "PENDING", "zeta", "alpha", "HOLD", "PENDING", "mid",
	}
	params := defaultParams()
	params.TopKUnmatched = 4

	diag := Diagnose(candidate, samples, "status", params)

	want := []string{"PENDING", "HOLD", "ZETA", "ALPHA"}
	if !reflect.DeepEqual(diag.UnmatchedTop, want) {
		t.Errorf("unmatched ranking: got %v want %v", diag.UnmatchedTop, want)
	}
	if diag.UnmatchedFrequencies["PENDING"] != 3 {
		t.Errorf("frequencies: %v", diag.UnmatchedFrequencies)
	}
}

func TestDiagnoseSuggestedAdditionsRespectSupport(t *testing.T) {
	candidate := Candidate{Members: []string{"OPEN"}}
	// 21 non-null values: "typo" sits at 1/21 < 5% support, PENDING well above.
	samples := append(repeat("OPEN", 12), append(repeat("PENDING", 8), "typo")...)

	diag := Diagnose(candidate, samples, "status", defaultParams())

	if !reflect.DeepEqual(diag.SuggestedAdditions, []string{"PENDING"}) {
		t.Errorf("suggestions: %v", diag.SuggestedAdditions)
	}
}

func TestDiagnoseDeterminism(t *testing.T) {
	candidate := Candidate{Members: []string{"A", "B"}, Regexes: []string{`[0-9]+`}}
	samples := []string{"A", "9", "x", "B", "x", "7", "y", "A"}

	first := Diagnose(candidate, samples, "col", defaultParams())
	for i := 0; i < 10; i++ {
		again := Diagnose(candidate, samples, "col", defaultParams())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestDiagnoseMonotonicity(t *testing.T) {
	samples := append(repeat("OPEN", 6), repeat("PENDING", 6)...)
	base := Diagnose(Candidate{Members: []string{"OPEN"}}, samples, "status", defaultParams())

	extended := ExtendMembers([]string{"OPEN"}, base.SuggestedAdditions)
	after := Diagnose(Candidate{Members: extended}, samples, "status", defaultParams())

	if after.FiniteCoverage < base.FiniteCoverage {
		t.Errorf("coverage regressed: %v -> %v", base.FiniteCoverage, after.FiniteCoverage)
	}
	if after.FiniteCoverage != 1.0 {
		t.Errorf("expected full coverage after extension, got %v", after.FiniteCoverage)
	}
}

func TestDiagnoseMalformedRegexIsZeroCoverage(t *testing.T) {
	candidate := Candidate{Regexes: []string{`[unclosed`}}
	diag := Diagnose(candidate, repeat("X", 6), "col", defaultParams())
	if diag.RegexCoverage != 0 {
		t.Errorf("malformed regex must contribute nothing: %v", diag.RegexCoverage)
	}
	if diag.DecisionReason != DecisionRejected {
		t.Errorf("decision: %s", diag.DecisionReason)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  open ":        "OPEN",
		"two  words":     "TWO WORDS",
		"\t":             "",
		"Ｆｕｌｌｗｉｄｔｈ":      "FULLWIDTH", // NFKC folds fullwidth forms
		"mixed ws": "MIXED WS",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildCanonicalList(t *testing.T) {
	got := BuildCanonicalList(
		[]string{"open", "OPEN", " closed", "shipped", "void"},
		[]string{"VOID"},
	)
	want := []string{"CLOSED", "OPEN", "SHIPPED"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("canonical list: got %v want %v", got, want)
	}
}
