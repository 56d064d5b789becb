package diagnose

import (
	"regexp"
	"strings"
	"testing"
)

func patternSet(patterns []HeaderPattern) map[string]int {
	out := make(map[string]int, len(patterns))
	for _, hp := range patterns {
		out[hp.Pattern] = hp.Confidence
	}
	return out
}

func TestLearnHeaderPatternsTokens(t *testing.T) {
	patterns := LearnHeaderPatterns(
		[]string{"order_status", "status", "Order Status"},
		[]string{"order id", "customer name"},
	)
	if len(patterns) == 0 {
		t.Fatal("expected learned patterns")
	}

	set := patternSet(patterns)
	statusToken := `(?i)\bstatus\b`
	conf, ok := set[statusToken]
	if !ok {
		t.Fatalf("missing token pattern %q in %v", statusToken, set)
	}
	if conf != 100 {
		t.Errorf("status appears in no negative header, want confidence 100, got %d", conf)
	}

	// "order" also matches "order id", so its precision drops below the
	// acceptance floor and only the negative guard form may remain.
	if conf, ok := set[`(?i)\border\b`]; ok && conf > 0 {
		t.Errorf("order token should be penalized by negatives, got %d", conf)
	}
}

func TestLearnHeaderPatternsNegativeGuards(t *testing.T) {
	patterns := LearnHeaderPatterns(
		[]string{"status"},
		[]string{"comment", "comment text", "free comment"},
	)
	set := patternSet(patterns)
	guard := `(?i)\bcomment\b`
	if conf, ok := set[guard]; !ok || conf != -100 {
		t.Errorf("expected guard %q with confidence -100: %v", guard, set)
	}
}

func TestLearnHeaderPatternsRankedAndBounded(t *testing.T) {
	patterns := LearnHeaderPatterns([]string{"order_status", "ship_status"}, nil)
	if len(patterns) > maxHeaderPatterns {
		t.Fatalf("pattern cap exceeded: %d", len(patterns))
	}
	for i := 1; i < len(patterns); i++ {
		if patterns[i].Confidence > patterns[i-1].Confidence {
			t.Fatalf("patterns not ranked by confidence: %v", patterns)
		}
	}
	// Every kept pattern must compile.
	for _, hp := range patterns {
		if _, err := regexp.Compile(hp.Pattern); err != nil {
			t.Errorf("pattern %q does not compile: %v", hp.Pattern, err)
		}
	}
}

func TestLearnHeaderPatternsEmpty(t *testing.T) {
	if patterns := LearnHeaderPatterns(nil, nil); patterns != nil {
		t.Errorf("expected nil for no examples, got %v", patterns)
	}
}

func TestSuggestHeaderPatterns(t *testing.T) {
	existing := []HeaderPattern{{Pattern: `(?i)\bstatus\b`, Confidence: 100}}

	suggestions := SuggestHeaderPatterns("shipment_status_code", existing)

	joined := strings.Join(suggestions, " ")
	if !strings.Contains(joined, "shipment") || !strings.Contains(joined, "code") {
		t.Errorf("uncovered tokens missing: %v", suggestions)
	}
	if strings.Contains(joined, `\bstatus\b`) {
		t.Errorf("covered token must not be re-suggested: %v", suggestions)
	}

	if got := SuggestHeaderPatterns("  ", existing); got != nil {
		t.Errorf("blank header yields nothing: %v", got)
	}
}
