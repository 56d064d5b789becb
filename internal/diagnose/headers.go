package diagnose

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// HeaderPattern is a candidate header regexp with a precision-derived
// confidence percentage. Negative confidence marks a guard derived from
// negative examples: headers matching it must not receive the type.
type HeaderPattern struct {
	Pattern    string `json:"pattern"`
	Confidence int    `json:"confidence"`
}

const (
	// minHeaderConfidence drops candidates whose precision over the examples
	// falls below this percentage.
	minHeaderConfidence = 60
	// maxHeaderPatterns caps the learned set; broad coverage is wanted but
	// unbounded pattern lists slow every later header check.
	maxHeaderPatterns = 128
	// negativeGuardTokens is how many frequent negative tokens become guards.
	negativeGuardTokens = 3
)

// LearnHeaderPatterns derives header regexp candidates from positive and
// negative header examples: token vocabulary matches, id/code/number affix
// pairs, separator shape patterns. Candidates are scored by precision against
// the examples and the survivors are ranked by confidence.
func LearnHeaderPatterns(positiveHeaders, negativeHeaders []string) []HeaderPattern {
	pos := normalizeHeaders(positiveHeaders)
	neg := normalizeHeaders(negativeHeaders)
	if len(pos) == 0 && len(neg) == 0 {
		return nil
	}

	candidates := tokenCandidates(headerVocabulary(pos))
	candidates = append(candidates, shapeCandidates(pos)...)

	best := make(map[string]HeaderPattern)
	for _, pattern := range candidates {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		tp, fp := 0, 0
		for _, h := range pos {
			if re.MatchString(h) {
				tp++
			}
		}
		for _, h := range neg {
			if re.MatchString(h) {
				fp++
			}
		}
		if tp+fp == 0 {
			continue
		}
		confidence := int(float64(tp)/float64(tp+fp)*100 + 0.5)
		if confidence < minHeaderConfidence || tp < 1 {
			continue
		}
		if prev, ok := best[pattern]; !ok || confidence > prev.Confidence {
			best[pattern] = HeaderPattern{Pattern: pattern, Confidence: confidence}
		}
	}

	for _, token := range topTokens(neg, negativeGuardTokens) {
		guard := fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(token))
		best[guard] = HeaderPattern{Pattern: guard, Confidence: -100}
	}

	out := make([]HeaderPattern, 0, len(best))
	for _, hp := range best {
		out = append(out, hp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Pattern < out[j].Pattern
	})
	if len(out) > maxHeaderPatterns {
		out = out[:maxHeaderPatterns]
	}
	return out
}

// SuggestHeaderPatterns proposes templates for header tokens that none of the
// existing patterns already cover.
func SuggestHeaderPatterns(headerText string, existing []HeaderPattern) []string {
	header := strings.ToLower(strings.TrimSpace(headerText))
	if header == "" {
		return nil
	}
	compiled := make([]*regexp.Regexp, 0, len(existing))
	for _, hp := range existing {
		if hp.Confidence < 0 {
			continue
		}
		if re, err := regexp.Compile(hp.Pattern); err == nil {
			compiled = append(compiled, re)
		}
	}

	var out []string
	for _, token := range tokenize(header) {
		if len(token) < 2 {
			continue
		}
		covered := false
		for _, re := range compiled {
			if re.MatchString(token) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(token)))
		}
	}
	return out
}

func normalizeHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

var headerTokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

func tokenize(header string) []string {
	parts := headerTokenSplit.Split(header, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func headerVocabulary(headers []string) []string {
	seen := make(map[string]bool)
	var vocab []string
	for _, h := range headers {
		for _, token := range tokenize(h) {
			if len(token) >= 2 && !seen[token] {
				seen[token] = true
				vocab = append(vocab, token)
			}
		}
	}
	return vocab
}

func tokenCandidates(vocabulary []string) []string {
	var patterns []string
	for _, t := range vocabulary {
		patterns = append(patterns, fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(t)))
	}
	affixes := []string{"id", "code", "number", "num"}
	for _, t := range vocabulary {
		quoted := regexp.QuoteMeta(t)
		for _, affix := range affixes {
			patterns = append(patterns, fmt.Sprintf(`(?i)^%s[ _-]?%s$`, quoted, affix))
			patterns = append(patterns, fmt.Sprintf(`(?i)^%s[ _-]?%s$`, affix, quoted))
		}
	}
	return patterns
}

func shapeCandidates(positives []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(pattern string) {
		if !seen[pattern] {
			seen[pattern] = true
			out = append(out, pattern)
		}
	}
	for _, h := range positives {
		if strings.Contains(h, "_") {
			add(`(?i)^[a-z0-9]+(?:_[a-z0-9]+)+$`)
		}
		if strings.Contains(h, "-") {
			add(`(?i)^[a-z0-9]+(?:-[a-z0-9]+)+$`)
		}
		if strings.Contains(h, " ") {
			add(`(?i)^[a-z0-9]+(?: [a-z0-9]+)+$`)
		}
	}
	return out
}

func topTokens(headers []string, k int) []string {
	freq := make(map[string]int)
	var order []string
	for _, h := range headers {
		for _, t := range tokenize(h) {
			if freq[t] == 0 {
				order = append(order, t)
			}
			freq[t]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > k {
		order = order[:k]
	}
	return order
}
