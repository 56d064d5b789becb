package diagnose

import (
	"regexp"
	"sort"
)

// Decision is the acceptance outcome for one column. The set is open:
// downstream code must treat unknown values as rejections, not panic.
type Decision string

const (
	DecisionFiniteMatch         Decision = "finite_match"
	DecisionRegexMatch          Decision = "regex_match"
	DecisionRejected            Decision = "rejected"
	DecisionInsufficientSamples Decision = "insufficient_samples"
)

// minSupportShare is the fraction of non-null samples an unmatched value must
// reach before it is suggested as a finite-list extension. Singleton noise
// below this share stays in unmatchedTop but is never auto-learned.
const minSupportShare = 0.05

// Candidate is a proposed detection rule under diagnosis: an enumerated value
// set and/or value regexes, plus header patterns. Members must already be
// normalized (BuildCanonicalList does that).
type Candidate struct {
	Members        []string
	Regexes        []string
	HeaderPatterns []HeaderPattern
}

// Params are the acceptance knobs of one diagnosis pass.
type Params struct {
	MinSamples      int
	FiniteThreshold int // 0-100
	RegexThreshold  int // 0-100
	TopKUnmatched   int
	RequireFinite   bool
}

// ColumnDiagnostics is the scoring outcome for one column.
type ColumnDiagnostics struct {
	FiniteCoverage          float64        `json:"finiteCoverage"`
	RegexCoverage           float64        `json:"regexCoverage"`
	NonNullCount            int            `json:"nonNullCount"`
	SampleCount             int            `json:"sampleCount"`
	UnmatchedTop            []string       `json:"unmatchedTop"`
	UnmatchedFrequencies    map[string]int `json:"unmatchedFrequencies"`
	SuggestedAdditions      []string       `json:"suggestedAdditions"`
	SuggestedHeaderPatterns []string       `json:"suggestedHeaderPatterns"`
	DecisionReason          Decision       `json:"decisionReason"`
}

// Diagnose scores candidate against one column's raw samples. It is a pure
// function of its inputs: identical inputs always produce identical output.
//
// Decision order, first match wins: too few non-null samples →
// insufficient_samples; finite coverage meets the threshold → finite_match
// (finite wins over regex when both qualify, an exact enumeration is lower
// risk than a pattern); regex coverage meets the threshold → regex_match,
// unless RequireFinite suppresses the regex path; otherwise rejected.
func Diagnose(candidate Candidate, samples []string, headerText string, params Params) ColumnDiagnostics {
	normalized := NormalizeAll(samples)
	nonNull := len(normalized)

	diag := ColumnDiagnostics{
		NonNullCount:         nonNull,
		SampleCount:          len(samples),
		UnmatchedFrequencies: map[string]int{},
	}

	members := make(map[string]bool, len(candidate.Members))
	for _, m := range candidate.Members {
		members[m] = true
	}
	regexes := compileAll(candidate.Regexes)

	finiteMatches, regexMatches := 0, 0
	freq := make(map[string]int)
	var firstSeen []string
	for _, v := range normalized {
		inFinite := members[v]
		inRegex := matchesAny(regexes, v)
		if inFinite {
			finiteMatches++
		}
		if inRegex {
			regexMatches++
		}
		if !inFinite && !inRegex {
			if freq[v] == 0 {
				firstSeen = append(firstSeen, v)
			}
			freq[v]++
		}
	}

	if nonNull > 0 {
		diag.FiniteCoverage = float64(finiteMatches) / float64(nonNull)
		diag.RegexCoverage = float64(regexMatches) / float64(nonNull)
	}

	topK := params.TopKUnmatched
	if topK < 1 {
		topK = 1
	}
	ranked := make([]string, len(firstSeen))
	copy(ranked, firstSeen)
	sort.SliceStable(ranked, func(i, j int) bool { return freq[ranked[i]] > freq[ranked[j]] })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	diag.UnmatchedTop = ranked
	diag.UnmatchedFrequencies = freq

	for _, v := range ranked {
		if nonNull > 0 && float64(freq[v])/float64(nonNull) >= minSupportShare {
			diag.SuggestedAdditions = append(diag.SuggestedAdditions, v)
		}
	}
	diag.SuggestedHeaderPatterns = SuggestHeaderPatterns(headerText, candidate.HeaderPatterns)
	diag.DecisionReason = decide(diag, params)
	return diag
}

func decide(diag ColumnDiagnostics, params Params) Decision {
	if diag.NonNullCount < params.MinSamples {
		return DecisionInsufficientSamples
	}
	if diag.FiniteCoverage*100 >= float64(params.FiniteThreshold) {
		return DecisionFiniteMatch
	}
	if !params.RequireFinite && diag.RegexCoverage*100 >= float64(params.RegexThreshold) {
		return DecisionRegexMatch
	}
	return DecisionRejected
}

// compileAll compiles the valid patterns and drops the rest; a malformed
// regex contributes zero coverage instead of failing the whole diagnosis.
// Value patterns must match the entire cell, so they are anchored here.
func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile("^(?:" + p + ")$"); err == nil {
			out = append(out, re)
		}
	}
	return out
}

func matchesAny(regexes []*regexp.Regexp, value string) bool {
	for _, re := range regexes {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
