package evaluate

import (
	"context"
	"regexp"
	"strings"

	"semforge/internal/diagnose"
	"semforge/internal/sampler"
	"semforge/internal/semtype"
)

// RuleClassifier applies registered list and regex types directly to column
// values. It stands in for a full profiling engine: a column is assigned
// the highest-priority type whose coverage clears that type's threshold and
// whose negative header guards do not fire.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

func (c *RuleClassifier) Classify(ctx context.Context, table *sampler.Table, types []*semtype.CustomSemanticType) (map[string]Prediction, error) {
	predictions := make(map[string]Prediction)
	for _, header := range table.Headers {
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		values := nonBlank(table.ColumnValues(header))
		if len(values) == 0 {
			continue
		}

		var best *semtype.CustomSemanticType
		var bestScore float64
		for _, semType := range types {
			score, ok := c.score(semType, header, values)
			if !ok {
				continue
			}
			if best == nil || score > bestScore ||
				(score == bestScore && semType.Priority > best.Priority) {
				best, bestScore = semType, score
			}
		}
		if best != nil {
			predictions[header] = Prediction{SemanticType: best.SemanticType, Confidence: bestScore / 100}
		}
	}
	return predictions, nil
}

// score returns a 0-100 confidence for assigning semType to the column, and
// whether the assignment qualifies at all.
func (c *RuleClassifier) score(semType *semtype.CustomSemanticType, header string, values []string) (float64, bool) {
	headerBoost := 0.0
	for _, hp := range semType.HeaderPatterns() {
		re, err := regexp.Compile(hp.RegExp)
		if err != nil || !re.MatchString(header) {
			continue
		}
		if hp.Confidence < 0 {
			return 0, false
		}
		if boost := float64(hp.Confidence) / 20; boost > headerBoost {
			headerBoost = boost
		}
	}

	var matched int
	switch semType.PluginType {
	case semtype.PluginList:
		members := make(map[string]struct{}, len(semType.Members()))
		for _, m := range semType.Members() {
			members[diagnose.Normalize(m)] = struct{}{}
		}
		for _, v := range values {
			if _, ok := members[diagnose.Normalize(v)]; ok {
				matched++
			}
		}
	case semtype.PluginRegex:
		patterns := make([]*regexp.Regexp, 0, len(semType.Patterns()))
		for _, p := range semType.Patterns() {
			if re, err := regexp.Compile("^(?:" + p + ")$"); err == nil {
				patterns = append(patterns, re)
			}
		}
		if len(patterns) == 0 {
			return 0, false
		}
		for _, v := range values {
			for _, re := range patterns {
				if re.MatchString(strings.TrimSpace(v)) {
					matched++
					break
				}
			}
		}
	default:
		return 0, false
	}

	coverage := 100 * float64(matched) / float64(len(values))
	if coverage < float64(semType.Threshold) {
		return 0, false
	}
	score := coverage + headerBoost
	if score > 100 {
		score = 100
	}
	return score, true
}

func nonBlank(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
