package optimize

import (
	"context"
	"fmt"
	"unicode"

	"semforge/internal/diagnose"
)

// Synthesizer proposes a detection rule candidate from a request's
// description and examples. Implementations may call out to an LLM; the
// orchestrator treats the candidate as opaque and validates it purely
// through diagnostics.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*diagnose.Candidate, error)
}

// exampleSynthesizer derives the candidate locally from the request's own
// examples: the canonical positive value set, shape regexes inferred from
// that set, and header patterns learned from header examples.
type exampleSynthesizer struct{}

func NewExampleSynthesizer() Synthesizer { return exampleSynthesizer{} }

func (exampleSynthesizer) Synthesize(ctx context.Context, req Request) (*diagnose.Candidate, error) {
	members := diagnose.BuildCanonicalList(req.PositiveValues, req.NegativeValues)
	if len(members) == 0 {
		return nil, fmt.Errorf("no positive value examples to synthesize from")
	}
	return &diagnose.Candidate{
		Members:        members,
		Regexes:        shapeRegexes(members),
		HeaderPatterns: diagnose.LearnHeaderPatterns(req.PositiveHeaders, req.NegativeHeaders),
	}, nil
}

// shapeRegexes infers value patterns from the canonical member shapes.
// Members are already upper-cased, so only three shape families apply:
// two-letter codes, three-letter codes, and short alphanumeric codes.
func shapeRegexes(members []string) []string {
	allAlpha2, allAlpha3, allAlnumShort := true, true, true
	for _, m := range members {
		alpha, alnum := true, true
		for _, r := range m {
			if !unicode.IsUpper(r) {
				alpha = false
			}
			if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
				alnum = false
			}
		}
		if !alpha || len(m) != 2 {
			allAlpha2 = false
		}
		if !alpha || len(m) != 3 {
			allAlpha3 = false
		}
		if !alnum || len(m) < 2 || len(m) > 6 {
			allAlnumShort = false
		}
	}

	switch {
	case allAlpha2:
		return []string{"^[A-Z]{2}$"}
	case allAlpha3:
		return []string{"^[A-Z]{3}$"}
	case allAlnumShort:
		return []string{"^[A-Z0-9]{2,6}$"}
	default:
		return nil
	}
}
