package optimize

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"semforge/internal/diagnose"
	"semforge/internal/errors"
	"semforge/internal/logging"
	"semforge/internal/sampler"
	"semforge/internal/semtype"
	"semforge/internal/vector"
)

// typeNamePrefix marks user-defined types; built-in profiler types never
// carry it.
const typeNamePrefix = "CUSTOM."

const maxTypeNameLength = 40

// autoLearnMargin widens the auto-learn window below the finite threshold:
// a borderline column still gets its suggested additions folded in before
// the final verdict.
const autoLearnMargin = 10

// Orchestrator runs the optimization cycle: synthesize a candidate,
// diagnose it per column, optionally fold suggested additions back in, and
// persist the winning finite or regex definitions.
type Orchestrator struct {
	synthesizer Synthesizer
	registry    semtype.Registry
	index       vector.Index
	retry       errors.RetryConfig
	logger      logging.Logger
}

func NewOrchestrator(synthesizer Synthesizer, registry semtype.Registry, index vector.Index, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		synthesizer: synthesizer,
		registry:    registry,
		index:       index,
		retry:       errors.DefaultRetryConfig(),
		logger:      logging.OrNop(logger),
	}
}

// Run diagnoses the synthesized candidate against the given column samples
// and returns the aggregate outcome. When req.Persist is set and at least
// one path qualified, the definitions are written to the registry and
// indexed for similarity search.
func (o *Orchestrator) Run(ctx context.Context, req Request, samples []sampler.ColumnSample) (*Result, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidate, err := o.synthesizer.Synthesize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("synthesize candidate: %w", err)
	}

	typeName := DeriveTypeName(req.TypeName, req.Description)

	// Without dataset columns the run is validated against the request's
	// own positive examples.
	if len(samples) == 0 {
		samples = []sampler.ColumnSample{{Column: typeName, Values: req.PositiveValues}}
	}
	result := &Result{
		SemanticType:   typeName,
		HeaderPatterns: candidate.HeaderPatterns,
	}

	params := req.params()
	finiteHits, regexHits := 0, 0
	for _, col := range samples {
		diag := diagnose.Diagnose(*candidate, col.Values, col.Column, params)
		if req.autoLearn() {
			diag = o.autoLearn(candidate, col, diag, params)
		}
		switch diag.DecisionReason {
		case diagnose.DecisionFiniteMatch:
			finiteHits++
		case diagnose.DecisionRegexMatch:
			regexHits++
		}
		result.Outcomes = append(result.Outcomes, PerColumnOutcome{ColumnName: col.Column, Diagnostics: diag})
	}

	headerPatterns := toHeaderRegExps(candidate.HeaderPatterns)
	if finiteHits > 0 {
		result.FinitePlugin = semtype.NewListType(typeName, req.Description, candidate.Members, req.FiniteThreshold, finitePriority)
		result.FinitePlugin.SetHeaderPatterns(headerPatterns)
	}
	if regexHits > 0 && len(candidate.Regexes) > 0 {
		result.RegexPlugin = semtype.NewRegexType(typeName+"_REGEX", req.Description, candidate.Regexes, req.RegexThreshold, regexPriority)
		result.RegexPlugin.SetHeaderPatterns(headerPatterns)
	}
	result.Rationale = rationale(result, len(samples), finiteHits, regexHits, params)

	if req.Persist {
		if err := o.persist(ctx, result); err != nil {
			return nil, err
		}
		result.Persisted = result.FinitePlugin != nil || result.RegexPlugin != nil
	}
	return result, nil
}

// autoLearn folds suggested additions into the finite member set when the
// column accepted or came close, then re-diagnoses. The extension is kept
// only if finite coverage does not regress; candidate is mutated so later
// columns and the persisted plugin see the grown list.
func (o *Orchestrator) autoLearn(candidate *diagnose.Candidate, col sampler.ColumnSample, diag diagnose.ColumnDiagnostics, params diagnose.Params) diagnose.ColumnDiagnostics {
	if len(diag.SuggestedAdditions) == 0 {
		return diag
	}
	borderline := diag.FiniteCoverage*100 >= float64(params.FiniteThreshold-autoLearnMargin)
	if diag.DecisionReason != diagnose.DecisionFiniteMatch && !borderline {
		return diag
	}

	extended := *candidate
	extended.Members = diagnose.ExtendMembers(candidate.Members, diag.SuggestedAdditions)
	rediag := diagnose.Diagnose(extended, col.Values, col.Column, params)
	if rediag.FiniteCoverage < diag.FiniteCoverage {
		return diag
	}
	o.logger.Debug("auto-learned %d additions for column %s", len(diag.SuggestedAdditions), col.Column)
	candidate.Members = extended.Members
	return rediag
}

func (o *Orchestrator) persist(ctx context.Context, result *Result) error {
	for _, plugin := range []*semtype.CustomSemanticType{result.FinitePlugin, result.RegexPlugin} {
		if plugin == nil {
			continue
		}
		err := errors.Retry(ctx, o.retry, func(ctx context.Context) error {
			addErr := o.registry.Add(ctx, plugin)
			if stderrors.Is(addErr, semtype.ErrExists) {
				addErr = o.registry.Update(ctx, plugin)
			}
			return addErr
		})
		if err != nil {
			return fmt.Errorf("persist %s: %w", plugin.SemanticType, err)
		}
		// Indexing is advisory; similarity search degrades without it but
		// the registry write already succeeded.
		if o.index != nil {
			if err := o.index.Index(ctx, plugin); err != nil {
				o.logger.Warn("index %s: %v", plugin.SemanticType, err)
			}
		}
		o.logger.Info("persisted %s (%s)", plugin.SemanticType, plugin.PluginType)
	}
	return nil
}

// DeriveTypeName resolves the registry name for a run. An explicit name is
// trusted verbatim apart from surrounding whitespace, so dotted registry
// names like ORDER.STATUS survive untouched. A name derived from the
// description is upper-cased, squashed to [A-Z0-9.], capped in length and,
// when it carries no namespace dot, prefixed.
func DeriveTypeName(explicit, description string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToUpper(strings.TrimSpace(description)) {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		case r == '.':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "UNNAMED"
	}

	if !strings.Contains(name, ".") {
		name = typeNamePrefix + name
	}
	if len(name) > maxTypeNameLength {
		name = name[:maxTypeNameLength]
		name = strings.TrimRight(name, "_.")
	}
	return name
}

func toHeaderRegExps(patterns []diagnose.HeaderPattern) []semtype.HeaderRegExp {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]semtype.HeaderRegExp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, semtype.HeaderRegExp{RegExp: p.Pattern, Confidence: p.Confidence})
	}
	return out
}

func rationale(result *Result, columns, finiteHits, regexHits int, params diagnose.Params) string {
	var b strings.Builder
	switch {
	case finiteHits > 0:
		fmt.Fprintf(&b, "finite list accepted on %d/%d columns (threshold %d%%)", finiteHits, columns, params.FiniteThreshold)
		if regexHits > 0 {
			fmt.Fprintf(&b, "; regex accepted on %d columns (threshold %d%%)", regexHits, params.RegexThreshold)
		}
	case regexHits > 0:
		fmt.Fprintf(&b, "regex accepted on %d/%d columns (threshold %d%%); finite list fell short", regexHits, columns, params.RegexThreshold)
	default:
		fmt.Fprintf(&b, "no column met the finite (%d%%) or regex (%d%%) acceptance thresholds", params.FiniteThreshold, params.RegexThreshold)
		for _, outcome := range result.Outcomes {
			if outcome.Diagnostics.DecisionReason == diagnose.DecisionInsufficientSamples {
				fmt.Fprintf(&b, "; column %s had only %d usable samples", outcome.ColumnName, outcome.Diagnostics.NonNullCount)
			}
		}
	}
	return b.String()
}
