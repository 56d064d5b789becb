// Package gate implements the keep-or-compensate protocol around a
// persisted optimization: measure a baseline, let the orchestrator persist
// its candidate, re-measure, and roll the candidate back if the score
// dropped.
package gate

import (
	"context"

	"semforge/internal/evaluate"
	"semforge/internal/logging"
	"semforge/internal/optimize"
	"semforge/internal/sampler"
	"semforge/internal/semtype"
	"semforge/internal/vector"
)

// Outcome is the gated result. Result always points at the better of
// Baseline and After; Persisted reports whether the candidate survived.
// DeltaF1 is after minus baseline whenever the post-change evaluation ran,
// so a rolled-back regression reports a negative delta.
type Outcome struct {
	Result       *evaluate.Result `json:"result"`
	Baseline     *evaluate.Result `json:"baseline"`
	After        *evaluate.Result `json:"after,omitempty"`
	Optimization *optimize.Result `json:"optimization,omitempty"`
	DeltaF1      float64          `json:"deltaF1"`
	Persisted    bool             `json:"persisted"`
}

// Gate runs the optimize-and-evaluate cycle with rollback.
type Gate struct {
	runner       *evaluate.Runner
	orchestrator *optimize.Orchestrator
	sampler      *sampler.Sampler
	registry     semtype.Registry
	index        vector.Index
	logger       logging.Logger
}

func New(runner *evaluate.Runner, orchestrator *optimize.Orchestrator, valueSampler *sampler.Sampler, registry semtype.Registry, index vector.Index, logger logging.Logger) *Gate {
	return &Gate{
		runner:       runner,
		orchestrator: orchestrator,
		sampler:      valueSampler,
		registry:     registry,
		index:        index,
		logger:       logging.OrNop(logger),
	}
}

// OptimizeAndEval measures the baseline, persists the optimization
// candidate, re-measures, and keeps the candidate only if F1 did not drop.
//
// Only a failed baseline is a hard error: without it there is nothing to
// gate against. Failures after that point roll back the candidate and
// return the baseline, because the contract is to return the best known
// metric, not to guarantee the optimization happened.
func (g *Gate) OptimizeAndEval(ctx context.Context, optReq optimize.Request, evalReq evaluate.Request) (*Outcome, error) {
	baseline, err := g.runner.Evaluate(ctx, evalReq)
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{Result: baseline, Baseline: baseline}

	optReq.Persist = true
	datasetCSV := optReq.DatasetCSV
	if datasetCSV == "" {
		datasetCSV = evalReq.DatasetCSV
	}
	samples := g.sampler.SampleColumns(datasetCSV, optReq.Columns, sampler.DefaultSampleLimit)

	optResult, err := g.orchestrator.Run(ctx, optReq, samples)
	if err != nil {
		g.logger.Warn("optimization failed, keeping baseline: %v", err)
		return outcome, nil
	}
	outcome.Optimization = optResult
	if !optResult.Persisted {
		g.logger.Info("no candidate persisted (%s), baseline stands", optResult.Rationale)
		return outcome, nil
	}

	after, err := g.runner.Evaluate(ctx, evalReq)
	if err != nil {
		g.logger.Warn("post-change evaluation failed, rolling back %s: %v", optResult.SemanticType, err)
		g.compensate(ctx, optResult)
		return outcome, nil
	}
	outcome.After = after
	outcome.DeltaF1 = after.F1 - baseline.F1

	if after.F1 >= baseline.F1 {
		outcome.Result = after
		outcome.Persisted = true
		g.logger.Info("kept %s: F1 %.3f -> %.3f", optResult.SemanticType, baseline.F1, after.F1)
		return outcome, nil
	}

	g.logger.Info("rolling back %s: F1 %.3f -> %.3f", optResult.SemanticType, baseline.F1, after.F1)
	g.compensate(ctx, optResult)
	return outcome, nil
}

// compensate deletes the candidate types this run created from the
// registry and the vector index. Delete failures are logged and swallowed;
// the caller still gets the correct baseline metric.
func (g *Gate) compensate(ctx context.Context, optResult *optimize.Result) {
	for _, name := range optResult.PersistedTypes() {
		if err := g.registry.Remove(ctx, name); err != nil {
			g.logger.Warn("compensating registry delete of %s failed: %v", name, err)
		}
		if g.index == nil {
			continue
		}
		if err := g.index.Remove(ctx, name); err != nil {
			g.logger.Warn("compensating index delete of %s failed: %v", name, err)
		}
	}
}
