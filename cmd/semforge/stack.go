package main

import (
	"fmt"

	"semforge/internal/config"
	"semforge/internal/coordinator"
	"semforge/internal/evaluate"
	"semforge/internal/gate"
	"semforge/internal/logging"
	"semforge/internal/optimize"
	"semforge/internal/sampler"
	"semforge/internal/semtype"
	"semforge/internal/vector"
)

// stack wires the full pipeline from one config: file-backed registry,
// persistent vector index, sampler, evaluation runner, orchestrator, gate
// and coordinator.
type stack struct {
	cfg          config.Config
	logger       logging.Logger
	registry     semtype.Registry
	index        vector.Index
	sampler      *sampler.Sampler
	runner       *evaluate.Runner
	orchestrator *optimize.Orchestrator
	gate         *gate.Gate
	coordinator  *coordinator.Coordinator
}

func buildStack(cfg config.Config) (*stack, error) {
	logger := logging.New("semforge", logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	registry, err := semtype.NewFileRegistry(cfg.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	embedder, err := vector.NewCachedEmbedder(vector.NewLocalEmbedder(), 4096)
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}
	index, err := vector.NewIndex(vector.Config{
		PersistPath: cfg.VectorPath,
		Collection:  cfg.VectorCollection,
	}, embedder)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}

	valueSampler := sampler.New(cfg.DatasetsRoot, logger)
	runner := evaluate.NewRunner(cfg.DatasetsRoot, registry, evaluate.NewRuleClassifier(), logger)
	orchestrator := optimize.NewOrchestrator(optimize.NewExampleSynthesizer(), registry, index, logger)
	pipelineGate := gate.New(runner, orchestrator, valueSampler, registry, index, logger)

	return &stack{
		cfg:          cfg,
		logger:       logger,
		registry:     registry,
		index:        index,
		sampler:      valueSampler,
		runner:       runner,
		orchestrator: orchestrator,
		gate:         pipelineGate,
		coordinator:  coordinator.New(pipelineGate, nil, logger),
	}, nil
}
