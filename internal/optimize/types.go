// Package optimize turns a type description plus examples into persisted
// finite-list or regex semantic type definitions, driven by per-column
// diagnostics.
package optimize

import (
	"fmt"

	"semforge/internal/diagnose"
	"semforge/internal/semtype"
)

// Default acceptance knobs applied when a request leaves them unset.
const (
	DefaultMinSamples      = 5
	DefaultFiniteThreshold = 92
	DefaultRegexThreshold  = 96
	DefaultTopKUnmatched   = 10

	finitePriority = 880
	regexPriority  = 820
)

// Request describes one optimization run.
type Request struct {
	Description     string   `json:"description"`
	TypeName        string   `json:"typeName,omitempty"`
	PositiveValues  []string `json:"positiveValues,omitempty"`
	NegativeValues  []string `json:"negativeValues,omitempty"`
	PositiveHeaders []string `json:"positiveHeaders,omitempty"`
	NegativeHeaders []string `json:"negativeHeaders,omitempty"`
	DatasetCSV      string   `json:"datasetCSV,omitempty"`
	Columns         []string `json:"columns,omitempty"`
	RequireFinite   bool     `json:"requireFinite,omitempty"`
	MinSamples      int      `json:"minSamples,omitempty"`
	FiniteThreshold int      `json:"finiteThreshold,omitempty"`
	RegexThreshold  int      `json:"regexThreshold,omitempty"`
	TopKUnmatched   int      `json:"topKUnmatched,omitempty"`
	Persist         bool     `json:"persist,omitempty"`
	AutoLearn       *bool    `json:"autoLearn,omitempty"`
}

// ApplyDefaults fills unset knobs in place. AutoLearn defaults to true.
func (r *Request) ApplyDefaults() {
	if r.MinSamples == 0 {
		r.MinSamples = DefaultMinSamples
	}
	if r.FiniteThreshold == 0 {
		r.FiniteThreshold = DefaultFiniteThreshold
	}
	if r.RegexThreshold == 0 {
		r.RegexThreshold = DefaultRegexThreshold
	}
	if r.TopKUnmatched == 0 {
		r.TopKUnmatched = DefaultTopKUnmatched
	}
	if r.AutoLearn == nil {
		autoLearn := true
		r.AutoLearn = &autoLearn
	}
}

// Validate checks the request invariants after defaults are applied.
func (r *Request) Validate() error {
	if r.Description == "" && r.TypeName == "" {
		return fmt.Errorf("request needs a description or an explicit type name")
	}
	if r.MinSamples < 1 {
		return fmt.Errorf("minSamples must be at least 1, got %d", r.MinSamples)
	}
	for name, v := range map[string]int{
		"finiteThreshold": r.FiniteThreshold,
		"regexThreshold":  r.RegexThreshold,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be within [0,100], got %d", name, v)
		}
	}
	if r.TopKUnmatched < 1 {
		return fmt.Errorf("topKUnmatched must be at least 1, got %d", r.TopKUnmatched)
	}
	return nil
}

func (r *Request) autoLearn() bool {
	return r.AutoLearn == nil || *r.AutoLearn
}

func (r *Request) params() diagnose.Params {
	return diagnose.Params{
		MinSamples:      r.MinSamples,
		FiniteThreshold: r.FiniteThreshold,
		RegexThreshold:  r.RegexThreshold,
		TopKUnmatched:   r.TopKUnmatched,
		RequireFinite:   r.RequireFinite,
	}
}

// PerColumnOutcome carries the diagnostics of one profiled column.
type PerColumnOutcome struct {
	ColumnName  string                     `json:"columnName"`
	Diagnostics diagnose.ColumnDiagnostics `json:"diagnostics"`
}

// Result is the outcome of one optimization run. FinitePlugin and
// RegexPlugin are set only for the paths that qualified; when Persisted is
// true they have been written to the registry and vector index.
type Result struct {
	SemanticType   string                      `json:"semanticType"`
	FinitePlugin   *semtype.CustomSemanticType `json:"finitePlugin,omitempty"`
	RegexPlugin    *semtype.CustomSemanticType `json:"regexPlugin,omitempty"`
	HeaderPatterns []diagnose.HeaderPattern    `json:"headerPatterns,omitempty"`
	Outcomes       []PerColumnOutcome          `json:"outcomes"`
	Rationale      string                      `json:"rationale"`
	Persisted      bool                        `json:"persisted"`
}

// PersistedTypes lists the registry names this run created, newest first.
func (r *Result) PersistedTypes() []string {
	if !r.Persisted {
		return nil
	}
	var names []string
	if r.RegexPlugin != nil {
		names = append(names, r.RegexPlugin.SemanticType)
	}
	if r.FinitePlugin != nil {
		names = append(names, r.FinitePlugin.SemanticType)
	}
	return names
}
