package sampler

import (
	"strings"

	"semforge/internal/logging"
)

// DefaultSampleLimit bounds how many values one profiling pass may pull.
const DefaultSampleLimit = 2000

// ColumnSample is the sampled values of one column.
type ColumnSample struct {
	Column string
	Values []string
}

// Sampler pulls bounded, deterministic value samples from dataset CSVs.
// All sampling methods swallow I/O failures and return empty samples;
// downstream diagnostics then degrade to insufficient_samples instead of
// aborting the whole optimization.
type Sampler struct {
	root   string
	logger logging.Logger
}

// New creates a sampler rooted at the datasets directory.
func New(root string, logger logging.Logger) *Sampler {
	return &Sampler{root: root, logger: logging.OrNop(logger)}
}

// SampleValues returns up to limit non-blank values read in file order. When
// columns is empty every column is sampled, interleaved row by row as the
// file is read.
func (s *Sampler) SampleValues(datasetCSV string, columns []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	table, err := LoadTable(s.root, datasetCSV)
	if err != nil {
		s.logger.Warn("sampling %s failed, returning empty sample: %v", datasetCSV, err)
		return nil
	}

	target := targetIndexes(table.Headers, columns)
	values := make([]string, 0, limit)
	for _, row := range table.Rows {
		for c := 0; c < len(table.Headers) && c < len(row); c++ {
			if target != nil && !target[c] {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			values = append(values, v)
			if len(values) >= limit {
				return values
			}
		}
	}
	return values
}

// SampleColumns groups up to limit values per column, preserving row order.
// Columns resolve case-insensitively; when columns is empty every header is
// sampled. Failures yield an empty result, never an error.
func (s *Sampler) SampleColumns(datasetCSV string, columns []string, limit int) []ColumnSample {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	table, err := LoadTable(s.root, datasetCSV)
	if err != nil {
		s.logger.Warn("sampling %s failed, returning empty sample: %v", datasetCSV, err)
		return nil
	}

	headers := columns
	if len(headers) == 0 {
		headers = table.Headers
	}

	out := make([]ColumnSample, 0, len(headers))
	for _, header := range headers {
		raw := table.ColumnValues(header)
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			values = append(values, v)
			if len(values) >= limit {
				break
			}
		}
		out = append(out, ColumnSample{Column: strings.TrimSpace(header), Values: values})
	}
	return out
}

// targetIndexes maps wanted column names to header indexes; nil means all.
func targetIndexes(headers, columns []string) map[int]bool {
	if len(columns) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(columns))
	for _, c := range columns {
		wanted[strings.ToLower(strings.TrimSpace(c))] = true
	}
	// Stays empty when no requested name matches a header; a misspelled
	// column must yield an empty sample, not silently widen to the whole
	// table.
	target := make(map[int]bool)
	for i, h := range headers {
		if wanted[strings.ToLower(strings.TrimSpace(h))] {
			target[i] = true
		}
	}
	return target
}
