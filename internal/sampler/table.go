// Package sampler reads evaluator CSV datasets and pulls bounded value
// samples from them for rule profiling.
package sampler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is one loaded dataset. Evaluator CSVs carry two label rows before the
// header row: row 0 holds baseline type labels, row 1 the expected (custom)
// type labels, row 2 the column headers, data from row 3. Plain CSVs with a
// single header row are accepted as well.
type Table struct {
	Name     string
	Headers  []string
	Rows     [][]string
	Baseline []string // per-column baseline type labels, may be empty
	Expected []string // per-column expected type labels, may be empty
}

// ErrDatasetNotFound is returned when no CSV can be resolved for a reference.
var ErrDatasetNotFound = errors.New("dataset CSV not found")

// LoadTable resolves and parses a dataset CSV under root.
func LoadTable(root, datasetCSV string) (*Table, error) {
	if datasetCSV == "" {
		return nil, fmt.Errorf("empty dataset reference: %w", ErrDatasetNotFound)
	}
	path, err := Resolve(root, datasetCSV)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV: %s", path)
	}

	table := &Table{Name: filepath.Base(path)}
	if len(records) >= 3 {
		table.Baseline = records[0]
		table.Expected = records[1]
		table.Headers = records[2]
		table.Rows = records[3:]
	} else {
		table.Headers = records[0]
		table.Rows = records[1:]
	}
	return table, nil
}

// Resolve maps a dataset reference to a CSV path. Tries the exact relative
// path, then a `<name>_data.csv` variant, then the first CSV in the parent
// directory.
func Resolve(root, datasetCSV string) (string, error) {
	candidate := filepath.Join(root, filepath.Clean(datasetCSV))
	if fileExists(candidate) {
		return candidate, nil
	}

	if strings.HasSuffix(strings.ToLower(datasetCSV), ".csv") {
		alt := datasetCSV[:len(datasetCSV)-len(".csv")] + "_data.csv"
		altPath := filepath.Join(root, filepath.Clean(alt))
		if fileExists(altPath) {
			return altPath, nil
		}
	}

	dir := filepath.Dir(candidate)
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
				return filepath.Join(dir, entry.Name()), nil
			}
		}
	}

	return "", fmt.Errorf("%s under %s: %w", datasetCSV, root, ErrDatasetNotFound)
}

// GroundTruth derives column→expected-type labels from the table's label
// rows, preferring the expected (custom) row and falling back to baseline.
func (t *Table) GroundTruth() map[string]string {
	out := make(map[string]string)
	for i, header := range t.Headers {
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}
		expected := labelAt(t.Expected, i)
		if expected == "" {
			expected = labelAt(t.Baseline, i)
		}
		if expected != "" {
			out[header] = expected
		}
	}
	return out
}

// ColumnValues returns raw values of one column in row order.
func (t *Table) ColumnValues(header string) []string {
	idx := -1
	want := strings.ToLower(strings.TrimSpace(header))
	for i, h := range t.Headers {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			out = append(out, row[idx])
		}
	}
	return out
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return strings.TrimSpace(labels[i])
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
