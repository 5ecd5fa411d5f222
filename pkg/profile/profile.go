// Package profile summarizes a procurement CSV before loading: row and column
// counts, per-column missing values, numeric ranges, and the most frequent
// values per column. The report gives a quick read on data quality and which
// fields are worth indexing.
package profile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DefaultTopValues is how many frequent values are reported per column.
const DefaultTopValues = 10

// ValueCount is one entry in a column's frequency ranking.
type ValueCount struct {
	Value string `yaml:"value"`
	Count int    `yaml:"count"`
}

// NumericSummary is present only for columns where every non-missing value
// parses as a number.
type NumericSummary struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Mean float64 `yaml:"mean"`
}

// ColumnProfile summarizes one CSV column.
type ColumnProfile struct {
	Name      string          `yaml:"name"`
	Missing   int             `yaml:"missing"`
	Distinct  int             `yaml:"distinct"`
	Numeric   *NumericSummary `yaml:"numeric,omitempty"`
	TopValues []ValueCount    `yaml:"top_values,omitempty"`
}

// Report is the full profile of a CSV file.
type Report struct {
	Path    string          `yaml:"path"`
	Rows    int             `yaml:"rows"`
	Columns []ColumnProfile `yaml:"columns"`
}

// columnStats accumulates per-column state during the scan.
type columnStats struct {
	missing int
	counts  map[string]int

	numeric  bool
	numericN int
	sum      float64
	min      float64
	max      float64
}

func newColumnStats() *columnStats {
	return &columnStats{counts: make(map[string]int), numeric: true}
}

func (s *columnStats) observe(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		s.missing++
		return
	}
	s.counts[value]++

	if !s.numeric {
		return
	}
	// Prices come through with currency formatting.
	cleaned := strings.ReplaceAll(strings.TrimPrefix(value, "$"), ",", "")
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		s.numeric = false
		return
	}
	if s.numericN == 0 || n < s.min {
		s.min = n
	}
	if s.numericN == 0 || n > s.max {
		s.max = n
	}
	s.sum += n
	s.numericN++
}

// topValues ranks the column's values by count, descending, ties broken by
// value for stable output.
func (s *columnStats) topValues(n int) []ValueCount {
	ranked := make([]ValueCount, 0, len(s.counts))
	for value, count := range s.counts {
		ranked = append(ranked, ValueCount{Value: value, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Value < ranked[j].Value
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (s *columnStats) profile(name string, topN int) ColumnProfile {
	p := ColumnProfile{
		Name:      name,
		Missing:   s.missing,
		Distinct:  len(s.counts),
		TopValues: s.topValues(topN),
	}
	if s.numeric && s.numericN > 0 {
		p.Numeric = &NumericSummary{
			Min:  s.min,
			Max:  s.max,
			Mean: s.sum / float64(s.numericN),
		}
	}
	return p
}

// ProfileCSV scans a CSV file and builds its report. topN <= 0 uses the
// default.
func ProfileCSV(path string, topN int) (*Report, error) {
	if topN <= 0 {
		topN = DefaultTopValues
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	stats := make([]*columnStats, len(header))
	for i := range stats {
		stats[i] = newColumnStats()
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rows+2, err)
		}
		rows++
		for i := range stats {
			if i < len(record) {
				stats[i].observe(record[i])
			} else {
				// Short row: the trailing columns are missing.
				stats[i].missing++
			}
		}
	}

	report := &Report{Path: path, Rows: rows, Columns: make([]ColumnProfile, len(header))}
	for i, name := range header {
		report.Columns[i] = stats[i].profile(name, topN)
	}
	return report, nil
}
