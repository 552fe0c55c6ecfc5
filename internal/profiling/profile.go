// Package profiling computes summary statistics for dataset columns.
package profiling

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"goanalytics/domain/analysis"
)

// MinNumericShare is the share of non-blank cells that must parse as numbers
// for a column to count as numeric
const MinNumericShare = 0.9

// ProfileColumn computes summary statistics for one numeric column
func ProfileColumn(data []float64) (analysis.FieldProfile, error) {
	profile := analysis.FieldProfile{Count: len(data)}
	if len(data) == 0 {
		return profile, fmt.Errorf("no values to profile")
	}

	var err error
	if profile.Mean, err = stats.Mean(data); err != nil {
		return profile, err
	}
	if profile.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return profile, err
	}
	if profile.Min, err = stats.Min(data); err != nil {
		return profile, err
	}
	if profile.Max, err = stats.Max(data); err != nil {
		return profile, err
	}
	if profile.Median, err = stats.Median(data); err != nil {
		return profile, err
	}

	// Quartiles for the report's spread summary
	if profile.Q25, err = stats.Percentile(data, 25); err != nil {
		return profile, err
	}
	if profile.Q75, err = stats.Percentile(data, 75); err != nil {
		return profile, err
	}

	profile.Skewness = skewness(data)
	if math.IsNaN(profile.StdDev) {
		profile.StdDev = 0
	}
	return profile, nil
}

// skewness is zero for fewer than three values or constant columns
func skewness(data []float64) float64 {
	if len(data) < 3 {
		return 0
	}
	s := stat.Skew(data, nil)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// ParseNumber parses a spreadsheet cell as a number, accepting thousands
// separators and a trailing percent sign
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if percent {
		v /= 100
	}
	return v, true
}

// NumericValues parses cells and reports whether the column is numeric.
// Blank cells are ignored; a column with no values is not numeric.
func NumericValues(cells []string) ([]float64, bool) {
	values := make([]float64, 0, len(cells))
	nonBlank := 0
	for _, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		nonBlank++
		if v, ok := ParseNumber(c); ok {
			values = append(values, v)
		}
	}
	if nonBlank == 0 {
		return nil, false
	}
	return values, float64(len(values))/float64(nonBlank) >= MinNumericShare
}
