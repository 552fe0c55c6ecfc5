package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileColumn_Summary(t *testing.T) {
	p, err := ProfileColumn([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, 5, p.Count)
	assert.InDelta(t, 3.0, p.Mean, 1e-9)
	assert.InDelta(t, 1.5811, p.StdDev, 1e-4)
	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 5.0, p.Max)
	assert.Equal(t, 3.0, p.Median)
	assert.LessOrEqual(t, p.Q25, p.Median)
	assert.GreaterOrEqual(t, p.Q75, p.Median)
	assert.InDelta(t, 0.0, p.Skewness, 1e-9)
}

func TestProfileColumn_RightSkewed(t *testing.T) {
	p, err := ProfileColumn([]float64{1, 1, 1, 2, 2, 3, 10, 40})
	require.NoError(t, err)
	assert.Greater(t, p.Skewness, 0.0)
}

func TestProfileColumn_DegenerateInputs(t *testing.T) {
	_, err := ProfileColumn(nil)
	assert.Error(t, err)

	p, err := ProfileColumn([]float64{7, 7, 7, 7})
	require.NoError(t, err)
	assert.Zero(t, p.StdDev)
	assert.Zero(t, p.Skewness)

	p, err = ProfileColumn([]float64{7})
	require.NoError(t, err)
	assert.Zero(t, p.StdDev)
}

func TestParseNumber(t *testing.T) {
	cases := map[string]struct {
		want float64
		ok   bool
	}{
		"42":        {42, true},
		" -3.5 ":    {-3.5, true},
		"12,500.25": {12500.25, true},
		"15%":       {0.15, true},
		"":          {0, false},
		"north":     {0, false},
		"NaN":       {0, false},
	}
	for in, tc := range cases {
		got, ok := ParseNumber(in)
		assert.Equal(t, tc.ok, ok, in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, in)
		}
	}
}

func TestNumericValues(t *testing.T) {
	values, ok := NumericValues([]string{"1", "", "2", "3"})
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, values)

	_, ok = NumericValues([]string{"1", "two", "3"})
	assert.False(t, ok)

	_, ok = NumericValues([]string{"", " "})
	assert.False(t, ok)
}
