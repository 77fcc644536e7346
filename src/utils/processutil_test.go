package utils

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeLayouts(t *testing.T) {
	for _, s := range []string{
		"2024-03-01 13:45:00",
		"2024-03-01T13:45:00",
		"2024-03-01T13:45:00Z",
		"2024-03-01 13:45",
		"2024/03/01 13:45",
		"03/01/2024 13:45",
	} {
		got, ok := ParseTime(series.Strings([]string{s}).Elem(0))
		require.True(t, ok, s)
		assert.Equal(t, 13, got.Hour(), s)
		assert.Equal(t, 45, got.Minute(), s)
	}

	_, ok := ParseTime(series.Strings([]string{"not a time"}).Elem(0))
	assert.False(t, ok)
	_, ok = ParseTime(series.Strings([]string{""}).Elem(0))
	assert.False(t, ok)
}

func TestSubSeriesTime(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"2024-03-01 13:45:00", "garbage", "2024-03-01 12:50:00"}, series.String, "Actual"),
		series.New([]string{"2024-03-01 13:00:00", "2024-03-01 13:00:00", "2024-03-01 13:00:00"}, series.String, "Scheduled"),
	)

	out, err := SubSeriesTime(df, "Actual", "Scheduled", "Delay")
	require.NoError(t, err)

	got := out.Col("Delay").Float()
	assert.Equal(t, 45.0, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, -10.0, got[2])
}

func TestSubSeriesTimeMissingColumn(t *testing.T) {
	df := dataframe.New(series.New([]string{"x"}, series.String, "Actual"))
	_, err := SubSeriesTime(df, "Actual", "Scheduled", "Delay")
	assert.Error(t, err)
}

func TestMissingColumns(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"a"}, series.String, "A"),
		series.New([]string{"b"}, series.String, "B"),
	)
	assert.Empty(t, MissingColumns(df, []string{"A", "B"}))
	assert.Equal(t, []string{"C"}, MissingColumns(df, []string{"A", "C"}))
	assert.True(t, HasColumn(df, "B"))
	assert.True(t, Contains([]string{"A", "B"}, "B"))
}

func TestIsMissing(t *testing.T) {
	s := series.New([]string{"", "NaN", " ", "Weather"}, series.String, "r")
	assert.True(t, IsMissing(s.Elem(0)))
	assert.True(t, IsMissing(s.Elem(1)))
	assert.True(t, IsMissing(s.Elem(2)))
	assert.False(t, IsMissing(s.Elem(3)))
}
