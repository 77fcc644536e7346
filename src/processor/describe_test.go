package processor

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	df := dataframe.New(
		series.New([]float64{10, 20, 30, math.NaN()}, series.Float, "DepartureDelay"),
		series.New([]float64{5, 5, 5, 5}, series.Float, "ArrivalDelay"),
	)
	require.NoError(t, df.Err)

	got := Describe(df, []string{"DepartureDelay", "ArrivalDelay"})
	require.Len(t, got, 2)

	dep := got[0]
	assert.Equal(t, 3, dep.Count)
	assert.Equal(t, 1, dep.Undefined)
	assert.InDelta(t, 20.0, dep.Mean, 1e-9)
	assert.InDelta(t, 10.0, dep.Std, 1e-9)
	assert.Equal(t, 10.0, dep.Min)
	assert.Equal(t, 20.0, dep.Median)
	assert.Equal(t, 30.0, dep.Max)

	arr := got[1]
	assert.Equal(t, 4, arr.Count)
	assert.Equal(t, 0.0, arr.Std)

	assert.Contains(t, FormatSummaries(got), "DepartureDelay: count=3 undefined=1")
}

func TestFeatureColumns(t *testing.T) {
	df := dataframe.New(
		series.New([]int{1}, series.Int, "Airline"),
		series.New([]float64{1}, series.Float, "DelayMinutes"),
		series.New([]int{1}, series.Int, "DelayCategory"),
		series.New([]float64{1}, series.Float, "DepartureDelay"),
	)
	assert.Equal(t, []string{"Airline", "DepartureDelay"}, FeatureColumns(df, "DelayMinutes", "DelayCategory"))
}
