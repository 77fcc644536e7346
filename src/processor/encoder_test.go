package processor

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeMapBijection(t *testing.T) {
	observed := []string{"UA", "AA", "DL", "AA", "UA", "NaN"}
	cm := NewCodeMap("Airline", observed)

	assert.Equal(t, 4, cm.Len())
	if diff := cmp.Diff([]string{"AA", "DL", "NaN", "UA"}, cm.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	seen := make(map[int]bool)
	for _, v := range observed {
		code, ok := cm.Encode(v)
		require.True(t, ok)
		back, ok := cm.Decode(code)
		require.True(t, ok)
		assert.Equal(t, v, back)
		seen[code] = true
	}
	assert.Len(t, seen, cm.Len())

	_, ok := cm.Encode("WN")
	assert.False(t, ok)
	_, ok = cm.Decode(4)
	assert.False(t, ok)
	_, ok = cm.Decode(-1)
	assert.False(t, ok)
}

func TestCodeMapTransformUnseen(t *testing.T) {
	cm := NewCodeMap("Origin", []string{"JFK"})
	_, err := cm.Transform([]string{"JFK", "LAX"})
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"UA", "AA", "UA"}, series.String, "Airline"),
		series.New([]string{"True", "False", "NaN"}, series.String, "Cancelled"),
		series.New([]float64{1, 2, 3}, series.Float, "DelayMinutes"),
	)

	out, maps, err := Encode(df, []string{"Airline", "Cancelled"})
	require.NoError(t, err)
	require.Len(t, maps, 2)

	airline, err := out.Col("Airline").Int()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, airline)

	// 缺失值编码为 "NaN"
	cancelled, err := out.Col("Cancelled").Int()
	require.NoError(t, err)
	for i, code := range cancelled {
		v, ok := maps["Cancelled"].Decode(code)
		require.True(t, ok)
		assert.Equal(t, []string{"True", "False", "NaN"}[i], v)
	}

	// 原表不变
	assert.Equal(t, []string{"UA", "AA", "UA"}, df.Col("Airline").Records())
}

func TestEncodeUnknownColumn(t *testing.T) {
	df := dataframe.New(series.New([]string{"UA"}, series.String, "Airline"))
	_, _, err := Encode(df, []string{"Origin"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
