package processor

import (
	"DelayClassifier/src/config"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"
)

var flightHeader = []string{
	"FlightID", "FlightNumber", "TailNumber", "Airline", "Origin", "Destination",
	"ScheduledDeparture", "ActualDeparture", "ScheduledArrival", "ActualArrival",
	"DelayMinutes", "DelayReason", "AircraftType", "Cancelled", "Diverted",
}

// flightFrame 按读取器的方式构造全字符串列的表
func flightFrame(t *testing.T, rows ...[]string) dataframe.DataFrame {
	t.Helper()
	records := append([][]string{flightHeader}, rows...)
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "null", "NULL"}),
	)
	require.NoError(t, df.Err)
	return df
}

func flightRow(id, minutes, reason, schedDep, actDep string) []string {
	return []string{
		id, "FN" + id, "N" + id, "AA", "JFK", "LAX",
		schedDep, actDep, "2024-01-01 16:00:00", "2024-01-01 16:30:00",
		minutes, reason, "A320", "False", "False",
	}
}

func testConfig() *config.Config {
	return config.Default()
}
