package pipeline

import (
	"DelayClassifier/src/config"
	"DelayClassifier/src/datasource/file"
	"DelayClassifier/src/processor"
	"DelayClassifier/src/storage"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "FlightID,FlightNumber,TailNumber,Airline,Origin,Destination,ScheduledDeparture,ActualDeparture," +
	"ScheduledArrival,ActualArrival,DelayMinutes,DelayReason,AircraftType,Cancelled,Diverted\n"

// writeFlights 生成 1000 行有效数据(600 短延误/400 长延误)和 20 行缺少延误时长的数据
func writeFlights(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(header)

	airlines := []string{"AA", "DL", "UA"}
	airports := []string{"JFK", "LAX", "ORD", "ATL"}
	base := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	const layout = "2006-01-02 15:04:05"

	for i := 0; i < 1020; i++ {
		long := i%5 < 2
		minutes := i % 30
		reason := ""
		if long {
			minutes = 45 + i%60
			reason = "Weather"
		} else if i%3 == 0 {
			reason = "Crew"
		}

		schedDep := base.Add(time.Duration(i) * 17 * time.Minute)
		actDep := schedDep.Add(time.Duration(minutes) * time.Minute)
		schedArr := schedDep.Add(3 * time.Hour)
		actArr := schedArr.Add(time.Duration(minutes+i%7) * time.Minute)

		delay := fmt.Sprint(minutes)
		if i >= 1000 {
			delay = ""
		}
		fmt.Fprintf(&b, "%d,FN%d,N%03d,%s,%s,%s,%s,%s,%s,%s,%s,%s,A320,False,False\n",
			i, 100+i%50, i%200,
			airlines[i%3], airports[i%4], airports[(i+1)%4],
			schedDep.Format(layout), actDep.Format(layout),
			schedArr.Format(layout), actArr.Format(layout),
			delay, reason,
		)
	}

	path := filepath.Join(dir, "flight_delays.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Input.Path = writeFlights(t, dir)
	cfg.Forest.Estimators = 25
	cfg.Report = config.Report{
		Heatmap:  filepath.Join(dir, "confusion_matrices.png"),
		HTML:     filepath.Join(dir, "confusion_matrices.html"),
		Workbook: filepath.Join(dir, "report.xlsx"),
	}
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	var stdout bytes.Buffer

	res, err := Run(cfg, storage.NewNopLogger(), &stdout)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1020, res.Loaded)
	assert.Equal(t, 1000, res.Cleaned)
	assert.Equal(t, 1000, res.Derived)
	assert.Equal(t, 0, res.UndefinedDerived)

	assert.Equal(t, 300, res.Partition.Test.Nrow())
	assert.Equal(t, 700, res.Partition.Train.Nrow())
	assert.Len(t, res.Actual, 300)

	for _, name := range []string{"FlightID", "FlightNumber", "TailNumber", "ScheduledDeparture", "DelayMinutes", "DelayCategory"} {
		assert.NotContains(t, res.Features, name)
	}
	assert.Contains(t, res.Features, "DepartureDelay")
	assert.Contains(t, res.Features, "ArrivalDelay")

	// 缺失的延误原因被填充为 Unknown
	_, ok := res.Codes["DelayReason"].Encode(cfg.Missing.ReasonPlaceholder)
	assert.True(t, ok)

	long := 0
	for _, l := range append(append([]int{}, res.TrainLabels...), res.Actual...) {
		long += l
	}
	assert.Equal(t, 400, long)

	require.Len(t, res.Evaluations, 2)
	assert.Equal(t, "Random Forest Classifier", res.Evaluations[0].Name)
	assert.Equal(t, "KNN Classifier", res.Evaluations[1].Name)
	assert.Greater(t, res.Baseline, 0.5)
	for _, e := range res.Evaluations {
		assert.Equal(t, 300, e.Matrix.Total(), e.Name)
		assert.GreaterOrEqual(t, e.Accuracy, res.Baseline, e.Name)
		assert.Len(t, res.Predictions[e.Name], 300)
	}

	out := stdout.String()
	assert.Contains(t, out, "Random Forest Classifier Accuracy: ")
	assert.Contains(t, out, "KNN Classifier Accuracy: ")
	assert.Equal(t, 2, strings.Count(out, "macro avg"))

	require.Len(t, res.Outputs, 3)
	for _, path := range res.Outputs {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.NotZero(t, info.Size(), path)
	}
}

func TestRunDeterministicSplit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report = config.Report{}

	a, err := Run(cfg, storage.NewNopLogger(), &bytes.Buffer{})
	require.NoError(t, err)
	b, err := Run(cfg, storage.NewNopLogger(), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, a.Partition.TestIdx, b.Partition.TestIdx)
	assert.Equal(t, a.Evaluations[1], b.Evaluations[1])
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Empty(t, a.Outputs)
}

func TestRunMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flights.csv")
	require.NoError(t, os.WriteFile(path, []byte("FlightID,DelayMinutes\n1,45\n"), 0o644))

	cfg := config.Default()
	cfg.Input.Path = path
	_, err := Run(cfg, storage.NewNopLogger(), &bytes.Buffer{})
	assert.ErrorIs(t, err, file.ErrMissingColumn)
}

func TestRunNoTargetRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flights.csv")
	row := "1,FN1,N1,AA,JFK,LAX,2024-01-01 13:00:00,2024-01-01 13:45:00,2024-01-01 16:00:00,2024-01-01 16:30:00,,Weather,A320,False,False\n"
	require.NoError(t, os.WriteFile(path, []byte(header+row), 0o644))

	cfg := config.Default()
	cfg.Input.Path = path
	_, err := Run(cfg, storage.NewNopLogger(), &bytes.Buffer{})
	assert.ErrorIs(t, err, processor.ErrNoRows)
}

func TestRunLogsToFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report = config.Report{}
	logPath := filepath.Join(t.TempDir(), "flightdelay.log")

	logger, err := storage.NewLogger(logPath)
	require.NoError(t, err)
	res, err := Run(cfg, logger, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), res.RunID)
	assert.Contains(t, string(data), "模型评估完成")
	// 列统计以 DEBUG 写入文件
	assert.Contains(t, string(data), "ArrivalDelay: count=")
}
