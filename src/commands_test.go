package main

import (
	"DelayClassifier/src/config"
	"DelayClassifier/src/datasource/file"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	configFile, inputPath, heatmapPath, htmlPath, workbookPath, interval = "", "", "", "", "", ""
	t.Cleanup(func() {
		configFile, inputPath, heatmapPath, htmlPath, workbookPath, interval = "", "", "", "", "", ""
	})
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewAppFlagOverrides(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	configFile = writeConfig(t, dir, `{"log": {"name": "`+filepath.ToSlash(filepath.Join(dir, "app.log"))+`"}, "split": {"seed": 7}}`)
	inputPath = filepath.Join(dir, "flights.xlsx")
	heatmapPath = filepath.Join(dir, "cm.png")
	workbookPath = filepath.Join(dir, "report.xlsx")

	a, err := newApp()
	require.NoError(t, err)
	defer a.logger.Close()

	assert.Equal(t, inputPath, a.cfg.Input.Path)
	assert.Equal(t, heatmapPath, a.cfg.Report.Heatmap)
	assert.Equal(t, workbookPath, a.cfg.Report.Workbook)
	assert.Empty(t, a.cfg.Report.HTML)
	assert.Equal(t, int64(7), a.cfg.Split.Seed)
	assert.Equal(t, config.DefaultEstimators, a.cfg.Forest.Estimators)
}

func TestNewAppInvalidConfig(t *testing.T) {
	resetFlags(t)
	configFile = writeConfig(t, t.TempDir(), `{"neighbors": {"k": 0}}`)

	_, err := newApp()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRunOnceMissingInput(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	configFile = writeConfig(t, dir, `{"log": {"name": "`+filepath.ToSlash(filepath.Join(dir, "app.log"))+`"}}`)
	inputPath = filepath.Join(dir, "missing.csv")

	a, err := newApp()
	require.NoError(t, err)
	defer a.logger.Close()

	err = a.runOnce()
	assert.ErrorIs(t, err, os.ErrNotExist)

	data, err := os.ReadFile(a.cfg.Log.Name)
	require.NoError(t, err)
	assert.Contains(t, string(data), "处理失败")
}

func TestRunOnceMissingColumns(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	configFile = writeConfig(t, dir, `{"log": {"name": "`+filepath.ToSlash(filepath.Join(dir, "app.log"))+`"}}`)
	inputPath = filepath.Join(dir, "flights.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte("FlightID\n1\n"), 0o644))

	a, err := newApp()
	require.NoError(t, err)
	defer a.logger.Close()

	assert.ErrorIs(t, a.runOnce(), file.ErrMissingColumn)
}

func TestCommands(t *testing.T) {
	assert.Equal(t, "run", RunCmd().Name())
	assert.Equal(t, "watch", WatchCmd().Name())
	assert.Equal(t, "schedule", ScheduleCmd().Name())

	assert.NotNil(t, WatchCmd().Flag.Lookup("input"))
	assert.NotNil(t, ScheduleCmd().Flag.Lookup("every"))
	assert.Nil(t, RunCmd().Flag.Lookup("every"))
}
