package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/domain/core"
	"energydash/domain/energy"
)

// writeFixtures writes ten days of noon readings, flat at 100 kWh except a
// 300 kWh spike on the last day, plus matching weather.
func writeFixtures(t *testing.T) (readings, weather string) {
	t.Helper()
	dir := t.TempDir()

	var r, w strings.Builder
	r.WriteString("timestamp,kWh,cost\n")
	w.WriteString("date,avgTemp\n")
	for d := 1; d <= 10; d++ {
		kwh := 100.0
		if d == 10 {
			kwh = 300
		}
		fmt.Fprintf(&r, "2024-01-%02dT12:00:00Z,%g,%g\n", d, kwh, kwh*0.12)
		fmt.Fprintf(&w, "2024-01-%02d,%d\n", d, d)
	}
	r.WriteString("not-a-date,1,1\n")

	readings = filepath.Join(dir, "meter.csv")
	weather = filepath.Join(dir, "weather.csv")
	require.NoError(t, os.WriteFile(readings, []byte(r.String()), 0o600))
	require.NoError(t, os.WriteFile(weather, []byte(w.String()), 0o600))
	return readings, weather
}

func TestRunAnalyzeText(t *testing.T) {
	readings, weather := writeFixtures(t)

	var out bytes.Buffer
	require.NoError(t, runAnalyze(&out, readings, analyzeOptions{weatherFile: weather, threshold: 20, timezone: "UTC"}))

	text := out.String()
	assert.Contains(t, text, "10 days from 2024-01-01 to 2024-01-10 (1 rows rejected)")
	assert.Contains(t, text, "Temperature correlation: r=")
	assert.Contains(t, text, "Anomalies above 20%: 1")
	assert.Contains(t, text, "2024-01-10")
}

func TestRunAnalyzeJSONWithoutWeather(t *testing.T) {
	readings, _ := writeFixtures(t)

	var out bytes.Buffer
	require.NoError(t, runAnalyze(&out, readings, analyzeOptions{threshold: 20, timezone: "UTC", asJSON: true}))

	var result energy.Analytics
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.False(t, result.WeatherAvailable)
	assert.Equal(t, 1, result.Anomalies)
	assert.False(t, result.TemperatureCorrelation.Coefficient.Defined())
	require.Len(t, result.Days, 10)
	assert.True(t, result.Days[9].IsAnomaly)
}

func TestRunAnalyzeErrors(t *testing.T) {
	readings, _ := writeFixtures(t)

	err := runAnalyze(&bytes.Buffer{}, readings, analyzeOptions{timezone: "Mars/Olympus"})
	assert.True(t, core.IsValidationError(err))

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("timestamp,kWh,cost\nbad,1,1\n"), 0o600))
	err = runAnalyze(&bytes.Buffer{}, empty, analyzeOptions{timezone: "UTC"})
	assert.True(t, core.IsValidationError(err))

	err = runAnalyze(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.csv"), analyzeOptions{timezone: "UTC"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
