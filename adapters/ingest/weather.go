package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal/analytics"
)

type weatherColumns struct {
	date, avg, min, max int
}

// ParseWeather reads daily weather from a CSV with a date and average
// temperature column, plus optional min and max columns. Degree days are
// derived from the average. Unlike readings, a bad row fails the whole file.
func ParseWeather(station string, r io.Reader) ([]energy.WeatherDay, error) {
	rows, err := readCSVRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.NewValidationError("file", "file is empty")
	}

	cols := weatherColumns{date: -1, avg: -1, min: -1, max: -1}
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date", "day", "timestamp":
			cols.date = i
		case "avgtemp", "tavg", "temperature":
			cols.avg = i
		case "mintemp", "tmin":
			cols.min = i
		case "maxtemp", "tmax":
			cols.max = i
		}
	}
	if cols.date < 0 || cols.avg < 0 {
		return nil, core.NewValidationError("header", "expected columns date and avgTemp")
	}

	days := make([]energy.WeatherDay, 0, len(rows)-1)
	for index, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := index + 1

		date, err := core.ParseTimestamp(cell(row, cols.date))
		if err != nil {
			return nil, core.NewValidationError("file", fmt.Sprintf("Row %d: Invalid date", rowNum))
		}
		day := energy.WeatherDay{Station: station, Date: date}
		for _, f := range []struct {
			col int
			dst *float64
		}{{cols.avg, &day.AvgTemp}, {cols.min, &day.MinTemp}, {cols.max, &day.MaxTemp}} {
			raw := cell(row, f.col)
			if raw == "" {
				continue
			}
			if *f.dst, err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, core.NewValidationError("file", fmt.Sprintf("Row %d: Invalid temperature", rowNum))
			}
		}
		days = append(days, analytics.WithDegreeDays(day))
	}
	return days, nil
}
