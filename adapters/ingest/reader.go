package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"energydash/domain/core"
	"energydash/domain/energy"
)

const (
	// DefaultSource labels uploaded readings without a source column value.
	DefaultSource = "Manual Upload"
	// PreviewRows is the number of parsed readings echoed back for review.
	PreviewRows = 5
)

// ParseResult is the outcome of parsing an upload. Rows with errors are
// reported and left out of Data.
type ParseResult struct {
	Data    []energy.Reading `json:"data"`
	Errors  []string         `json:"errors"`
	Preview []energy.Reading `json:"preview"`
}

// Valid reports whether at least one row parsed.
func (r *ParseResult) Valid() bool {
	return len(r.Data) > 0
}

// Parse reads a .csv or .xlsx upload, chosen by the file name extension.
func Parse(name string, r io.Reader) (*ParseResult, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		rows, err = readCSVRows(r)
	case ".xlsx":
		rows, err = readExcelRows(r)
	default:
		return nil, core.NewValidationError("file", fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(name)))
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewValidationError("file", fmt.Sprintf("failed to read CSV: %v", err))
	}
	return rows, nil
}

// readExcelRows reads the first worksheet of a workbook.
func readExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewValidationError("file", fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewValidationError("file", "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewValidationError("file", fmt.Sprintf("failed to read %s: %v", sheets[0], err))
	}
	return rows, nil
}

type columns struct {
	timestamp, kwh, cost, co2, source int
}

func headerIndex(header []string) (columns, error) {
	cols := columns{timestamp: -1, kwh: -1, cost: -1, co2: -1, source: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "timestamp", "time", "date":
			cols.timestamp = i
		case "kwh", "energy":
			cols.kwh = i
		case "cost":
			cols.cost = i
		case "co2":
			cols.co2 = i
		case "source":
			cols.source = i
		}
	}
	if cols.timestamp < 0 || cols.kwh < 0 || cols.cost < 0 {
		return cols, core.NewValidationError("header", "expected columns timestamp, kWh and cost")
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRows(rows [][]string) (*ParseResult, error) {
	if len(rows) == 0 {
		return nil, core.NewValidationError("file", "file is empty")
	}
	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Data:   make([]energy.Reading, 0, len(rows)-1),
		Errors: make([]string, 0),
	}

	for index, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowNum := index + 1

		ts, kwhRaw, costRaw := cell(row, cols.timestamp), cell(row, cols.kwh), cell(row, cols.cost)
		if ts == "" || kwhRaw == "" || costRaw == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing required fields (timestamp, kWh, cost)", rowNum))
			continue
		}

		timestamp, err := core.ParseTimestamp(ts)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid timestamp format", rowNum))
			continue
		}

		co2Raw := cell(row, cols.co2)
		if co2Raw == "" {
			co2Raw = "0"
		}
		kwh, errK := strconv.ParseFloat(kwhRaw, 64)
		cost, errC := strconv.ParseFloat(costRaw, 64)
		co2, errO := strconv.ParseFloat(co2Raw, 64)
		if errK != nil || errC != nil || errO != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Invalid numeric values", rowNum))
			continue
		}

		source := cell(row, cols.source)
		if source == "" {
			source = DefaultSource
		}

		result.Data = append(result.Data, energy.Reading{
			Timestamp: timestamp,
			KWh:       kwh,
			Cost:      cost,
			CO2:       co2,
			Source:    source,
		})
	}

	result.Preview = result.Data[:min(PreviewRows, len(result.Data))]
	return result, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Template returns a CSV upload template with sample rows.
func Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"timestamp", "kWh", "cost", "co2", "source"})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := [][3]float64{{125.5, 15.06, 50.2}, {118.3, 14.2, 47.32}, {132.1, 15.85, 52.84}}
	for i, s := range samples {
		w.Write([]string{
			start.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			strconv.FormatFloat(s[0], 'f', -1, 64),
			strconv.FormatFloat(s[1], 'f', -1, 64),
			strconv.FormatFloat(s[2], 'f', -1, 64),
			"Smart Meter",
		})
	}
	w.Flush()
	return buf.Bytes()
}
