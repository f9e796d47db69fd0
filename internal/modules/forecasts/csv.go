package forecasts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	dateColumn  = "ds"
	valueColumn = "yhat"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseCSV reads a forecast file with at least a ds and a yhat column.
// Rows are returned sorted by ds. Extra columns are ignored.
func ParseCSV(r io.Reader, ticker string) (Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Series{Ticker: ticker, Points: []Point{}}, nil
	}
	if err != nil {
		return Series{}, fmt.Errorf("failed to read header for %s: %w", ticker, err)
	}

	dsIdx, yhatIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case dateColumn:
			dsIdx = i
		case valueColumn:
			yhatIdx = i
		}
	}
	if dsIdx < 0 || yhatIdx < 0 {
		return Series{}, fmt.Errorf("forecast for %s must have %q and %q columns, got %v", ticker, dateColumn, valueColumn, header)
	}

	points := make([]Point, 0, 256)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Series{}, fmt.Errorf("failed to read %s line %d: %w", ticker, line, err)
		}
		if len(record) <= dsIdx || len(record) <= yhatIdx {
			return Series{}, fmt.Errorf("%s line %d: expected at least %d fields, got %d", ticker, line, max(dsIdx, yhatIdx)+1, len(record))
		}

		ts, err := parseDate(record[dsIdx])
		if err != nil {
			return Series{}, fmt.Errorf("%s line %d: %w", ticker, line, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[yhatIdx]), 64)
		if err != nil {
			return Series{}, fmt.Errorf("%s line %d: invalid yhat %q: %w", ticker, line, record[yhatIdx], err)
		}

		points = append(points, Point{Time: ts, Value: value})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	series := Series{Ticker: ticker, Points: points}
	for i := 1; i < len(points); i++ {
		if points[i].Time.Equal(points[i-1].Time) {
			return Series{}, fmt.Errorf("%s has duplicate ds %s", ticker, points[i].Time.Format("2006-01-02 15:04:05"))
		}
	}

	return series, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ds %q", raw)
}

// WriteCSV writes a series in the ds,yhat layout ParseCSV reads.
func WriteCSV(w io.Writer, series Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{dateColumn, valueColumn}); err != nil {
		return err
	}
	for _, p := range series.Points {
		row := []string{p.Time.UTC().Format("2006-01-02 15:04:05"), strconv.FormatFloat(p.Value, 'f', -1, 64)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
