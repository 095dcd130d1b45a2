package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// CSVSeriesParser extracts one value column of a timestamped CSV and renames
// it to a canonical quantity.
//
// Expected format:
//
//	Datetime,Energy Consumption kWh,Producción Planta
//	2020-01-01 00:00:00,12.5,0
type CSVSeriesParser struct {
	DatetimeColumn string
	ValueColumn    string
	Quantity       model.Quantity
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

func NewCSVSeriesParser(datetimeCol, valueCol string, q model.Quantity) *CSVSeriesParser {
	return &CSVSeriesParser{
		DatetimeColumn: datetimeCol,
		ValueColumn:    valueCol,
		Quantity:       q,
	}
}

func (p *CSVSeriesParser) Parse(r io.Reader) (model.Series, error) {
	cr := csv.NewReader(r)
	if p.Comma != 0 {
		cr.Comma = p.Comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return model.Series{}, fmt.Errorf("reading CSV header: %w", err)
	}
	header = cleanHeader(header)

	tsIdx, err := columnIndex(header, p.DatetimeColumn)
	if err != nil {
		return model.Series{}, err
	}
	valIdx, err := columnIndex(header, p.ValueColumn)
	if err != nil {
		return model.Series{}, err
	}

	var points []model.TimePoint
	lineNum := 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Series{}, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}

		point, err := parsePoint(record, tsIdx, valIdx, lineNum)
		if err != nil {
			// Skip unparseable rows (blank timestamps, "n/a" values)
			continue
		}
		points = append(points, point)
	}

	return model.NewSeries(p.Quantity, points), nil
}

func parsePoint(record []string, tsIdx, valIdx, lineNum int) (model.TimePoint, error) {
	if tsIdx >= len(record) || valIdx >= len(record) {
		return model.TimePoint{}, fmt.Errorf("line %d: expected at least %d fields, got %d", lineNum, max(tsIdx, valIdx)+1, len(record))
	}

	ts, err := ParseTimestamp(record[tsIdx])
	if err != nil {
		return model.TimePoint{}, fmt.Errorf("line %d: %w", lineNum, err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(record[valIdx]), 64)
	if err != nil {
		return model.TimePoint{}, fmt.Errorf("line %d: parsing value %q: %w", lineNum, record[valIdx], err)
	}

	return model.TimePoint{Timestamp: ts, Value: value}, nil
}
