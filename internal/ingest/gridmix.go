package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// GridMixParser parses the daily grid generation mix export.
//
// Expected format (semicolon separated, comma decimals, "-" for no data):
//
//	Datetime;Hydropower;Nuclear;Coal;PV Solar Power
//	2020-01-01;10,5;20,1;-;3,2
type GridMixParser struct {
	DatetimeColumn string
	// Comma is the field delimiter; zero means ';'.
	Comma rune
}

func NewGridMixParser() *GridMixParser {
	return &GridMixParser{DatetimeColumn: "Datetime", Comma: ';'}
}

func (p *GridMixParser) Parse(r io.Reader) ([]model.GridMixRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	if p.Comma != 0 {
		cr.Comma = p.Comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading grid mix header: %w", err)
	}
	header = cleanHeader(header)

	dtCol := p.DatetimeColumn
	if dtCol == "" {
		dtCol = "Datetime"
	}
	tsIdx, err := columnIndex(header, dtCol)
	if err != nil {
		return nil, err
	}
	sources := make([]string, len(header))
	for i, h := range header {
		if i != tsIdx {
			sources[i] = model.SourceName(h)
		}
	}

	var rows []model.GridMixRow
	lineNum := 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading grid mix line %d: %w", lineNum, err)
		}

		row, err := parseMixRecord(record, tsIdx, sources, lineNum)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseMixRecord(record []string, tsIdx int, sources []string, lineNum int) (model.GridMixRow, error) {
	if tsIdx >= len(record) {
		return model.GridMixRow{}, fmt.Errorf("line %d: missing datetime field", lineNum)
	}
	ts, err := ParseTimestamp(record[tsIdx])
	if err != nil {
		return model.GridMixRow{}, fmt.Errorf("line %d: %w", lineNum, err)
	}

	shares := make(map[string]float64, len(sources))
	for i, src := range sources {
		if i == tsIdx || src == "" {
			continue
		}
		var cell string
		if i < len(record) {
			cell = record[i]
		}
		v, err := ParseLocaleNumber(cell)
		if err != nil {
			return model.GridMixRow{}, fmt.Errorf("line %d, column %q: %w", lineNum, src, err)
		}
		shares[src] = v
	}

	return model.GridMixRow{Date: model.Day(ts), Shares: shares}, nil
}
