package crest

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

// ParseTable reads the four-column crest table (rank, height descriptor,
// date descriptor, unused) and returns the rows whose height and date could
// be extracted, in input order. Rows that fail either extraction are dropped
// silently; the surrounding system is deliberately lenient about the messy
// source table.
func ParseTable(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}
		if rec, ok := parseRow(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func parseRow(row []string) (Record, bool) {
	if len(row) < 3 {
		return Record{}, false
	}
	height, ok := extractHeight(row[1])
	if !ok || height <= 0 {
		return Record{}, false
	}
	date, ok := extractDate(row[2])
	if !ok {
		return Record{}, false
	}
	rank, _ := strconv.Atoi(strings.TrimSpace(row[0]))
	return Record{Rank: rank, Height: height, Date: date}, true
}

// extractHeight returns the first decimal numeric token in the field, e.g.
// "34.70 ft" -> 34.70.
func extractHeight(field string) (float64, bool) {
	for i := 0; i < len(field); i++ {
		if !isNumericByte(field[i]) {
			continue
		}
		j := i
		for j < len(field) && isNumericByte(field[j]) {
			j++
		}
		if v, err := strconv.ParseFloat(field[i:j], 64); err == nil {
			return v, true
		}
		i = j
	}
	return 0, false
}

// extractDate returns the first MM-DD-YYYY pattern in the field, e.g.
// "on 02-01-1936" -> Feb 1 1936. Tokens that match the shape but are not a
// real calendar date are passed over.
func extractDate(field string) (time.Time, bool) {
	const layout = "01-02-2006"
	for i := 0; i+len(layout) <= len(field); i++ {
		candidate := field[i : i+len(layout)]
		if !matchesDateShape(candidate) {
			continue
		}
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func matchesDateShape(s string) bool {
	for i := 0; i < len(s); i++ {
		if i == 2 || i == 5 {
			if s[i] != '-' {
				return false
			}
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isNumericByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}
