package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/Wazadriano/bow-tavira-sub002/core/riskscore"
)

// Record is one spreadsheet row lifted into canonical fields.
type Record struct {
	Row    int // 1-based row number in the source sheet, header included
	Fields map[string]string
}

// Value returns the trimmed cell for a canonical field.
func (r Record) Value(field string) string {
	return strings.TrimSpace(r.Fields[field])
}

// IsEmptyRow reports whether every cell is blank after trimming. Trailing
// formatting-only rows in exported workbooks look like this.
func IsEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// BuildRecords applies a column mapping to raw rows, skipping empty ones.
// firstDataRow is the 1-based sheet row of the first data row (header + 1).
func BuildRecords(rows [][]string, mapping map[int]string, firstDataRow int) []Record {
	records := make([]Record, 0, len(rows))
	for i, cells := range rows {
		if IsEmptyRow(cells) {
			continue
		}
		fields := make(map[string]string, len(mapping))
		for idx, field := range mapping {
			if idx < len(cells) {
				fields[field] = strings.TrimSpace(cells[idx])
			}
		}
		records = append(records, Record{Row: firstDataRow + i, Fields: fields})
	}
	return records
}

// All-numeric forms are read day-first (UK convention): "03-04-25" is
// 3 April 2025, never March 4. ISO dates are unambiguous and tried first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"2-Jan-06",
	"02 Jan 2006",
	"2 January 2006",
	"2006-01-02 15:04:05",
	"02-01-06",
}

// ParseDate tries the date renderings that show up in exported workbooks.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ParseLevel reads an ordinal risk component cell. Blank or unrecognized
// cells come back nil; the scoring engine treats nil as "not yet assessed".
func ParseLevel(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if lvl, ok := riskscore.ParseImpact(s); ok {
		v := int(lvl)
		return &v
	}
	return nil
}

// levelOrZero is ParseLevel collapsed for int columns: unset stays 0, which
// the scoring engine treats as not assessed.
func levelOrZero(s string) int {
	if v := ParseLevel(s); v != nil {
		return *v
	}
	return 0
}

// probabilityOrZero is levelOrZero for probability cells, whose label
// vocabulary ("Rare", "Likely", "Almost Certain") differs from the impact
// scale. Numeric and shared spellings still resolve via the impact parser.
func probabilityOrZero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if p, ok := riskscore.ParseProbability(s); ok {
		return int(p)
	}
	if lvl, ok := riskscore.ParseImpact(s); ok {
		return int(lvl)
	}
	return 0
}

// normalizeRAG canonicalizes a RAG cell; unrecognized values come back empty.
func normalizeRAG(s string) string {
	if rag, ok := riskscore.ParseRAG(s); ok {
		return string(rag)
	}
	return ""
}

// ParseMoney reads a currency cell, tolerating symbols and separators.
func ParseMoney(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return nil
	}
	return &v
}
