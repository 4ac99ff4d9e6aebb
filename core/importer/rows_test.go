package importer

import (
	"testing"
	"time"
)

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]string{"", "   ", "\t"}) {
		t.Error("whitespace-only row should be empty")
	}
	if !IsEmptyRow(nil) {
		t.Error("nil row should be empty")
	}
	if IsEmptyRow([]string{"", "x", ""}) {
		t.Error("row with one value is not empty")
	}
}

func TestBuildRecordsSkipsEmptyRows(t *testing.T) {
	mapping := map[int]string{0: FieldRefNo, 1: FieldTitle}
	rows := [][]string{
		{"BOW-0001", "First"},
		{"", "   "},
		{"BOW-0002", "Second", "extra cell ignored"},
	}
	records := BuildRecords(rows, mapping, 2)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Row != 2 || records[1].Row != 4 {
		t.Errorf("row numbers wrong: %d, %d", records[0].Row, records[1].Row)
	}
	if records[1].Value(FieldRefNo) != "BOW-0002" {
		t.Errorf("unexpected ref: %q", records[1].Value(FieldRefNo))
	}
}

func TestBuildRecordsShortRow(t *testing.T) {
	mapping := map[int]string{0: FieldRefNo, 5: FieldDeadline}
	records := BuildRecords([][]string{{"BOW-0003"}}, mapping, 2)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Value(FieldDeadline) != "" {
		t.Errorf("missing cell should read empty, got %q", records[0].Value(FieldDeadline))
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-03-15", "15/03/2026", "15.03.2026", "15 Mar 2026"} {
		got := ParseDate(in)
		if got == nil || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	if ParseDate("") != nil {
		t.Error("blank date should be nil")
	}
	if ParseDate("not a date") != nil {
		t.Error("garbage date should be nil")
	}
}

func TestParseLevel(t *testing.T) {
	if v := ParseLevel("4"); v == nil || *v != 4 {
		t.Errorf("numeric level: %v", v)
	}
	if v := ParseLevel("Major"); v == nil || *v != 4 {
		t.Errorf("label level: %v", v)
	}
	if ParseLevel("") != nil {
		t.Error("blank level should be nil")
	}
	if ParseLevel("enormous") != nil {
		t.Error("unknown label should be nil")
	}
}

func TestProbabilityLabelSpellings(t *testing.T) {
	cases := map[string]int{
		"Rare":           1,
		"Unlikely":       2,
		"Possible":       3,
		"Likely":         4,
		"Almost Certain": 5,
		"3":              3,
		"High":           4,
	}
	for in, want := range cases {
		if got := probabilityOrZero(in); got != want {
			t.Errorf("probabilityOrZero(%q) = %d, want %d", in, got, want)
		}
	}
	if probabilityOrZero("") != 0 {
		t.Error("blank probability should be 0")
	}
	if probabilityOrZero("sometimes") != 0 {
		t.Error("unknown label should be 0")
	}
}

func TestParseDateShortNumericIsDayFirst(t *testing.T) {
	want := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)
	got := ParseDate("03-04-25")
	if got == nil || !got.Equal(want) {
		t.Errorf("ParseDate(%q) = %v, want %v", "03-04-25", got, want)
	}
}

func TestParseMoney(t *testing.T) {
	if v := ParseMoney("£1,250,000.50"); v == nil || *v != 1250000.50 {
		t.Errorf("money with symbols: %v", v)
	}
	if ParseMoney("") != nil {
		t.Error("blank money should be nil")
	}
	if ParseMoney("n/a") != nil {
		t.Error("non-numeric money should be nil")
	}
}
