package importer

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadPreviewCSV(t *testing.T) {
	path := writeTempCSV(t, "Number,Title,Responsible\nBOW-0001,First item,Jane Smith\nBOW-0002,Second item,\n")
	p, err := ReadPreview(path, TypeWorkItems, 10)
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalRows != 2 {
		t.Errorf("total rows = %d", p.TotalRows)
	}
	if p.Mapping["Number"] != FieldRefNo || p.Mapping["Responsible"] != FieldResponsible {
		t.Errorf("mapping: %v", p.Mapping)
	}
	if len(p.Sheets) != 1 || !p.Sheets[0].Importable {
		t.Errorf("csv pseudo-sheet: %+v", p.Sheets)
	}
}

func TestReadPreviewCSVSampleCap(t *testing.T) {
	path := writeTempCSV(t, "Number,Title\nA,1\nB,2\nC,3\nD,4\n")
	p, err := ReadPreview(path, TypeWorkItems, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.SampleRows) != 2 || p.TotalRows != 4 {
		t.Errorf("sample=%d total=%d", len(p.SampleRows), p.TotalRows)
	}
}

func TestReadSheetSkipsLeadingBlankAndTitleRows(t *testing.T) {
	path := writeTempCSV(t, ",,\nNumber,Title,Status\nBOW-0001,First,open\n")
	data, err := ReadSheet(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Headers) != 3 || data.Headers[0] != "Number" {
		t.Errorf("headers: %v", data.Headers)
	}
	if data.FirstDataRow != 3 {
		t.Errorf("first data row = %d", data.FirstDataRow)
	}
	if len(data.Rows) != 1 {
		t.Errorf("rows: %v", data.Rows)
	}
}

func TestIsSupportedFile(t *testing.T) {
	for _, name := range []string{"a.xlsx", "B.XLSM", "list.csv"} {
		if !IsSupportedFile(name) {
			t.Errorf("%s should be supported", name)
		}
	}
	for _, name := range []string{"a.xls", "macro.exe", "noext"} {
		if IsSupportedFile(name) {
			t.Errorf("%s should be rejected", name)
		}
	}
}
