package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// preferredSheet is selected automatically when a workbook carries it.
const preferredSheet = "BOW List"

// SheetInfo describes one sheet of an uploaded workbook. A sheet is
// importable when its header row matches at least one expected column for
// the chosen import type.
type SheetInfo struct {
	Name       string `json:"name"`
	Importable bool   `json:"importable"`
	Rows       int    `json:"rows"`
}

// Preview is what the upload endpoint returns before a job is confirmed.
type Preview struct {
	Sheets        []SheetInfo       `json:"sheets"`
	SelectedSheet string            `json:"selected_sheet"`
	Headers       []string          `json:"headers"`
	Mapping       map[string]string `json:"mapping"` // header -> canonical field
	SampleRows    [][]string        `json:"sample_rows"`
	TotalRows     int               `json:"total_rows"`
}

// SheetData is a fully read sheet: header row plus data rows.
type SheetData struct {
	Headers      []string
	Rows         [][]string
	FirstDataRow int // 1-based sheet row number of Rows[0]
}

// IsSupportedFile reports whether the upload extension is handled.
func IsSupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	default:
		return false
	}
}

// ReadPreview inspects an uploaded file without importing it.
func ReadPreview(path string, importType ImportType, maxRows int) (*Preview, error) {
	expected := ExpectedColumns(importType)
	if isCSV(path) {
		data, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		return previewFromSheet(path, data, expected, maxRows)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]SheetInfo, 0, len(names))
	selected := ""
	for _, name := range names {
		data, err := readExcelSheet(f, name)
		if err != nil {
			return nil, err
		}
		importable := data != nil && countMapped(data.Headers, expected) > 0
		rows := 0
		if data != nil {
			rows = len(data.Rows)
		}
		sheets = append(sheets, SheetInfo{Name: name, Importable: importable, Rows: rows})
		if importable && selected == "" {
			selected = name
		}
		if importable && strings.EqualFold(name, preferredSheet) {
			selected = name
		}
	}
	// Importable sheets first, original order otherwise.
	sort.SliceStable(sheets, func(i, j int) bool {
		return sheets[i].Importable && !sheets[j].Importable
	})
	if selected == "" {
		return &Preview{Sheets: sheets}, nil
	}

	data, err := readExcelSheet(f, selected)
	if err != nil {
		return nil, err
	}
	p, err := previewFromSheet(path, data, expected, maxRows)
	if err != nil {
		return nil, err
	}
	p.Sheets = sheets
	p.SelectedSheet = selected
	return p, nil
}

// ReadSheet reads the full sheet for the confirmed job. sheetName is ignored
// for CSV files, which have a single implicit sheet; when blank, the
// preferred sheet is used if present, otherwise the first sheet.
func ReadSheet(path, sheetName string) (*SheetData, error) {
	if isCSV(path) {
		return readCSV(path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	if sheetName == "" {
		names := f.GetSheetList()
		if len(names) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = names[0]
		for _, name := range names {
			if strings.EqualFold(name, preferredSheet) {
				sheetName = name
				break
			}
		}
	}
	data, err := readExcelSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("sheet %q has no header row", sheetName)
	}
	return data, nil
}

func previewFromSheet(path string, data *SheetData, expected map[string]string, maxRows int) (*Preview, error) {
	if data == nil {
		return nil, fmt.Errorf("%s: no header row found", filepath.Base(path))
	}
	mapping := MapColumns(data.Headers, expected)
	byHeader := make(map[string]string, len(mapping))
	for idx, field := range mapping {
		byHeader[data.Headers[idx]] = field
	}
	sample := data.Rows
	if maxRows > 0 && len(sample) > maxRows {
		sample = sample[:maxRows]
	}
	return &Preview{
		Sheets:        []SheetInfo{{Name: filepath.Base(path), Importable: len(mapping) > 0, Rows: len(data.Rows)}},
		SelectedSheet: filepath.Base(path),
		Headers:       data.Headers,
		Mapping:       byHeader,
		SampleRows:    sample,
		TotalRows:     len(data.Rows),
	}, nil
}

// readExcelSheet returns nil data when the sheet has no non-empty row.
func readExcelSheet(f *excelize.File, name string) (*SheetData, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return splitHeader(rows), nil
}

func readCSV(path string) (*SheetData, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data := splitHeader(rows)
	if data == nil {
		return nil, fmt.Errorf("%s: no header row found", filepath.Base(path))
	}
	return data, nil
}

// splitHeader finds the first non-empty row and treats it as the header.
// Exported workbooks often carry a title or blank rows above the table.
func splitHeader(rows [][]string) *SheetData {
	for i, cells := range rows {
		if IsEmptyRow(cells) {
			continue
		}
		return &SheetData{
			Headers:      trimCells(cells),
			Rows:         rows[i+1:],
			FirstDataRow: i + 2,
		}
	}
	return nil
}

func countMapped(headers []string, expected map[string]string) int {
	return len(MapColumns(headers, expected))
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
