package core

// parse.go turns uploaded bytes into ordered header-keyed rows.
//
// Parsing is tolerant by policy: rows whose cell count differs from the
// header are padded or truncated rather than dropped, so that the
// validator alone decides which rows are accepted. Only undecodable
// input and a header with no named columns fail at this stage.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Format is the declared tabular format of an upload.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatXLSX:
		return "XLSX"
	default:
		return "unknown"
	}
}

// FormatForFile derives the format from a file name's extension.
func FormatForFile(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return 0, &FormatError{
			Format: Format(-1),
			Detail: "unsupported file type " + filepath.Ext(name) + " (use .csv or .xlsx)",
		}
	}
}

// ParseTable decodes data in the given format. The first record (CSV) or
// first non-empty row of the first sheet (XLSX) is the header.
// A header with no data rows yields an empty Rows slice and no error.
func ParseTable(data []byte, format Format) (*Table, error) {
	var (
		records [][]string
		err     error
	)

	switch format {
	case FormatCSV:
		records, err = readCSV(data)
	case FormatXLSX:
		records, err = readXLSX(data)
	default:
		return nil, &FormatError{Format: format, Detail: "unsupported format"}
	}
	if err != nil {
		return nil, err
	}

	return buildTable(records, format)
}

// readCSV returns every non-blank record. The decoder strips a UTF-8 BOM
// and replaces invalid byte sequences with U+FFFD.
func readCSV(data []byte) ([][]string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Format: FormatCSV, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// readXLSX returns the rows of the first sheet with leading and interior
// empty rows removed. Raw cell values are used so numeric phone numbers
// are not reformatted.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Format: FormatXLSX, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Format: FormatXLSX, Detail: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &FormatError{Format: FormatXLSX, Err: err}
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		records = append(records, row)
	}
	return records, nil
}

// buildTable maps records onto the header. Short rows are padded with ""
// and long rows truncated to the header width. When a header name
// repeats, the right-most column wins.
func buildTable(records [][]string, format Format) (*Table, error) {
	if len(records) == 0 {
		return nil, &FormatError{Format: format, Detail: "no header row"}
	}

	header := make([]string, len(records[0]))
	named := 0
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] != "" {
			named++
		}
	}
	if named == 0 {
		return nil, &FormatError{Format: format, Detail: "header has no columns"}
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(RawRow, len(header))
		for i, name := range header {
			var cell string
			if i < len(rec) {
				cell = strings.TrimSpace(rec[i])
			}
			row[name] = cell
		}
		rows = append(rows, row)
	}

	return &Table{Header: header, Rows: rows}, nil
}

// CheckHeaders verifies that every RequiredHeaders entry is present.
// Matching is exact; extra columns are ignored.
func CheckHeaders(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, req := range RequiredHeaders {
		if !present[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &MissingHeadersError{Missing: missing}
	}
	return nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
