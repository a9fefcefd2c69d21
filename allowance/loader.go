// loader.go implements CSV and Excel parsing of allowance rate files.

package allowance

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// requiredColumns must be present in the header row. The eight rate
// columns are optional and default to empty values.
var requiredColumns = []string{"class", "ageFrom"}

// LoadFile reads an allowance file from disk and parses it.
func LoadFile(path string) ([]string, Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading allowance file: %w", err)
	}
	return Load(data)
}

// Load parses allowance data, auto-detecting Excel (.xlsx/.xls) by
// magic bytes and falling back to CSV. It returns the sorted,
// deduplicated class list and the class -> age band -> rates table.
func Load(data []byte) ([]string, Table, error) {
	var rows [][]string
	var err error
	if isExcelFile(data) {
		rows, err = excelRows(data)
	} else {
		rows, err = csvRows(data)
	}
	if err != nil {
		return nil, nil, err
	}
	return buildTable(rows)
}

// csvRows parses raw CSV data into a row grid.
func csvRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// excelRows parses the first sheet of an Excel workbook into a row grid.
func excelRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rows, nil
}

// buildTable groups a row grid by (class, age band). The first row is
// the header; later duplicates of a (class, age) key overwrite earlier
// ones. Header matching is case-insensitive after trimming.
func buildTable(rows [][]string) ([]string, Table, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("input file has no header row")
	}

	index := make(map[string]int)
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[strings.ToLower(col)]; !ok {
			return nil, nil, fmt.Errorf("required column %q missing from header row", col)
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	table := make(Table)
	classSet := make(map[string]struct{})
	for _, row := range rows[1:] {
		class := field(row, "class")
		ageFrom := field(row, "ageFrom")
		if class == "" && ageFrom == "" {
			continue // blank line
		}
		classSet[class] = struct{}{}

		ageKey := ageFrom
		if ageFrom == "64" {
			ageKey = OverflowBand
		}

		if table[class] == nil {
			table[class] = make(map[string]RateRow)
		}
		table[class][ageKey] = RateRow{
			EE:    field(row, "EE"),
			ES:    field(row, "ES"),
			EC1:   field(row, "EC1"),
			EC2:   field(row, "EC2"),
			ECmax: field(row, "ECmax"),
			FA1:   field(row, "FA1"),
			FA2:   field(row, "FA2"),
			FAmax: field(row, "FAmax"),
		}
	}

	classes := make([]string, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes, table, nil
}

// isExcelFile checks magic bytes for xlsx (ZIP/PK header) or xls (OLE2).
func isExcelFile(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	// XLSX is a ZIP file (PK\x03\x04)
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return true
	}
	// XLS is OLE2 Compound Document (\xD0\xCF\x11\xE0)
	if data[0] == 0xD0 && data[1] == 0xCF && data[2] == 0x11 && data[3] == 0xE0 {
		return true
	}
	return false
}
