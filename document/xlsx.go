// xlsx.go renders the allowance document as an Excel workbook: a
// hyperlinked index sheet plus one styled rate sheet per class.

package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/reecedigiacomo/allowance/allowance"
)

// indexSheet is the name of the navigation sheet.
const indexSheet = "Index"

type xlsxRenderer struct{}

func init() {
	Register(&xlsxRenderer{})
}

func (r *xlsxRenderer) Name() string {
	return "Excel Workbook"
}

func (r *xlsxRenderer) Ext() string {
	return ".xlsx"
}

func (r *xlsxRenderer) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// xlsxStyles holds the style IDs shared by every sheet in one workbook.
type xlsxStyles struct {
	title  int
	head   int
	link   int
	header int
	age    int
	data   int
}

func (r *xlsxRenderer) Render(spec Spec) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), indexSheet); err != nil {
		return nil, fmt.Errorf("renaming index sheet: %w", err)
	}

	styles, err := newXlsxStyles(f)
	if err != nil {
		return nil, err
	}

	// Sheet names must be unique, non-empty, and at most 31 chars, so
	// the displayed class name and its sheet name can differ.
	sheetNames := make(map[string]string, len(spec.Classes))
	used := make(map[string]bool, len(spec.Classes))
	for _, class := range spec.Classes {
		sheetNames[class] = uniqueSheetName(class, used)
	}

	if err := r.writeIndex(f, spec, styles, sheetNames); err != nil {
		return nil, err
	}
	for _, class := range spec.Classes {
		if err := r.writeClassSheet(f, spec, class, sheetNames[class], styles); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func newXlsxStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error

	border := func(color string) []excelize.Border {
		return []excelize.Border{
			{Type: "left", Color: color, Style: 1},
			{Type: "right", Color: color, Style: 1},
			{Type: "top", Color: color, Style: 1},
			{Type: "bottom", Color: color, Style: 1},
		}
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return s, fmt.Errorf("creating title style: %w", err)
	}
	if s.head, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return s, fmt.Errorf("creating heading style: %w", err)
	}
	if s.link, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single", Size: 11},
	}); err != nil {
		return s, fmt.Errorf("creating link style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 9},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"B7B7B7"}, Pattern: 1},
		Alignment: center,
		Border:    border("CCCCCC"),
	}); err != nil {
		return s, fmt.Errorf("creating header style: %w", err)
	}
	if s.age, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 9},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E0E3FE"}, Pattern: 1},
		Alignment: center,
		Border:    border("CCCCCC"),
	}); err != nil {
		return s, fmt.Errorf("creating age style: %w", err)
	}
	if s.data, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 9},
		Alignment: center,
		Border:    border("CCCCCC"),
	}); err != nil {
		return s, fmt.Errorf("creating data style: %w", err)
	}
	return s, nil
}

// writeIndex fills the navigation sheet: title, "Class" heading, and
// one internal hyperlink per class.
func (r *xlsxRenderer) writeIndex(f *excelize.File, spec Spec, styles xlsxStyles, sheetNames map[string]string) error {
	title := spec.Title
	if title == "" {
		title = DefaultTitle
	}
	f.SetCellValue(indexSheet, "A1", title)
	f.SetCellStyle(indexSheet, "A1", "A1", styles.title)
	f.SetCellValue(indexSheet, "A3", "Class")
	f.SetCellStyle(indexSheet, "A3", "A3", styles.head)

	for i, class := range spec.Classes {
		cell, err := excelize.CoordinatesToCellName(1, 4+i)
		if err != nil {
			return fmt.Errorf("computing index cell: %w", err)
		}
		f.SetCellValue(indexSheet, cell, class)
		f.SetCellStyle(indexSheet, cell, cell, styles.link)
		location := fmt.Sprintf("'%s'!A1", sheetNames[class])
		if err := f.SetCellHyperLink(indexSheet, cell, location, "Location"); err != nil {
			return fmt.Errorf("linking index entry for %q: %w", class, err)
		}
	}
	f.SetColWidth(indexSheet, "A", "A", 40)
	return nil
}

// writeClassSheet fills one class sheet with the 9-column rate table.
func (r *xlsxRenderer) writeClassSheet(f *excelize.File, spec Spec, class, sheet string, styles xlsxStyles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet for %q: %w", class, err)
	}

	headers := append([]string{"Age"}, allowance.TierLabels...)
	for col, label := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("computing header cell: %w", err)
		}
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, styles.header)
	}

	for rowIdx, band := range allowance.AgeBands() {
		ageCell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return fmt.Errorf("computing age cell: %w", err)
		}
		f.SetCellValue(sheet, ageCell, band)
		f.SetCellStyle(sheet, ageCell, ageCell, styles.age)

		row := spec.Table.Row(class, band)
		for col, field := range allowance.RateFields {
			cell, err := excelize.CoordinatesToCellName(col+2, rowIdx+2)
			if err != nil {
				return fmt.Errorf("computing data cell: %w", err)
			}
			if value := allowance.FormatCurrency(row.Field(field)); value != "" {
				f.SetCellValue(sheet, cell, value)
			}
			f.SetCellStyle(sheet, cell, cell, styles.data)
		}
	}

	// Keep the header row visible while scrolling.
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header row: %w", err)
	}

	f.SetColWidth(sheet, "A", "A", 7)
	last, _ := excelize.ColumnNumberToName(1 + len(allowance.RateFields))
	f.SetColWidth(sheet, "B", last, 16)
	return nil
}

// uniqueSheetName converts a class name to a legal, unused Excel sheet
// name: forbidden characters replaced, trimmed to 31 chars, numeric
// suffix on collision.
func uniqueSheetName(class string, used map[string]bool) string {
	name := class
	for _, c := range []string{":", "\\", "/", "?", "*", "[", "]"} {
		name = strings.ReplaceAll(name, c, "_")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Class"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	if strings.EqualFold(name, indexSheet) {
		name = name + "_"
	}
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		if len(name)+len(suffix) > 31 {
			candidate = name[:31-len(suffix)] + suffix
		} else {
			candidate = name + suffix
		}
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
