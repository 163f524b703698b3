package spreadsheet

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"sheetexport/columns"
)

const (
	headerFill   = "C0C0C0"
	borderColor  = "000000"
	maxColWidth  = 255
	widthPadding = 2
)

// Workbook is a single-sheet excelize document that records the widest value
// written to each column so columns can be sized to their content.
type Workbook struct {
	file   *excelize.File
	sheet  string
	widths map[int]int
}

// NewWorkbook creates an empty document. A non-empty name renames the sheet.
func NewWorkbook(name string) (*Workbook, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if name != "" && name != sheet {
		if err := f.SetSheetName(sheet, name); err != nil {
			f.Close()
			return nil, fmt.Errorf("error naming sheet %q: %w", name, err)
		}
		sheet = name
	}
	return &Workbook{file: f, sheet: sheet, widths: make(map[int]int)}, nil
}

// File exposes the underlying excelize document.
func (w *Workbook) File() *excelize.File { return w.file }

// Sheet returns the sheet name.
func (w *Workbook) Sheet() string { return w.sheet }

// SetHeader writes a title as an explicit string cell in row 1.
func (w *Workbook) SetHeader(col int, title string) error {
	return w.SetCell(col, 1, title, columns.TypeString)
}

// SetCell writes v at (col, row) as typ. Values that cannot be represented as
// a number or boolean are written as strings.
func (w *Workbook) SetCell(col, row int, v any, typ columns.CellType) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	var text string
	switch typ {
	case columns.TypeNull:
		err = w.file.SetCellValue(w.sheet, cell, nil)
	case columns.TypeNumber:
		if n, ok := toNumber(v); ok {
			text = fmt.Sprint(n)
			err = w.file.SetCellValue(w.sheet, cell, n)
			break
		}
		text = toText(v)
		err = w.file.SetCellStr(w.sheet, cell, text)
	case columns.TypeBool:
		if b, ok := toBool(v); ok {
			text = "FALSE"
			if b {
				text = "TRUE"
			}
			err = w.file.SetCellBool(w.sheet, cell, b)
			break
		}
		text = toText(v)
		err = w.file.SetCellStr(w.sheet, cell, text)
	default:
		text = toText(v)
		err = w.file.SetCellStr(w.sheet, cell, text)
	}
	if err != nil {
		return fmt.Errorf("error writing cell %s: %w", cell, err)
	}
	if n := utf8.RuneCountInString(text); n > w.widths[col] {
		w.widths[col] = n
	}
	return nil
}

// StyleHeader applies the header style to row 1, columns 1..lastCol.
func (w *Workbook) StyleHeader(lastCol int) error {
	if lastCol < 1 {
		return nil
	}
	border := func(side string) excelize.Border {
		return excelize.Border{Type: side, Color: borderColor, Style: 1}
	}
	style, err := w.file.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{border("left"), border("top"), border("right"), border("bottom")},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(lastCol, 1)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(w.sheet, "A1", last, style); err != nil {
		return fmt.Errorf("error styling header: %w", err)
	}
	return nil
}

// AutoSize sets the width of col from the widest value written to it.
func (w *Workbook) AutoSize(col int) error {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	width := float64(w.widths[col])*1.1 + widthPadding
	if width > maxColWidth {
		width = maxColWidth
	}
	if err := w.file.SetColWidth(w.sheet, name, name, width); err != nil {
		return fmt.Errorf("error sizing column %s: %w", name, err)
	}
	return nil
}

// SaveAs serializes the document to path.
func (w *Workbook) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

// Close releases the document's resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	}
	return fmt.Sprint(v)
}

func toNumber(v any) (any, bool) {
	switch t := v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string, []byte:
		s := toText(t)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return nil, false
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(t).Int() != 0, true
	case uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(t).Uint() != 0, true
	case float32:
		return t != 0, true
	case float64:
		return t != 0, true
	case string, []byte:
		b, err := strconv.ParseBool(toText(t))
		return b, err == nil
	}
	return false, false
}
