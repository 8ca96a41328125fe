package sink

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/vvka-141/cimflat/internal/table"
)

// XLSXSink writes one workbook per table with a single sheet named after
// the class. The header row is frozen.
type XLSXSink struct {
	fileSink
}

func (s *XLSXSink) Name() string { return "xlsx:" + s.suffix }

func (s *XLSXSink) Write(ctx context.Context, t *table.Table) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	path := s.path(t.Name, "xlsx")
	book, err := buildWorkbook(ctx, t)
	if err != nil {
		return Report{}, fmt.Errorf("build %s: %w", path, err)
	}
	defer book.Close()

	f, err := s.create(path)
	if err != nil {
		return Report{}, err
	}
	if err := book.Write(f); err != nil {
		f.Close()
		return Report{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Report{}, fmt.Errorf("close %s: %w", path, err)
	}

	return Report{Sink: s.Name(), Table: t.Name, Rows: t.Len(), Location: path}, nil
}

func buildWorkbook(ctx context.Context, t *table.Table) (*excelize.File, error) {
	book := excelize.NewFile()
	sheet := sheetName(t.Name)
	if err := book.SetSheetName(book.GetSheetName(0), sheet); err != nil {
		book.Close()
		return nil, err
	}

	sw, err := book.NewStreamWriter(sheet)
	if err != nil {
		book.Close()
		return nil, err
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		book.Close()
		return nil, err
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		book.Close()
		return nil, err
	}

	for i := range t.Rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				book.Close()
				return nil, err
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			book.Close()
			return nil, err
		}
		// Absent cells are nil and stay empty in the sheet.
		if err := sw.SetRow(cell, t.Values(i)); err != nil {
			book.Close()
			return nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		book.Close()
		return nil, err
	}
	return book, nil
}

var invalidSheetChars = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// sheetName maps a class to a valid worksheet name: no reserved characters,
// no surrounding quotes, at most excelize.MaxSheetNameLength runes.
func sheetName(class string) string {
	name := strings.Trim(invalidSheetChars.Replace(class), "'")
	if utf8.RuneCountInString(name) > excelize.MaxSheetNameLength {
		name = string([]rune(name)[:excelize.MaxSheetNameLength])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}
