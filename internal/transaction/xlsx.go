package transaction

import (
	"context"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSX reads a transaction table from a workbook sheet. The first row is
// the header. Rows shorter than the header are padded with empty cells, since
// workbooks drop trailing blanks.
func ReadXLSX(ctx context.Context, path string, opts Options) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts.SheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.New("transaction: empty input")
	}

	header := rowToStrings(sheet.Rows[0])
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}

	cursor := 1
	return build(ctx, header, opts, func(line int) ([]string, error) {
		for cursor < len(sheet.Rows) {
			cells := rowToStrings(sheet.Rows[cursor])
			cursor++
			if blank(cells) {
				// Formatting can leave empty rows below the data.
				continue
			}
			return fitRow(cells, len(header), line)
		}
		return nil, io.EOF
	})
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func fitRow(cells []string, width, line int) ([]string, error) {
	if len(cells) > width {
		for _, extra := range cells[width:] {
			if strings.TrimSpace(extra) != "" {
				return nil, eris.Errorf("xlsx: row %d has %d cells, header has %d", line, len(cells), width)
			}
		}
		return cells[:width], nil
	}
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
