package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/resale-geojoin/internal/join"
	"github.com/sells-group/resale-geojoin/internal/transaction"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "transactions"

// WriteXLSX writes the same table as WriteCSV to a workbook. Numeric columns
// become numeric cells.
func WriteXLSX(path string, res join.Result) (int, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return 0, eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, name := range Header(res) {
		header.AddCell().SetString(name)
	}

	for _, row := range res.Rows {
		r := sheet.AddRow()
		for i, raw := range row.Record.Fields {
			cell := r.AddCell()
			kind := transaction.KindString
			if i < len(res.Kinds) {
				kind = res.Kinds[i]
			}
			switch v := transaction.Typed(raw, kind).(type) {
			case nil:
			case int64:
				cell.SetInt64(v)
			case float64:
				cell.SetFloat(v)
			default:
				cell.SetString(raw)
			}
		}
		r.AddCell().SetFloat(row.Longitude)
		r.AddCell().SetFloat(row.Latitude)
	}

	if err := f.Save(path); err != nil {
		return 0, eris.Wrapf(err, "xlsx: save %s", path)
	}
	return len(res.Rows), nil
}
