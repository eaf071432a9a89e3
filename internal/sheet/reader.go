// =============================================================================
// Inventario - Spreadsheet Line Items
// =============================================================================
//
// Reads purchase or sale line items from a spreadsheet so that a whole
// delivery note can be registered in one go, and writes result tables back
// out as XLSX.
//
// INPUT LAYOUT:
//   The first non-empty row is the header. Column order does not matter;
//   headers are matched case-insensitively against these aliases:
//
//   | Field    | Accepted headers                                   |
//   |----------|----------------------------------------------------|
//   | ID       | id, codigo, code                                   |
//   | Name     | nombre, name, producto, product                    |
//   | Quantity | cantidad, quantity, qty                            |
//   | Price    | precio, price, precio_compra, precio_venta         |
//
//   A name column is required. Empty rows are skipped.
//
// FORMATS:
//   - .xlsx / .xlsm : first sheet, read with excelize
//   - .csv / .txt   : delimited text; the delimiter is configurable
//
// =============================================================================

package sheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoNameColumn is returned when the header row has no name column.
var ErrNoNameColumn = errors.New("no name column in header")

// =============================================================================
// ITEM STRUCTURE
// =============================================================================

// Item is one line item read from a spreadsheet. Amounts are kept as the
// cell text; the form decides whether they parse.
type Item struct {
	// Line is the 1-based row number in the source sheet.
	Line int

	ID       string
	Name     string
	Quantity string
	Price    string
}

// Options controls how a file is read.
type Options struct {
	// Delimiter for CSV input: ",", ";", "|", "tab". Default: ",".
	Delimiter string
}

var headerAliases = map[string][]string{
	"id":       {"id", "codigo", "code"},
	"name":     {"nombre", "name", "producto", "product"},
	"quantity": {"cantidad", "quantity", "qty"},
	"price":    {"precio", "price", "precio_compra", "precio_venta"},
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadItems reads line items from an XLSX or CSV file, choosing the format
// by file extension.
//
// PARAMETERS:
//   - path: The spreadsheet to read.
//   - opts: Reader options; only used for CSV input.
//
// RETURNS:
//   - The items in sheet order.
//   - An error if the file cannot be read or has no name column.
func ReadItems(path string, opts Options) ([]Item, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".csv", ".txt":
		rows, err = readCSV(path, opts.Delimiter)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .xlsx or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return itemsFromRows(rows)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

func readCSV(path, delimiter string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.Comma = delimiterRune(delimiter)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// delimiterRune maps a configured delimiter name to its rune.
func delimiterRune(d string) rune {
	switch d {
	case "\\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case "":
		return ','
	default:
		return rune(d[0])
	}
}

// itemsFromRows locates the header row and maps every later row to an Item.
func itemsFromRows(rows [][]string) ([]Item, error) {
	header := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	cols := mapColumns(rows[header])
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoNameColumn, strings.Join(rows[header], ", "))
	}

	items := []Item{}
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		getCell := func(field string) string {
			idx, ok := cols[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		items = append(items, Item{
			Line:     i + 1,
			ID:       getCell("id"),
			Name:     getCell("name"),
			Quantity: getCell("quantity"),
			Price:    getCell("price"),
		})
	}
	return items, nil
}

// mapColumns returns field -> column index. The first matching column wins.
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for field, aliases := range headerAliases {
			if _, seen := cols[field]; seen {
				continue
			}
			for _, a := range aliases {
				if h == a {
					cols[field] = i
				}
			}
		}
	}
	return cols
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
