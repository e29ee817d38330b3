package ledger

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SpreadsheetParser parses Tally/Busy style ledger workbooks (.xlsx and
// legacy .xls) into ledger entries.
//
// Column mapping is header based: date, debit/dr, credit/cr and
// supplier/party/ledger/name are located independently on normalized
// headers. A sheet with exactly four columns and no credit header falls
// back to the fixed positional layout [Date, Debit, Credit, Supplier].
type SpreadsheetParser struct{}

// NewSpreadsheetParser constructs a parser.
func NewSpreadsheetParser() *SpreadsheetParser {
	return &SpreadsheetParser{}
}

// Parse implements Parser.
func (p *SpreadsheetParser) Parse(data []byte, filename string) ([]Entry, error) {
	defaultSupplier := LedgerNameFromFilename(filename)

	grid, err := readGrid(data, filename)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, &ParseError{Message: "spreadsheet is empty"}
	}

	headers := grid[0]
	if len(headers) == 0 {
		return nil, &ParseError{Message: "spreadsheet has no header row"}
	}
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	dateIdx := findHeader(normalized, func(h string) bool {
		return strings.Contains(h, "date")
	})
	debitIdx := findHeader(normalized, func(h string) bool {
		return strings.Contains(h, "debit") || strings.Contains(h, "dr")
	})
	creditIdx := findHeader(normalized, func(h string) bool {
		return strings.Contains(h, "credit") || strings.Contains(h, "cr")
	})
	supplierIdx := findHeader(normalized, func(h string) bool {
		return strings.Contains(h, "supplier") || strings.Contains(h, "party") ||
			strings.Contains(h, "ledger") || strings.Contains(h, "name")
	})

	// Exactly four columns and no credit header: positional layout, no
	// header matching at all.
	if len(headers) == 4 && creditIdx == -1 {
		return parseRows(grid, 0, 1, 2, 3, defaultSupplier)
	}

	if dateIdx == -1 {
		return nil, newParseErrorf("could not find date column, found headers: %s", strings.Join(headers, ", "))
	}
	if debitIdx == -1 && creditIdx == -1 {
		return nil, newParseErrorf("could not find debit or credit columns, found headers: %s", strings.Join(headers, ", "))
	}
	return parseRows(grid, dateIdx, debitIdx, creditIdx, supplierIdx, defaultSupplier)
}

func parseRows(grid [][]string, dateIdx, debitIdx, creditIdx, supplierIdx int, defaultSupplier string) ([]Entry, error) {
	var entries []Entry
	for _, row := range grid[1:] {
		date, ok := parseDateCell(cellAt(row, dateIdx))
		if !ok {
			continue
		}
		debit := decimal.Zero
		if debitIdx >= 0 {
			debit = parseAmountCell(cellAt(row, debitIdx))
		}
		credit := decimal.Zero
		if creditIdx >= 0 {
			credit = parseAmountCell(cellAt(row, creditIdx))
		}
		if debit.Sign() <= 0 && credit.Sign() <= 0 {
			continue
		}

		supplier := ""
		if supplierIdx >= 0 {
			supplier = strings.TrimSpace(cellAt(row, supplierIdx))
		}
		if supplier == "" {
			supplier = defaultSupplier
		}

		entry := Entry{Date: date, Supplier: supplier}
		if debit.Sign() > 0 {
			entry.Type = EntryTypePayment
			entry.Amount = debit
		} else {
			entry.Type = EntryTypePurchase
			entry.Amount = credit
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, &ParseError{Message: "no valid entries found: check that date, debit and credit columns have valid data"}
	}
	return entries, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func findHeader(headers []string, match func(string) bool) int {
	for i, h := range headers {
		if match(h) {
			return i
		}
	}
	return -1
}

var oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0}

func readGrid(data []byte, filename string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xls") || bytes.HasPrefix(data, oleMagic) {
		return readXLSGrid(data)
	}
	return readXLSXGrid(data)
}

func readXLSXGrid(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newParseErrorf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Message: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, newParseErrorf("failed to read sheet %q: %v", sheets[0], err)
	}
	return rows, nil
}

func readXLSGrid(data []byte) ([][]string, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, newParseErrorf("failed to open workbook: %v", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, &ParseError{Message: "workbook has no sheets"}
	}
	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}
