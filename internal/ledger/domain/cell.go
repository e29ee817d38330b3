package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Cell coercion for the raw string grids produced by the workbook readers.
// All heuristics live here so the parser proper only deals with layout.

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"2 Jan 2006",
	"02-Jan-2006",
	time.RFC3339,
}

// parseDateCell coerces a raw cell into a calendar date. It accepts ISO and
// common Indian dd-mm layouts, RFC3339 timestamps from native date cells,
// and Excel date serial numbers.
func parseDateCell(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return midnightUTC(parsed), true
		}
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 1 || serial > 300000 {
		return time.Time{}, false
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return midnightUTC(parsed), true
}

// parseAmountCell coerces a raw cell into a money amount. Currency symbols,
// thousands separators and other noise are stripped; unparseable cells
// count as zero.
func parseAmountCell(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// normalizeHeader lowercases a header cell and strips everything that is
// not a letter, so "Dr.", " DEBIT " and "debit" all match the same way.
func normalizeHeader(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
