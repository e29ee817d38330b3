package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger row.
type EntryType string

const (
	EntryTypePurchase EntryType = "PURCHASE"
	EntryTypePayment  EntryType = "PAYMENT"
)

// Entry represents one parsed ledger row. Immutable once produced by a
// parser; amounts are always positive.
type Entry struct {
	Date     time.Time
	Type     EntryType
	Supplier string
	Amount   decimal.Decimal
}

// Parser turns raw spreadsheet bytes into an ordered list of ledger entries.
type Parser interface {
	Parse(data []byte, filename string) ([]Entry, error)
}

// LedgerNameFromFilename derives a display name from an upload filename by
// stripping the trailing extension. A missing filename maps to "Unknown".
func LedgerNameFromFilename(filename string) string {
	if filename == "" {
		return "Unknown"
	}
	if dot := strings.LastIndex(filename, "."); dot > 0 {
		return filename[:dot]
	}
	return filename
}
