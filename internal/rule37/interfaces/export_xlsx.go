package interfaces

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	rule37 "rule37-cloud/internal/rule37/domain"
)

const (
	summarySheetName   = "Summary"
	maxSheetNameLength = 31
	exportDateLayout   = "02/01/2006"
)

var sheetNameSanitizer = regexp.MustCompile(`[:\\/?*\[\]]`)

// ExcelExportStrategy renders a run as an xlsx workbook: one summary sheet
// followed by one sheet per ledger.
type ExcelExportStrategy struct{}

// NewExcelExportStrategy constructs the strategy.
func NewExcelExportStrategy() *ExcelExportStrategy {
	return &ExcelExportStrategy{}
}

// Generate builds the workbook.
func (s *ExcelExportStrategy) Generate(results []rule37.LedgerResult) ([]byte, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheetName)

	if err := writeSummarySheet(f, results); err != nil {
		return nil, err
	}
	for _, result := range results {
		sheetName := sanitizeSheetName(result.LedgerName)
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := writeLedgerSheet(f, sheetName, result.Summary); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType returns the xlsx MIME type.
func (s *ExcelExportStrategy) ContentType() string { return excelContentType }

// FileExtension returns "xlsx".
func (s *ExcelExportStrategy) FileExtension() string { return "xlsx" }

func writeSummarySheet(f *excelize.File, results []rule37.LedgerResult) error {
	headers := []string{"Ledger Name", "Total ITC Reversal", "Total Interest"}
	for col, header := range headers {
		if err := setCell(f, summarySheetName, col+1, 1, header); err != nil {
			return err
		}
	}

	row := 2
	grandItc := decimal.Zero
	grandInterest := decimal.Zero
	for _, result := range results {
		if err := setCell(f, summarySheetName, 1, row, result.LedgerName); err != nil {
			return err
		}
		if err := setCell(f, summarySheetName, 2, row, result.Summary.TotalItcReversal.StringFixed(2)); err != nil {
			return err
		}
		if err := setCell(f, summarySheetName, 3, row, result.Summary.TotalInterest.StringFixed(2)); err != nil {
			return err
		}
		grandItc = grandItc.Add(result.Summary.TotalItcReversal)
		grandInterest = grandInterest.Add(result.Summary.TotalInterest)
		row++
	}

	// One blank row before the grand total.
	row++
	if err := setCell(f, summarySheetName, 1, row, "GRAND TOTAL"); err != nil {
		return err
	}
	if err := setCell(f, summarySheetName, 2, row, grandItc.StringFixed(2)); err != nil {
		return err
	}
	if err := setCell(f, summarySheetName, 3, row, grandInterest.StringFixed(2)); err != nil {
		return err
	}

	if err := f.SetColWidth(summarySheetName, "A", "A", 40); err != nil {
		return err
	}
	return f.SetColWidth(summarySheetName, "B", "C", 20)
}

func writeLedgerSheet(f *excelize.File, sheetName string, summary rule37.CalculationSummary) error {
	headers := []string{
		"Supplier", "Purchase Date", "Payment Date", "Principal Amount",
		"Delay Days", "ITC Amount (18%)", "Interest (18% p.a.)", "Status",
	}
	for col, header := range headers {
		if err := setCell(f, sheetName, col+1, 1, header); err != nil {
			return err
		}
	}

	row := 2
	for _, detail := range summary.Details {
		paymentDate := "Unpaid"
		if detail.PaymentDate != nil {
			paymentDate = formatExportDate(*detail.PaymentDate)
		}
		status := "Unpaid"
		if detail.Status == rule37.StatusPaidLate {
			status = "Paid Late"
		}
		values := []any{
			detail.Supplier,
			formatExportDate(detail.PurchaseDate),
			paymentDate,
			detail.Principal.StringFixed(2),
			detail.DelayDays,
			detail.ITCAmount.StringFixed(2),
			detail.Interest.StringFixed(2),
			status,
		}
		for col, value := range values {
			if err := setCell(f, sheetName, col+1, row, value); err != nil {
				return err
			}
		}
		row++
	}

	// Two blank rows before the total.
	row += 2
	if err := setCell(f, sheetName, 1, row, "TOTAL"); err != nil {
		return err
	}
	if err := setCell(f, sheetName, 6, row, summary.TotalItcReversal.StringFixed(2)); err != nil {
		return err
	}
	if err := setCell(f, sheetName, 7, row, summary.TotalInterest.StringFixed(2)); err != nil {
		return err
	}

	widths := []float64{30, 15, 15, 18, 12, 18, 20, 12}
	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func formatExportDate(t time.Time) string {
	return t.Format(exportDateLayout)
}

func sanitizeSheetName(name string) string {
	if name == "" {
		return "Sheet"
	}
	sanitized := sheetNameSanitizer.ReplaceAllString(name, "_")
	if len(sanitized) > maxSheetNameLength {
		return sanitized[:maxSheetNameLength]
	}
	return sanitized
}
