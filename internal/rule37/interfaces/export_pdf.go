package interfaces

import (
	"bytes"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	rule37 "rule37-cloud/internal/rule37/domain"
)

// PDFExportStrategy renders a run as a landscape PDF: a summary table
// followed by one page per ledger.
type PDFExportStrategy struct{}

// NewPDFExportStrategy constructs the strategy.
func NewPDFExportStrategy() *PDFExportStrategy {
	return &PDFExportStrategy{}
}

// Generate builds the PDF.
func (s *PDFExportStrategy) Generate(results []rule37.LedgerResult) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Rule 37 Interest Calculation - Summary")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 7, "Ledger Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, "Total ITC Reversal", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 7, "Total Interest", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, result := range results {
		pdf.CellFormat(120, 7, result.LedgerName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, result.Summary.TotalItcReversal.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 7, result.Summary.TotalInterest.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	for _, result := range results {
		writeLedgerPage(pdf, result)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType returns the PDF MIME type.
func (s *PDFExportStrategy) ContentType() string { return pdfContentType }

// FileExtension returns "pdf".
func (s *PDFExportStrategy) FileExtension() string { return "pdf" }

func writeLedgerPage(pdf *gofpdf.Fpdf, result rule37.LedgerResult) {
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, result.LedgerName)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(55, 6, "Supplier", "1", 0, "L", false, 0, "")
	pdf.CellFormat(28, 6, "Purchase Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Payment Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Principal Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Delay Days", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "ITC Amount (18%)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(38, 6, "Interest (18% p.a.)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, detail := range result.Summary.Details {
		paymentDate := "Unpaid"
		if detail.PaymentDate != nil {
			paymentDate = formatExportDate(*detail.PaymentDate)
		}
		status := "Unpaid"
		if detail.Status == rule37.StatusPaidLate {
			status = "Paid Late"
		}
		pdf.CellFormat(55, 6, detail.Supplier, "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, formatExportDate(detail.PurchaseDate), "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, paymentDate, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, detail.Principal.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(22, 6, strconv.Itoa(detail.DelayDays), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, detail.ITCAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(38, 6, detail.Interest.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(80, 6, "TOTAL", "0", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, "ITC Reversal: "+result.Summary.TotalItcReversal.StringFixed(2), "0", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, "Interest: "+result.Summary.TotalInterest.StringFixed(2), "0", 0, "L", false, 0, "")
	pdf.Ln(-1)
}
