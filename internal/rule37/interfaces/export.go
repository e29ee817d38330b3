package interfaces

import (
	rule37 "rule37-cloud/internal/rule37/domain"
)

// ExportStrategy renders a stored calculation run into a downloadable
// document.
type ExportStrategy interface {
	Generate(results []rule37.LedgerResult) ([]byte, error)
	ContentType() string
	FileExtension() string
}

const (
	excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType   = "application/pdf"
)
