package application

import (
	rule37 "rule37-cloud/internal/rule37/domain"
)

const dateLayout = "2006-01-02"

// UploadResult is the response body for a processed upload batch.
type UploadResult struct {
	RunID    string            `json:"runId"`
	Filename string            `json:"filename"`
	Results  []LedgerResultDTO `json:"results"`
	Errors   []FileUploadError `json:"errors,omitempty"`
}

// HasErrors reports whether any file in the batch failed.
func (r *UploadResult) HasErrors() bool { return len(r.Errors) > 0 }

// LedgerResultDTO is the wire form of one ledger's calculation.
type LedgerResultDTO struct {
	LedgerName string                `json:"ledgerName"`
	Summary    CalculationSummaryDTO `json:"summary"`
}

// CalculationSummaryDTO is the wire form of a calculation summary.
type CalculationSummaryDTO struct {
	TotalInterest    string           `json:"totalInterest"`
	TotalItcReversal string           `json:"totalItcReversal"`
	Details          []InterestRowDTO `json:"details"`
	AtRiskCount      int              `json:"atRiskCount"`
	AtRiskAmount     string           `json:"atRiskAmount"`
	BreachedCount    int              `json:"breachedCount"`
	CalculationDate  string           `json:"calculationDate"`
}

// InterestRowDTO is the wire form of one interest row. PaymentDate is
// "Unpaid" when no payment was matched.
type InterestRowDTO struct {
	Supplier        string `json:"supplier"`
	PurchaseDate    string `json:"purchaseDate"`
	PaymentDate     string `json:"paymentDate"`
	Principal       string `json:"principal"`
	DelayDays       int    `json:"delayDays"`
	ItcAmount       string `json:"itcAmount"`
	Interest        string `json:"interest"`
	Status          string `json:"status"`
	PaymentDeadline string `json:"paymentDeadline"`
	RiskCategory    string `json:"riskCategory"`
	Gstr3bPeriod    string `json:"gstr3bPeriod"`
	DaysToDeadline  int    `json:"daysToDeadline"`
}

// ToLedgerResultDTOs converts ledger results to their wire form.
func ToLedgerResultDTOs(results []rule37.LedgerResult) []LedgerResultDTO {
	dtos := make([]LedgerResultDTO, 0, len(results))
	for _, result := range results {
		dtos = append(dtos, LedgerResultDTO{
			LedgerName: result.LedgerName,
			Summary:    toSummaryDTO(result.Summary),
		})
	}
	return dtos
}

func toSummaryDTO(summary rule37.CalculationSummary) CalculationSummaryDTO {
	details := make([]InterestRowDTO, 0, len(summary.Details))
	for _, row := range summary.Details {
		paymentDate := "Unpaid"
		if row.PaymentDate != nil {
			paymentDate = row.PaymentDate.Format(dateLayout)
		}
		details = append(details, InterestRowDTO{
			Supplier:        row.Supplier,
			PurchaseDate:    row.PurchaseDate.Format(dateLayout),
			PaymentDate:     paymentDate,
			Principal:       row.Principal.StringFixed(2),
			DelayDays:       row.DelayDays,
			ItcAmount:       row.ITCAmount.StringFixed(2),
			Interest:        row.Interest.StringFixed(2),
			Status:          string(row.Status),
			PaymentDeadline: row.PaymentDeadline.Format(dateLayout),
			RiskCategory:    string(row.RiskCategory),
			Gstr3bPeriod:    row.GSTR3BPeriod,
			DaysToDeadline:  row.DaysToDeadline,
		})
	}
	return CalculationSummaryDTO{
		TotalInterest:    summary.TotalInterest.StringFixed(2),
		TotalItcReversal: summary.TotalItcReversal.StringFixed(2),
		Details:          details,
		AtRiskCount:      summary.AtRiskCount,
		AtRiskAmount:     summary.AtRiskAmount.StringFixed(2),
		BreachedCount:    summary.BreachedCount,
		CalculationDate:  summary.CalculationDate.Format(dateLayout),
	}
}
