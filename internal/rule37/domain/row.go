package rule37

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status classifies an interest row outcome.
type Status string

const (
	StatusPaidLate Status = "PAID_LATE"
	StatusUnpaid   Status = "UNPAID"
)

// RiskCategory buckets a purchase by payment delay for compliance
// follow-up.
type RiskCategory string

const (
	// RiskSafe means paid or outstanding within 150 days.
	RiskSafe RiskCategory = "SAFE"
	// RiskAtRisk means 151-180 days, approaching the deadline.
	RiskAtRisk RiskCategory = "AT_RISK"
	// RiskBreached means past the 180 day deadline, reversal required.
	RiskBreached RiskCategory = "BREACHED"
)

// InterestRow is one Rule 37 finding: a purchase slice either paid more
// than 180 days late or still unpaid past the threshold.
type InterestRow struct {
	Supplier        string          `json:"supplier"`
	PurchaseDate    time.Time       `json:"purchaseDate"`
	PaymentDate     *time.Time      `json:"paymentDate,omitempty"` // nil iff status is UNPAID
	Principal       decimal.Decimal `json:"principal"`
	DelayDays       int             `json:"delayDays"`
	ITCAmount       decimal.Decimal `json:"itcAmount"`
	Interest        decimal.Decimal `json:"interest"`
	Status          Status          `json:"status"`
	PaymentDeadline time.Time       `json:"paymentDeadline"`
	RiskCategory    RiskCategory    `json:"riskCategory"`
	GSTR3BPeriod    string          `json:"gstr3bPeriod"`
	DaysToDeadline  int             `json:"daysToDeadline"`
}

// CalculationSummary aggregates one ledger's Rule 37 findings. The interest
// total covers both late-paid and unpaid rows; the reversal total covers
// unpaid rows only, since the reversal obligation lapses once paid.
type CalculationSummary struct {
	TotalInterest    decimal.Decimal `json:"totalInterest"`
	TotalItcReversal decimal.Decimal `json:"totalItcReversal"`
	Details          []InterestRow   `json:"details"`
	AtRiskCount      int             `json:"atRiskCount"`
	AtRiskAmount     decimal.Decimal `json:"atRiskAmount"`
	BreachedCount    int             `json:"breachedCount"`
	CalculationDate  time.Time       `json:"calculationDate"`
}

// LedgerResult pairs a ledger name with its calculation summary. One per
// input file; never mutated after creation.
type LedgerResult struct {
	LedgerName string             `json:"ledgerName"`
	Summary    CalculationSummary `json:"summary"`
}
