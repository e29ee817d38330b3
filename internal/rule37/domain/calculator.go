package rule37

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	ledger "rule37-cloud/internal/ledger/domain"
)

// Rule 37 constants: 18% GST embedded in gross purchase amounts, 18% p.a.
// interest on the reversible credit, 180 day payment deadline.
const (
	thresholdDays = 180
	atRiskDays    = 150
	daysInYear    = 365
)

var (
	itcNumerator   = decimal.NewFromInt(18)
	itcDenominator = decimal.NewFromInt(118)
	interestRate   = decimal.RequireFromString("0.18")
)

// Calculator computes delayed-payment interest and ITC reversal amounts
// per Rule 37. Pure and deterministic: the same entries and as-on date
// always produce the same summary.
type Calculator struct{}

// NewCalculator constructs a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// openItem is a purchase or payment with its unmatched remainder. Items
// live in per-supplier slices walked by a front cursor; an item whose
// remainder hits zero is passed over by advancing the cursor.
type openItem struct {
	date      time.Time
	remaining decimal.Decimal
}

// Calculate sorts entries by date, partitions them into per-supplier FIFO
// purchase and payment queues, matches oldest against oldest with partial
// splitting, and prices every slice paid or outstanding more than 180 days
// late.
func (c *Calculator) Calculate(entries []ledger.Entry, asOnDate time.Time) CalculationSummary {
	sorted := make([]ledger.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	purchases := make(map[string][]openItem)
	payments := make(map[string][]openItem)
	var supplierOrder []string
	for _, entry := range sorted {
		if entry.Type == ledger.EntryTypePurchase {
			if _, ok := purchases[entry.Supplier]; !ok {
				supplierOrder = append(supplierOrder, entry.Supplier)
			}
			purchases[entry.Supplier] = append(purchases[entry.Supplier], openItem{date: entry.Date, remaining: entry.Amount})
			continue
		}
		// Payments for suppliers without purchases never produce rows.
		payments[entry.Supplier] = append(payments[entry.Supplier], openItem{date: entry.Date, remaining: entry.Amount})
	}

	var rows []InterestRow
	for _, supplier := range supplierOrder {
		rows = matchSupplier(supplier, purchases[supplier], payments[supplier], asOnDate, rows)
	}
	return buildSummary(rows, asOnDate)
}

func matchSupplier(supplier string, purchases, payments []openItem, asOnDate time.Time, rows []InterestRow) []InterestRow {
	pi, yi := 0, 0
	for pi < len(purchases) && yi < len(payments) {
		purchase := &purchases[pi]
		payment := &payments[yi]
		matched := decimal.Min(purchase.remaining, payment.remaining)
		delayDays := wholeDaysBetween(purchase.date, payment.date)
		if delayDays > thresholdDays {
			paidOn := payment.date
			rows = append(rows, buildRow(supplier, purchase.date, &paidOn, matched, delayDays, StatusPaidLate, asOnDate))
		}
		purchase.remaining = purchase.remaining.Sub(matched)
		payment.remaining = payment.remaining.Sub(matched)
		if purchase.remaining.Sign() <= 0 {
			pi++
		}
		if payment.remaining.Sign() <= 0 {
			yi++
		}
	}

	// Whatever is left in the purchase queue has no payment to match;
	// measure the delay against the as-on date instead.
	for ; pi < len(purchases); pi++ {
		delayDays := wholeDaysBetween(purchases[pi].date, asOnDate)
		if delayDays > thresholdDays {
			rows = append(rows, buildRow(supplier, purchases[pi].date, nil, purchases[pi].remaining, delayDays, StatusUnpaid, asOnDate))
		}
	}
	return rows
}

func buildRow(supplier string, purchaseDate time.Time, paymentDate *time.Time, principal decimal.Decimal, delayDays int, status Status, asOnDate time.Time) InterestRow {
	itcAmount := principal.Mul(itcNumerator).Div(itcDenominator).Round(2)
	interest := itcAmount.Mul(interestRate).Mul(decimal.NewFromInt(int64(delayDays))).Div(decimal.NewFromInt(daysInYear)).Round(2)
	deadline := purchaseDate.AddDate(0, 0, thresholdDays)
	return InterestRow{
		Supplier:        supplier,
		PurchaseDate:    purchaseDate,
		PaymentDate:     paymentDate,
		Principal:       principal,
		DelayDays:       delayDays,
		ITCAmount:       itcAmount,
		Interest:        interest,
		Status:          status,
		PaymentDeadline: deadline,
		RiskCategory:    categorizeRisk(delayDays),
		GSTR3BPeriod:    gstr3bPeriod(deadline),
		DaysToDeadline:  wholeDaysBetween(asOnDate, deadline),
	}
}

func buildSummary(rows []InterestRow, asOnDate time.Time) CalculationSummary {
	if rows == nil {
		rows = []InterestRow{}
	}
	totalInterest := decimal.Zero
	totalItcReversal := decimal.Zero
	atRiskAmount := decimal.Zero
	atRiskCount := 0
	breachedCount := 0
	for _, row := range rows {
		totalInterest = totalInterest.Add(row.Interest)
		if row.Status == StatusUnpaid {
			totalItcReversal = totalItcReversal.Add(row.ITCAmount)
		}
		switch row.RiskCategory {
		case RiskAtRisk:
			atRiskCount++
			atRiskAmount = atRiskAmount.Add(row.Principal)
		case RiskBreached:
			breachedCount++
		}
	}
	return CalculationSummary{
		TotalInterest:    totalInterest.Round(2),
		TotalItcReversal: totalItcReversal.Round(2),
		Details:          rows,
		AtRiskCount:      atRiskCount,
		AtRiskAmount:     atRiskAmount.Round(2),
		BreachedCount:    breachedCount,
		CalculationDate:  asOnDate,
	}
}

func categorizeRisk(delayDays int) RiskCategory {
	if delayDays <= atRiskDays {
		return RiskSafe
	}
	if delayDays <= thresholdDays {
		return RiskAtRisk
	}
	return RiskBreached
}

// gstr3bPeriod names the GSTR-3B return period in which the reversal falls
// due: the month after the payment deadline.
func gstr3bPeriod(deadline time.Time) string {
	return deadline.AddDate(0, 1, 0).Format("Jan 2006")
}

func wholeDaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
