package rule37

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationRun is a persisted upload run. Created once per successful
// batch, never mutated, removed on explicit delete or by the retention
// sweep once ExpiresAt has passed.
type CalculationRun struct {
	ID               string
	TenantID         string
	Filename         string
	AsOnDate         time.Time
	TotalInterest    decimal.Decimal
	TotalItcReversal decimal.Decimal
	CalculationData  []LedgerResult
	CreatedAt        time.Time
	CreatedBy        string
	ExpiresAt        time.Time
}
