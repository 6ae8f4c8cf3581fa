package billing

import "github.com/shopspring/decimal"

// Policy carries the configurable business constants. The exact expiry
// look-ahead and default issue day are organizational policy, so they are
// injected rather than hard-coded.
type Policy struct {
	// VATRate is the tax rate applied to the billed amount, e.g. 0.10.
	VATRate decimal.Decimal
	// SuddenChangePercent is the month-over-month change above which the
	// amount-change warning fires. Strictly greater than.
	SuddenChangePercent int
	// ExpiryLookaheadDays is the window ahead of the target month in which a
	// non-renewing contract's end date raises the expiring warning.
	ExpiryLookaheadDays int
	// BusinessDaySearchLimit bounds the backward business-day search.
	BusinessDaySearchLimit int
	// DefaultIssueDay is the issue day of month when the contract's timing
	// text does not specify one; 0 means last day of the month.
	DefaultIssueDay int
}

func DefaultPolicy() Policy {
	return Policy{
		VATRate:                decimal.New(1, -1), // 10%
		SuddenChangePercent:    30,
		ExpiryLookaheadDays:    60,
		BusinessDaySearchLimit: 14,
		DefaultIssueDay:        0,
	}
}
