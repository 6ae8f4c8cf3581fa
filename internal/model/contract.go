package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/schedule"
)

type ContractStatus string

const (
	ContractStatusActive          ContractStatus = "active"
	ContractStatusExpired         ContractStatus = "expired"
	ContractStatusTerminated      ContractStatus = "terminated"
	ContractStatusPeriodUndefined ContractStatus = "period_undefined"
)

type Contract struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	ItemName  string

	// Unset dates mean the contract period is not finalized yet. Billing
	// proceeds but the record is flagged.
	ContractStart *time.Time
	ContractEnd   *time.Time

	MonthlyAmount decimal.Decimal

	BillingCycle  schedule.Cycle
	BillingTiming string // free-text issue-timing from the source spreadsheet

	AutoRenewal         bool
	RenewalPeriodMonths int

	ReverseBilling bool

	DefaultOutsourcingCompanyID *uuid.UUID
	DefaultOutsourcingAmount    decimal.Decimal
	// OutsourcingAmountZero marks zero as an intentional value, not missing
	// data.
	OutsourcingAmountZero bool

	Status ContractStatus
	Notes  *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Company Company `gorm:"-"`
}

// PeriodStatusAt resolves the contract's active window as of the first day of
// the target month, rolling auto-renewal forward as needed.
func (c Contract) PeriodStatusAt(month schedule.Month) schedule.PeriodStatus {
	return schedule.ContractPeriodStatus(
		c.ContractStart,
		c.ContractEnd,
		c.AutoRenewal,
		c.RenewalPeriodMonths,
		month.First(),
	)
}
