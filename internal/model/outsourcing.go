package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/schedule"
)

// OutsourcingEntry is one recorded purchase against a contract for a target
// month. Zero or more entries may exist; when any do, the billing's
// outsourcing amount is their sum instead of the contract default.
type OutsourcingEntry struct {
	ID         uuid.UUID
	ContractID uuid.UUID
	BillingID  *uuid.UUID
	CompanyID  *uuid.UUID

	TargetMonth  schedule.Month
	Amount       decimal.Decimal
	SourceNote   *string
	PurchaseDate *time.Time

	CreatedAt time.Time
}

// Holiday is a date excluded from issue-date proposals.
type Holiday struct {
	ID          uuid.UUID
	HolidayDate time.Time
	Name        string
	CreatedAt   time.Time
}
