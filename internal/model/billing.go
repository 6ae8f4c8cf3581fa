package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/schedule"
)

type BillingStatus string

const (
	BillingStatusDraft     BillingStatus = "draft"
	BillingStatusConfirmed BillingStatus = "confirmed"
	BillingStatusLocked    BillingStatus = "locked"
	BillingStatusCancelled BillingStatus = "cancelled"
)

// Editable reports whether the record still accepts overrides.
func (s BillingStatus) Editable() bool {
	return s == BillingStatusDraft || s == BillingStatusConfirmed
}

// Final reports whether the record blocks implicit regeneration.
func (s BillingStatus) Final() bool {
	return s == BillingStatusConfirmed || s == BillingStatusLocked
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning is one flagged validation finding. Warnings are advisory and never
// block record creation.
type Warning struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// WarningList is stored as a JSON column on the billing record.
type WarningList []Warning

func (l WarningList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *WarningList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			data = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into WarningList", value)
		}
	}
	return json.Unmarshal(data, l)
}

// Provenance records whether a billing field still holds the engine-computed
// value or a user override.
type Provenance string

const (
	ProvenanceComputed   Provenance = "computed"
	ProvenanceOverridden Provenance = "overridden"
)

// Billing field names used as provenance keys.
const (
	FieldAmount      = "amount"
	FieldVAT         = "vat"
	FieldOutsourcing = "outsourcing"
	FieldProfit      = "profit"
	FieldIssueDate   = "issue_date"
)

// FieldProvenance maps field name to provenance, stored as JSON. Each field
// tracks its origin independently so overriding one does not touch the audit
// state of the others.
type FieldProvenance map[string]Provenance

// Computed returns a provenance map with every tracked field marked computed.
func ComputedProvenance() FieldProvenance {
	return FieldProvenance{
		FieldAmount:      ProvenanceComputed,
		FieldVAT:         ProvenanceComputed,
		FieldOutsourcing: ProvenanceComputed,
		FieldProfit:      ProvenanceComputed,
		FieldIssueDate:   ProvenanceComputed,
	}
}

func (p FieldProvenance) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *FieldProvenance) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	data, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			data = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into FieldProvenance", value)
		}
	}
	return json.Unmarshal(data, p)
}

// MonthlyBilling is one billing record for a contract and target month. At
// most one non-cancelled record exists per (contract, month).
type MonthlyBilling struct {
	ID         uuid.UUID
	ContractID uuid.UUID

	TargetMonth schedule.Month
	CoverMonths int

	CalculatedAmount decimal.Decimal
	OverrideAmount   decimal.NullDecimal
	FinalAmount      decimal.Decimal

	VATAmount   decimal.Decimal
	TotalAmount decimal.Decimal

	OutsourcingAmount decimal.Decimal
	// OutsourcingDefaulted is set when no purchase entries existed and the
	// contract default was applied.
	OutsourcingDefaulted bool
	Profit               decimal.Decimal

	SuggestedDate *time.Time // engine proposal, business-day adjusted
	SalesDate     *time.Time // invoice date, defaults to the proposal
	RequestDate   *time.Time

	Status BillingStatus

	Warnings    WarningList
	HasWarnings bool

	Provenance FieldProvenance

	Memo      *string
	CreatedAt time.Time
	UpdatedAt time.Time
	LockedAt  *time.Time
	LockedBy  *string
}
