package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChangeType string

const (
	ChangeTypeAmount      ChangeType = "amount"
	ChangeTypePeriod      ChangeType = "period"
	ChangeTypeOutsourcing ChangeType = "outsourcing"
	ChangeTypeStatus      ChangeType = "status"
	ChangeTypeOverride    ChangeType = "override"
)

// ContractHistory is one amendment in a contract's append-only change log.
// Entries are never updated or deleted; amount resolution picks the latest
// entry whose effective date is on or before the billing month.
type ContractHistory struct {
	ID         uuid.UUID
	ContractID uuid.UUID

	ChangeType    ChangeType
	EffectiveDate time.Time

	OldAmount decimal.NullDecimal
	NewAmount decimal.NullDecimal

	Reason    *string
	CreatedBy *string
	CreatedAt time.Time
}
