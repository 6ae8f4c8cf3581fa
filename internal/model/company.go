package model

import (
	"time"

	"github.com/google/uuid"
)

type CompanyType string

const (
	CompanyTypeSales    CompanyType = "sales"    // maintenance customer, billed by us
	CompanyTypePurchase CompanyType = "purchase" // outsourcing vendor, billing us
)

type Company struct {
	ID            uuid.UUID
	Code          string
	Name          string
	CompanyType   CompanyType
	WarehouseCode *string // team grouping for reporting
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CompanyRule carries per-company billing policy flags such as purchase-order
// or attachment requirements.
type CompanyRule struct {
	ID                 uuid.UUID
	CompanyID          uuid.UUID
	RequiresPO         bool
	RequiresAttachment bool
	AttachmentNote     *string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CodeMapping resolves a warehouse/team code to a display label. Consumed by
// reporting only.
type CodeMapping struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Category  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
