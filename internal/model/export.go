package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/schedule"
)

// BillingExportRow is one spreadsheet row in the monthly template. The column
// set mirrors the hand-maintained sheet this system replaced, so exports drop
// into the existing workflow unchanged.
type BillingExportRow struct {
	WarehouseCode      string
	CompanyCode        string
	CompanyName        string
	ItemName           string
	ContractStart      *time.Time
	ContractEnd        *time.Time
	MonthlyAmount      decimal.Decimal
	BillingAmount      decimal.Decimal
	VATAmount          decimal.Decimal
	TotalAmount        decimal.Decimal
	OutsourcingCompany string
	OutsourcingAmount  decimal.Decimal
	Profit             decimal.Decimal
	BillingTiming      string
	SalesDate          *time.Time
	RequestDate        *time.Time
	PurchaseDate       *time.Time
	Notes              string
	AutoRenewal        bool
}

type BillingExport struct {
	Month            schedule.Month
	Rows             []BillingExportRow
	TotalBilling     decimal.Decimal
	TotalOutsourcing decimal.Decimal
	TotalProfit      decimal.Decimal
}

// BillingStatement is the data for one printable billing statement.
type BillingStatement struct {
	Billing  MonthlyBilling
	Contract Contract
	Company  Company
}

// ImportedRow is one parsed template row. Parse problems are collected per
// row instead of failing the whole sheet.
type ImportedRow struct {
	Row                int                 `json:"row"`
	WarehouseCode      string              `json:"warehouse_code"`
	CompanyCode        string              `json:"company_code"`
	CompanyName        string              `json:"company_name"`
	ItemName           string              `json:"item_name"`
	ContractStart      *time.Time          `json:"contract_start,omitempty"`
	ContractEnd        *time.Time          `json:"contract_end,omitempty"`
	MonthlyAmount      decimal.NullDecimal `json:"monthly_amount"`
	BillingAmount      decimal.NullDecimal `json:"billing_amount"`
	VATAmount          decimal.NullDecimal `json:"vat_amount"`
	TotalAmount        decimal.NullDecimal `json:"total_amount"`
	OutsourcingCompany string              `json:"outsourcing_company"`
	OutsourcingAmount  decimal.NullDecimal `json:"outsourcing_amount"`
	Profit             decimal.NullDecimal `json:"profit"`
	BillingTiming      string              `json:"billing_timing"`
	SalesDate          *time.Time          `json:"sales_date,omitempty"`
	RequestDate        *time.Time          `json:"request_date,omitempty"`
	PurchaseDate       *time.Time          `json:"purchase_date,omitempty"`
	Notes              string              `json:"notes"`
	AutoRenewal        bool                `json:"auto_renewal"`
	Errors             []string            `json:"errors,omitempty"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Rows   []ImportedRow    `json:"rows"`
	Errors []ImportRowError `json:"errors"`
}
