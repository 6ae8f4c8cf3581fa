package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jaemin/maintbilling/internal/model"
)

// templateHeaders are the A..S columns of the monthly maintenance sheet the
// management team already uses. Order is part of the import/export contract.
var templateHeaders = []string{
	"Warehouse",
	"Code",
	"Company",
	"Item",
	"Contract Start",
	"Contract End",
	"Monthly Amount",
	"Billing Amount",
	"VAT",
	"Total",
	"Outsourcing Company",
	"Outsourcing Amount",
	"Profit",
	"Billing Timing",
	"Sales Date",
	"Request Date",
	"Purchase Date",
	"Notes",
	"Auto Renewal",
}

const sheetName = "Monthly Maintenance"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(export model.BillingExport) ([]byte, error) {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", sheetName)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheetName, cell, value)
	}

	for i, header := range templateHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, row := range export.Rows {
		r := i + 2
		set(fmt.Sprintf("A%d", r), row.WarehouseCode)
		set(fmt.Sprintf("B%d", r), row.CompanyCode)
		set(fmt.Sprintf("C%d", r), row.CompanyName)
		set(fmt.Sprintf("D%d", r), row.ItemName)
		set(fmt.Sprintf("E%d", r), formatDate(row.ContractStart))
		set(fmt.Sprintf("F%d", r), formatDate(row.ContractEnd))
		set(fmt.Sprintf("G%d", r), amountValue(row.MonthlyAmount))
		set(fmt.Sprintf("H%d", r), amountValue(row.BillingAmount))
		set(fmt.Sprintf("I%d", r), amountValue(row.VATAmount))
		set(fmt.Sprintf("J%d", r), amountValue(row.TotalAmount))
		set(fmt.Sprintf("K%d", r), row.OutsourcingCompany)
		set(fmt.Sprintf("L%d", r), amountValue(row.OutsourcingAmount))
		set(fmt.Sprintf("M%d", r), amountValue(row.Profit))
		set(fmt.Sprintf("N%d", r), row.BillingTiming)
		set(fmt.Sprintf("O%d", r), formatDate(row.SalesDate))
		set(fmt.Sprintf("P%d", r), formatDate(row.RequestDate))
		set(fmt.Sprintf("Q%d", r), formatDate(row.PurchaseDate))
		set(fmt.Sprintf("R%d", r), row.Notes)
		set(fmt.Sprintf("S%d", r), formatBool(row.AutoRenewal))
	}

	totalRow := len(export.Rows) + 2
	set(fmt.Sprintf("C%d", totalRow), "Total")
	set(fmt.Sprintf("H%d", totalRow), amountValue(export.TotalBilling))
	set(fmt.Sprintf("L%d", totalRow), amountValue(export.TotalOutsourcing))
	set(fmt.Sprintf("M%d", totalRow), amountValue(export.TotalProfit))

	_ = file.SetColWidth(sheetName, "A", "B", 10)
	_ = file.SetColWidth(sheetName, "C", "D", 32)
	_ = file.SetColWidth(sheetName, "E", "F", 14)
	_ = file.SetColWidth(sheetName, "G", "M", 16)
	_ = file.SetColWidth(sheetName, "N", "N", 20)
	_ = file.SetColWidth(sheetName, "O", "Q", 14)
	_ = file.SetColWidth(sheetName, "R", "R", 40)
	_ = file.SetColWidth(sheetName, "S", "S", 12)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatBool(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func amountValue(d decimal.Decimal) float64 {
	value, _ := d.Float64()
	return value
}
