package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(doc model.BillingStatement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Maintenance Billing Statement", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Billing month: %s", doc.Billing.TargetMonth.String()), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract period: %s - %s",
		formatDatePtr(doc.Contract.ContractStart),
		formatDatePtr(doc.Contract.ContractEnd),
	), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	lines := []string{
		doc.Company.Name,
		fmt.Sprintf("Code: %s", safeValue(doc.Company.Code)),
		fmt.Sprintf("Warehouse: %s", safeValue(warehouse(doc.Company))),
		fmt.Sprintf("Item: %s", safeValue(doc.Contract.ItemName)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Amounts", "", 1, "L", false, 0, "")

	headers := []string{"Description", "Months", "Amount"}
	colWidths := []float64{110, 25, 45}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	row := []string{
		"Maintenance fee",
		fmt.Sprintf("%d", doc.Billing.CoverMonths),
		formatAmount(doc.Billing.FinalAmount),
	}
	drawTableRow(pdf, g.fontName, row, colWidths, false)

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("VAT: %s", formatAmount(doc.Billing.VATAmount)), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total due: %s", formatAmount(doc.Billing.TotalAmount)), "", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)

	pdf.Ln(2)
	pdf.CellFormat(0, 6, fmt.Sprintf("Issue date: %s", formatDatePtr(doc.Billing.SalesDate)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Payment request date: %s", formatDatePtr(doc.Billing.RequestDate)), "", 1, "L", false, 0, "")

	if doc.Contract.ReverseBilling {
		pdf.SetTextColor(200, 0, 0)
		pdf.MultiCell(0, 6, "Reverse billing: the tax invoice for this contract is issued by the counterparty.", "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	if doc.Billing.Memo != nil {
		if memo := strings.TrimSpace(*doc.Billing.Memo); memo != "" {
			pdf.Ln(2)
			pdf.SetFont(g.fontName, "B", 11)
			pdf.CellFormat(0, 6, "Memo", "", 1, "L", false, 0, "")
			pdf.SetFont(g.fontName, "", 10)
			pdf.MultiCell(0, 5, memo, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func warehouse(company model.Company) string {
	if company.WarehouseCode == nil {
		return ""
	}
	return *company.WarehouseCode
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(0)
}

func formatDatePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
