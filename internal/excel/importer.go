package excel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jaemin/maintbilling/internal/model"
)

// Importer parses workbooks in the monthly template layout back into rows.
// Hand-edited sheets come back with mixed date formats, thousand separators
// and currency markers, so each cell is cleaned up before parsing and a bad
// cell flags the row instead of aborting the sheet.
type Importer struct{}

func NewImporter() *Importer {
	return &Importer{}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"01-02-06",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func (im *Importer) Parse(data []byte) (model.ImportResult, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	if idx, _ := file.GetSheetIndex(sheetName); idx >= 0 {
		sheet = sheetName
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return model.ImportResult{}, fmt.Errorf("sheet %s has no data rows", sheet)
	}

	result := model.ImportResult{}
	for i, cells := range rows[1:] {
		rowNum := i + 2
		if isEmptyRow(cells) {
			continue
		}
		if isTotalRow(cells) {
			break
		}

		row := parseRow(rowNum, cells)
		for _, msg := range row.Errors {
			result.Errors = append(result.Errors, model.ImportRowError{Row: rowNum, Message: msg})
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func parseRow(rowNum int, cells []string) model.ImportedRow {
	row := model.ImportedRow{
		Row:                rowNum,
		WarehouseCode:      cellAt(cells, 0),
		CompanyCode:        cellAt(cells, 1),
		CompanyName:        cellAt(cells, 2),
		ItemName:           cellAt(cells, 3),
		OutsourcingCompany: cellAt(cells, 10),
		BillingTiming:      cellAt(cells, 13),
		Notes:              cellAt(cells, 17),
	}

	fail := func(column, msg string) {
		row.Errors = append(row.Errors, fmt.Sprintf("%s: %s", column, msg))
	}

	var err error
	if row.ContractStart, err = parseDateCell(cellAt(cells, 4)); err != nil {
		fail("contract start", err.Error())
	}
	if row.ContractEnd, err = parseDateCell(cellAt(cells, 5)); err != nil {
		fail("contract end", err.Error())
	}
	if row.MonthlyAmount, err = parseAmountCell(cellAt(cells, 6)); err != nil {
		fail("monthly amount", err.Error())
	}
	if row.BillingAmount, err = parseAmountCell(cellAt(cells, 7)); err != nil {
		fail("billing amount", err.Error())
	}
	if row.VATAmount, err = parseAmountCell(cellAt(cells, 8)); err != nil {
		fail("vat", err.Error())
	}
	if row.TotalAmount, err = parseAmountCell(cellAt(cells, 9)); err != nil {
		fail("total", err.Error())
	}
	if row.OutsourcingAmount, err = parseAmountCell(cellAt(cells, 11)); err != nil {
		fail("outsourcing amount", err.Error())
	}
	if row.Profit, err = parseAmountCell(cellAt(cells, 12)); err != nil {
		fail("profit", err.Error())
	}
	if row.SalesDate, err = parseDateCell(cellAt(cells, 14)); err != nil {
		fail("sales date", err.Error())
	}
	if row.RequestDate, err = parseDateCell(cellAt(cells, 15)); err != nil {
		fail("request date", err.Error())
	}
	if row.PurchaseDate, err = parseDateCell(cellAt(cells, 16)); err != nil {
		fail("purchase date", err.Error())
	}
	row.AutoRenewal = parseBoolCell(cellAt(cells, 18))

	if row.CompanyName == "" && row.CompanyCode == "" {
		fail("company", "row has neither a company name nor a code")
	}
	return row
}

func cellAt(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// isTotalRow recognizes the summary line that closes the template; anything
// after it is footer content and is not imported.
func isTotalRow(cells []string) bool {
	for i := 0; i < 4 && i < len(cells); i++ {
		value := strings.ToLower(strings.TrimSpace(cells[i]))
		if value == "total" || value == "sum" || strings.HasPrefix(value, "total ") {
			return true
		}
	}
	return false
}

func parseDateCell(value string) (*time.Time, error) {
	if value == "" || value == "-" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day, nil
		}
	}
	// Excel serial dates survive as plain numbers when a cell loses its format.
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", value)
}

func parseAmountCell(value string) (decimal.NullDecimal, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "-" {
		return decimal.NullDecimal{}, nil
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.NewReplacer(",", "", " ", "", "₩", "", "$", "", "KRW", "").Replace(cleaned)
	if cleaned == "" {
		return decimal.NullDecimal{}, nil
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("unrecognized amount %q", value)
	}
	if negative {
		amount = amount.Neg()
	}
	return decimal.NullDecimal{Decimal: amount, Valid: true}, nil
}

func parseBoolCell(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true", "1", "o", "auto":
		return true
	}
	return false
}
