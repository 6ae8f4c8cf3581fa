package excel

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemin/maintbilling/internal/model"
	"github.com/jaemin/maintbilling/internal/schedule"
)

func TestParseAmountCell(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"1,500,000", "1500000", true},
		{"₩1,500,000", "1500000", true},
		{"1500000.50", "1500000.5", true},
		{"(200,000)", "-200000", true},
		{"", "", false},
		{"-", "", false},
	}
	for _, tt := range tests {
		got, err := parseAmountCell(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.valid, got.Valid, tt.raw)
		if tt.valid {
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Decimal), tt.raw)
		}
	}

	_, err := parseAmountCell("n/a")
	assert.Error(t, err)
}

func TestParseDateCell(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-03-15", "2024/03/15", "2024.03.15", "3/15/2024"} {
		got, err := parseDateCell(raw)
		require.NoError(t, err, raw)
		require.NotNil(t, got, raw)
		assert.Equal(t, want, *got, raw)
	}

	got, err := parseDateCell("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDateCell("mid March")
	assert.Error(t, err)
}

func TestParseBoolCell(t *testing.T) {
	for _, raw := range []string{"Y", "yes", "TRUE", "1", "auto"} {
		assert.True(t, parseBoolCell(raw), raw)
	}
	for _, raw := range []string{"N", "no", "", "manual"} {
		assert.False(t, parseBoolCell(raw), raw)
	}
}

func TestIsTotalRow(t *testing.T) {
	assert.True(t, isTotalRow([]string{"", "", "Total", "", ""}))
	assert.True(t, isTotalRow([]string{"Sum"}))
	assert.False(t, isTotalRow([]string{"W1", "C001", "Totally Fine Corp"}))
}

func TestExportImportRoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	sales := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)

	export := model.BillingExport{
		Month: schedule.NewMonth(2024, time.March),
		Rows: []model.BillingExportRow{{
			WarehouseCode:      "W1",
			CompanyCode:        "C001",
			CompanyName:        "Acme Logistics",
			ItemName:           "server maintenance",
			ContractStart:      &start,
			ContractEnd:        &end,
			MonthlyAmount:      decimal.RequireFromString("1000000"),
			BillingAmount:      decimal.RequireFromString("1000000"),
			VATAmount:          decimal.RequireFromString("100000"),
			TotalAmount:        decimal.RequireFromString("1100000"),
			OutsourcingCompany: "SubWorks",
			OutsourcingAmount:  decimal.RequireFromString("300000"),
			Profit:             decimal.RequireFromString("700000"),
			BillingTiming:      "end of month",
			SalesDate:          &sales,
			Notes:              "renewed for 2024",
			AutoRenewal:        true,
		}},
		TotalBilling:     decimal.RequireFromString("1000000"),
		TotalOutsourcing: decimal.RequireFromString("300000"),
		TotalProfit:      decimal.RequireFromString("700000"),
	}

	content, err := NewGenerator().Generate(export)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	result, err := NewImporter().Parse(content)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Rows, 1) // the total row is not imported

	row := result.Rows[0]
	assert.Equal(t, "Acme Logistics", row.CompanyName)
	assert.Equal(t, "C001", row.CompanyCode)
	require.NotNil(t, row.ContractStart)
	assert.Equal(t, start, *row.ContractStart)
	require.True(t, row.BillingAmount.Valid)
	assert.True(t, decimal.RequireFromString("1000000").Equal(row.BillingAmount.Decimal))
	require.True(t, row.Profit.Valid)
	assert.True(t, decimal.RequireFromString("700000").Equal(row.Profit.Decimal))
	require.NotNil(t, row.SalesDate)
	assert.Equal(t, sales, *row.SalesDate)
	assert.True(t, row.AutoRenewal)
}
