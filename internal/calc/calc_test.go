package calc_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemin/maintbilling/internal/calc"
	"github.com/jaemin/maintbilling/internal/model"
	"github.com/jaemin/maintbilling/internal/schedule"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBilledAmount(t *testing.T) {
	got, err := calc.BilledAmount(dec("1500000"), 3)
	require.NoError(t, err)
	assert.True(t, dec("4500000").Equal(got))

	got, err = calc.BilledAmount(dec("1500000"), 1)
	require.NoError(t, err)
	assert.True(t, dec("1500000").Equal(got))

	_, err = calc.BilledAmount(dec("1500000"), 0)
	assert.Error(t, err)
}

func TestVATTruncatesTowardZero(t *testing.T) {
	rate := dec("0.10")

	// 1234 * 0.10 = 123.4 bills as 123, never 124.
	assert.True(t, dec("123").Equal(calc.VAT(dec("1234"), rate)))
	assert.True(t, dec("129").Equal(calc.VAT(dec("1299"), rate)))
	assert.True(t, dec("100").Equal(calc.VAT(dec("1000"), rate)))

	// Truncation is toward zero for credits too.
	assert.True(t, dec("-123").Equal(calc.VAT(dec("-1234"), rate)))
}

func TestOutsourcingTotal(t *testing.T) {
	defaultMonthly := dec("500000")

	// Actual purchase entries win over the default.
	total, defaulted := calc.OutsourcingTotal([]decimal.Decimal{dec("100000"), dec("200000")}, defaultMonthly, 1, false)
	assert.True(t, dec("300000").Equal(total))
	assert.False(t, defaulted)

	// Explicit zero is a value, not missing data.
	total, defaulted = calc.OutsourcingTotal(nil, defaultMonthly, 1, true)
	assert.True(t, total.IsZero())
	assert.False(t, defaulted)

	// Otherwise the monthly default is applied across the covered months.
	total, defaulted = calc.OutsourcingTotal(nil, defaultMonthly, 3, false)
	assert.True(t, dec("1500000").Equal(total))
	assert.True(t, defaulted)
}

func TestProfit(t *testing.T) {
	assert.True(t, dec("1000000").Equal(calc.Profit(dec("1500000"), dec("500000"))))

	// Negative profit is valid data, not an error.
	assert.True(t, dec("-200000").Equal(calc.Profit(dec("300000"), dec("500000"))))
}

func history(changeType model.ChangeType, effective time.Time, amount string) model.ContractHistory {
	return model.ContractHistory{
		ChangeType:    changeType,
		EffectiveDate: effective,
		NewAmount:     decimal.NewNullDecimal(dec(amount)),
	}
}

func TestEffectiveAmount(t *testing.T) {
	base := dec("1000000")
	histories := []model.ContractHistory{
		history(model.ChangeTypeAmount, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "1200000"),
		history(model.ChangeTypeAmount, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "1500000"),
	}

	tests := []struct {
		month string
		want  string
	}{
		{"2024-01", "1000000"}, // before any amendment
		{"2024-02", "1200000"}, // effective on the first of the month
		{"2024-03", "1200000"},
		{"2024-05", "1500000"},
		{"2024-12", "1500000"},
	}
	for _, tt := range tests {
		month, err := schedule.ParseMonth(tt.month)
		require.NoError(t, err)
		got, err := calc.EffectiveAmount(histories, model.ChangeTypeAmount, month, base)
		require.NoError(t, err)
		assert.True(t, dec(tt.want).Equal(got), "as of %s", tt.month)
	}
}

func TestEffectiveAmountFiltersChangeType(t *testing.T) {
	histories := []model.ContractHistory{
		history(model.ChangeTypeOutsourcing, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "999999"),
	}
	month, err := schedule.ParseMonth("2024-06")
	require.NoError(t, err)

	got, err := calc.EffectiveAmount(histories, model.ChangeTypeAmount, month, dec("1000000"))
	require.NoError(t, err)
	assert.True(t, dec("1000000").Equal(got))
}

func TestEffectiveAmountRejectsUnorderedHistory(t *testing.T) {
	histories := []model.ContractHistory{
		history(model.ChangeTypeAmount, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "1500000"),
		history(model.ChangeTypeAmount, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "1200000"),
	}
	month, err := schedule.ParseMonth("2024-06")
	require.NoError(t, err)

	_, err = calc.EffectiveAmount(histories, model.ChangeTypeAmount, month, dec("1000000"))
	assert.Error(t, err)
}
