// Package calc implements the billing arithmetic. All money values are exact
// decimals; float64 is never used because VAT truncation and aggregation
// accumulate rounding error.
package calc

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jaemin/maintbilling/internal/model"
	"github.com/jaemin/maintbilling/internal/schedule"
)

// BilledAmount is the monthly rate multiplied by the number of covered
// months, exact with no rounding.
func BilledAmount(monthlyRate decimal.Decimal, coverMonths int) (decimal.Decimal, error) {
	if coverMonths <= 0 {
		return decimal.Zero, fmt.Errorf("invalid coverage months %d", coverMonths)
	}
	return monthlyRate.Mul(decimal.NewFromInt(int64(coverMonths))), nil
}

// VAT truncates amount*rate toward zero at whole currency units. Truncation,
// not rounding, is the accounting convention here: a computed 123.4 bills as
// 123, never 124.
func VAT(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Truncate(0)
}

// OutsourcingTotal aggregates the month's purchase entries. With no entries
// the contract's monthly default is applied across the covered months, unless
// explicitZero marks zero as an intentional value. The second return reports
// whether the default was used, which feeds the missing-outsourcing check.
func OutsourcingTotal(entries []decimal.Decimal, defaultMonthly decimal.Decimal, coverMonths int, explicitZero bool) (decimal.Decimal, bool) {
	if len(entries) > 0 {
		total := decimal.Zero
		for _, amount := range entries {
			total = total.Add(amount)
		}
		return total, false
	}
	if explicitZero {
		return decimal.Zero, false
	}
	if coverMonths <= 0 {
		coverMonths = 1
	}
	return defaultMonthly.Mul(decimal.NewFromInt(int64(coverMonths))), true
}

// Profit is billed minus outsourcing. Negative profit is valid data.
func Profit(billed, outsourcing decimal.Decimal) decimal.Decimal {
	return billed.Sub(outsourcing)
}

// EffectiveAmount resolves the amount in force as of asOf from a contract's
// amendment log: the latest entry of the given change type with an effective
// date on or before asOf, or the base value when none applies. The log must
// be sorted ascending by effective date; a malformed ordering is reported to
// the caller instead of silently resolving against the wrong entry.
func EffectiveAmount(histories []model.ContractHistory, changeType model.ChangeType, asOf schedule.Month, base decimal.Decimal) (decimal.Decimal, error) {
	relevant := make([]model.ContractHistory, 0, len(histories))
	for _, h := range histories {
		if h.ChangeType == changeType && h.NewAmount.Valid {
			relevant = append(relevant, h)
		}
	}
	for i := 1; i < len(relevant); i++ {
		if relevant[i].EffectiveDate.Before(relevant[i-1].EffectiveDate) {
			return decimal.Zero, fmt.Errorf("contract history out of order at %s", relevant[i].EffectiveDate.Format("2006-01-02"))
		}
	}

	checkDate := asOf.First()
	// First entry strictly after the check date; the one before it wins.
	idx := sort.Search(len(relevant), func(i int) bool {
		return relevant[i].EffectiveDate.After(checkDate)
	})
	if idx == 0 {
		return base, nil
	}
	return relevant[idx-1].NewAmount.Decimal, nil
}
