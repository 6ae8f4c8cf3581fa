package schedule

import (
	"fmt"
	"time"
)

// Cycle is the billing periodicity of a contract.
type Cycle string

const (
	CycleMonthly    Cycle = "monthly"
	CycleQuarterly  Cycle = "quarterly"
	CycleSemiannual Cycle = "semiannual"
	CycleBiannual   Cycle = "biannual" // twice a year; same months as semiannual, kept distinct for reporting
	CycleIrregular  Cycle = "irregular"
)

var cycleTargetMonths = map[Cycle][]time.Month{
	CycleMonthly:    {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	CycleQuarterly:  {3, 6, 9, 12},
	CycleSemiannual: {6, 12},
	CycleBiannual:   {6, 12},
	CycleIrregular:  {},
}

var cycleCoverageMonths = map[Cycle]int{
	CycleMonthly:    1,
	CycleQuarterly:  3,
	CycleSemiannual: 6,
	CycleBiannual:   6,
	CycleIrregular:  1,
}

// ParseCycle validates a raw cycle value.
func ParseCycle(raw string) (Cycle, error) {
	c := Cycle(raw)
	if _, ok := cycleCoverageMonths[c]; !ok {
		return "", fmt.Errorf("unknown billing cycle %q", raw)
	}
	return c, nil
}

// TargetMonths returns the months of the year in which the cycle bills.
// Irregular contracts have no automatic target months.
func TargetMonths(c Cycle) []time.Month {
	return cycleTargetMonths[c]
}

// CoverageMonths returns how many months a single billing record covers.
func CoverageMonths(c Cycle) (int, error) {
	n, ok := cycleCoverageMonths[c]
	if !ok {
		return 0, fmt.Errorf("unknown billing cycle %q", c)
	}
	return n, nil
}

// IsBillingMonth reports whether month is an automatic billing month for the
// cycle. Irregular contracts may carry explicitly listed months parsed from
// their billing-timing text; those are honored via customMonths.
func IsBillingMonth(c Cycle, month time.Month, customMonths []time.Month) bool {
	if c == CycleIrregular {
		for _, m := range customMonths {
			if m == month {
				return true
			}
		}
		return false
	}
	for _, m := range cycleTargetMonths[c] {
		if m == month {
			return true
		}
	}
	return false
}
