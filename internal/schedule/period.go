package schedule

import "time"

// DefaultRenewalPeriodMonths is the renewal increment used when a contract
// does not specify one.
const DefaultRenewalPeriodMonths = 12

// PeriodStatus describes whether a contract is active for a check date and
// how the active window was derived.
type PeriodStatus struct {
	Active          bool
	EffectiveStart  *time.Time
	EffectiveEnd    *time.Time
	AutoRenewed     bool // window was rolled forward past the original end date
	PeriodUndefined bool // start and/or end date unset
}

// ContractPeriodStatus computes the active window of a contract as of
// checkDate, rolling the period forward in renewal-period increments when the
// contract has expired but auto-renews. An unset end date means the contract
// is treated as always active but flagged as undefined.
func ContractPeriodStatus(start, end *time.Time, autoRenewal bool, renewalMonths int, checkDate time.Time) PeriodStatus {
	if renewalMonths <= 0 {
		renewalMonths = DefaultRenewalPeriodMonths
	}

	if start == nil && end == nil {
		return PeriodStatus{Active: true, PeriodUndefined: true}
	}
	if start == nil {
		return PeriodStatus{Active: true, EffectiveEnd: end, PeriodUndefined: true}
	}
	if end == nil {
		return PeriodStatus{Active: true, EffectiveStart: start, PeriodUndefined: true}
	}

	if !checkDate.Before(*start) && !checkDate.After(*end) {
		return PeriodStatus{Active: true, EffectiveStart: start, EffectiveEnd: end}
	}

	if checkDate.After(*end) {
		if !autoRenewal {
			return PeriodStatus{Active: false, EffectiveStart: start, EffectiveEnd: end}
		}
		currentStart := *start
		currentEnd := *end
		for currentEnd.Before(checkDate) {
			currentStart = AddMonthsClamped(currentStart, renewalMonths)
			currentEnd = AddMonthsClamped(currentEnd, renewalMonths)
		}
		return PeriodStatus{
			Active:         true,
			EffectiveStart: &currentStart,
			EffectiveEnd:   &currentEnd,
			AutoRenewed:    true,
		}
	}

	// Before the contract starts.
	return PeriodStatus{Active: false, EffectiveStart: start, EffectiveEnd: end}
}
