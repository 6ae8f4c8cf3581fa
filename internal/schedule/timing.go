package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Timing is the result of parsing a contract's free-text issue-timing field.
// The field comes from spreadsheets maintained by hand, so parsing is best
// effort: anything unrecognized is flagged for manual scheduling instead of
// guessing.
type Timing struct {
	Parsed         bool
	Day            int  // day of month to issue on; valid when DaySet
	DaySet         bool
	EndOfMonth     bool
	Months         []time.Month // explicit billing months, e.g. "3,6,9,12"
	ReverseBilling bool
	RequiresManual bool
	Original       string
}

var reverseKeywords = []string{"reverse", "counterparty", "issued by customer"}

var manualKeywords = []string{"on request", "upon request", "tbd", "negotiate", "contact", "check with", "ask "}

var (
	monthListPattern = regexp.MustCompile(`(\d{1,2}(?:\s*,\s*\d{1,2})+)`)
	dayPattern       = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)?\b`)
	monthNamePattern = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseTiming parses an issue-timing text such as "end of month", "10th",
// "Mar, Jun, Sep, Dec", "twice a year" or "reverse billing".
func ParseTiming(text string) Timing {
	result := Timing{Original: text}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		result.RequiresManual = true
		return result
	}
	lower := strings.ToLower(trimmed)

	for _, kw := range reverseKeywords {
		if strings.Contains(lower, kw) {
			result.ReverseBilling = true
			result.Parsed = true
			return result
		}
	}

	for _, kw := range manualKeywords {
		if strings.Contains(lower, kw) {
			result.RequiresManual = true
			return result
		}
	}

	if strings.Contains(lower, "end of month") || strings.Contains(lower, "eom") ||
		strings.Contains(lower, "last day") || strings.Contains(lower, "month-end") {
		result.EndOfMonth = true
		result.Parsed = true
	} else if strings.Contains(lower, "beginning of month") || strings.Contains(lower, "start of month") {
		result.Day = 1
		result.DaySet = true
		result.Parsed = true
	}

	result.Months = parseMonthList(lower)

	if strings.Contains(lower, "twice a year") || strings.Contains(lower, "twice per year") {
		if len(result.Months) == 0 {
			result.Months = []time.Month{time.June, time.December}
		}
		result.Parsed = true
	}

	if !result.DaySet && !result.EndOfMonth {
		if match := dayPattern.FindStringSubmatch(lower); match != nil {
			if day, err := strconv.Atoi(match[1]); err == nil && day >= 1 && day <= 31 && len(result.Months) == 0 {
				result.Day = day
				result.DaySet = true
				result.Parsed = true
			}
		}
	}

	if len(result.Months) > 0 {
		result.Parsed = true
	}

	if !result.Parsed {
		result.RequiresManual = true
	}
	return result
}

func parseMonthList(lower string) []time.Month {
	var months []time.Month
	seen := make(map[time.Month]bool)

	add := func(m time.Month) {
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}

	if match := monthListPattern.FindStringSubmatch(lower); match != nil {
		for _, part := range strings.Split(match[1], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err == nil && n >= 1 && n <= 12 {
				add(time.Month(n))
			}
		}
	}

	for _, match := range monthNamePattern.FindAllStringSubmatch(lower, -1) {
		add(monthNames[match[1]])
	}

	sortMonths(months)
	return months
}

func sortMonths(months []time.Month) {
	for i := 1; i < len(months); i++ {
		for j := i; j > 0 && months[j] < months[j-1]; j-- {
			months[j], months[j-1] = months[j-1], months[j]
		}
	}
}
