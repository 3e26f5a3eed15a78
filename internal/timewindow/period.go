package timewindow

import (
	"fmt"
	"strings"
)

// Period is a user-selected reporting range.
type Period string

// Supported periods.
const (
	PeriodThisMonth Period = "thisMonth"
	PeriodLastMonth Period = "lastMonth"
	PeriodThisYear  Period = "thisYear"
	PeriodLastYear  Period = "lastYear"
	PeriodAllTime   Period = "allTime"
)

// Periods lists every supported period in display order.
var Periods = []Period{PeriodThisMonth, PeriodLastMonth, PeriodThisYear, PeriodLastYear, PeriodAllTime}

// ParsePeriod accepts the canonical names as well as kebab and snake case variants.
func ParsePeriod(s string) (Period, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	if norm == "" {
		return PeriodThisMonth, nil
	}
	for _, p := range Periods {
		if strings.ToLower(string(p)) == norm {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Text returns the phrase used in card subtitles, e.g. "this month".
func (p Period) Text() string {
	switch p {
	case PeriodThisMonth:
		return "this month"
	case PeriodLastMonth:
		return "last month"
	case PeriodThisYear:
		return "this year"
	case PeriodLastYear:
		return "last year"
	case PeriodAllTime:
		return "all time"
	default:
		return "this month"
	}
}

// PeriodRange returns the calendar range of p. The boolean is false for
// PeriodAllTime, which has no bounds. Unknown periods fall back to the current month.
func (w Windows) PeriodRange(p Period) (Range, bool) {
	switch p {
	case PeriodLastMonth:
		return w.PreviousMonth(), true
	case PeriodThisYear:
		return w.Year(0), true
	case PeriodLastYear:
		return w.Year(1), true
	case PeriodAllTime:
		return Range{}, false
	default:
		return w.CurrentMonth(), true
	}
}
