package accounting

import (
	"fmt"
	"time"
)

// FiscalYear returns the fiscal-year label for a date given the month the
// fiscal year starts in, e.g. "2025-26" for any date between 2025-04-01 and
// 2026-03-31 when startMonth is 4. With startMonth 1 the label collapses to
// the calendar year, e.g. "2025".
func FiscalYear(date time.Time, startMonth int) string {
	if startMonth <= 1 || startMonth > 12 {
		return fmt.Sprintf("%04d", date.Year())
	}
	year := date.Year()
	if int(date.Month()) < startMonth {
		year--
	}
	return fmt.Sprintf("%04d-%02d", year, (year+1)%100)
}

// FiscalPeriodKey returns the accounting-period key for a date, in the form
// "<fiscal year>-<period>", where period is the 1-based month offset within
// the fiscal year. 2025-06-15 with startMonth 4 yields "2025-26-03".
func FiscalPeriodKey(date time.Time, startMonth int) string {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 1
	}
	period := int(date.Month()) - startMonth + 1
	if period <= 0 {
		period += 12
	}
	return fmt.Sprintf("%s-%02d", FiscalYear(date, startMonth), period)
}
