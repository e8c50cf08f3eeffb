package ledger

import (
	"fmt"
	"time"
)

// FiscalCalendar maps journal dates onto financial years and fiscal period
// months. A financial year is labeled by the calendar year it starts in.
type FiscalCalendar struct {
	startMonth time.Month
	startDay   int
}

// NewFiscalCalendar parses a "MM-DD" fiscal year start, e.g. "04-01".
func NewFiscalCalendar(yearStart string) (FiscalCalendar, error) {
	var month, day int
	if _, err := fmt.Sscanf(yearStart, "%d-%d", &month, &day); err != nil {
		return FiscalCalendar{}, fmt.Errorf("invalid fiscal year start %q: %w", yearStart, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return FiscalCalendar{}, fmt.Errorf("invalid fiscal year start %q", yearStart)
	}
	return FiscalCalendar{startMonth: time.Month(month), startDay: day}, nil
}

// YearAndPeriod returns the financial year and fiscal period month (1-12)
// containing date.
func (c FiscalCalendar) YearAndPeriod(date time.Time) (year, period int) {
	year = date.Year()
	start := time.Date(year, c.startMonth, c.startDay, 0, 0, 0, 0, date.Location())
	if date.Before(start) {
		year--
	}

	period = int(date.Month()) - int(c.startMonth) + 1
	if period < 1 {
		period += 12
	}
	return year, period
}

// YearEnd returns the last day of the given financial year.
func (c FiscalCalendar) YearEnd(year int) time.Time {
	nextStart := time.Date(year+1, c.startMonth, c.startDay, 0, 0, 0, 0, time.UTC)
	return nextStart.AddDate(0, 0, -1)
}
