package simulation

import "time"

// Months is the length of the synthetic simulation window.
const Months = 12

// MonthEnds returns the month-end dates of the 12 months following base.
// The window always has 12 steps, also for a mid-month base date.
func MonthEnds(base time.Time) [Months]time.Time {
	var out [Months]time.Time
	y, m, _ := base.Date()
	for k := 1; k <= Months; k++ {
		// Day 0 of the following month is the last day of month m+k.
		out[k-1] = time.Date(y, m+time.Month(k)+1, 0, 0, 0, 0, 0, base.Location())
	}
	return out
}

// InWindow reports whether d falls in (base, last month-end], by calendar day.
func InWindow(base, d time.Time) bool {
	ends := MonthEnds(base)
	day := truncateDay(d)
	return day.After(truncateDay(base)) && !day.After(ends[Months-1])
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateLayouts are the presentation layouts of the three date columns.
type DateLayouts struct {
	BaseDate  string
	GrantDate string
}

// DefaultDateLayouts writes the base date day-first and grant dates
// month-first, matching the files downstream reporting already consumes.
func DefaultDateLayouts() DateLayouts {
	return DateLayouts{
		BaseDate:  "02/01/2006",
		GrantDate: "01/02/2006",
	}
}

func (l DateLayouts) withDefaults() DateLayouts {
	def := DefaultDateLayouts()
	if l.BaseDate == "" {
		l.BaseDate = def.BaseDate
	}
	if l.GrantDate == "" {
		l.GrantDate = def.GrantDate
	}
	return l
}
