package recurrence

import "time"

// NextOccurrence computes the first occurrence strictly after `after`,
// treating `after` as the pattern's reference point. ok is false when the
// rule is unparseable or when the computed date falls past `end` (a date
// equal to `end` is the terminal occurrence and is still returned).
//
// For weekly rules with BYDAY, the nearest matching weekday after `after`
// is chosen by walking forward one day at a time; how BYDAY interacts with
// INTERVAL>1 across repeated calls is not defined beyond that single step.
func NextOccurrence(rule string, after time.Time, end *time.Time) (time.Time, bool) {
	opts, ok := Decode(rule)
	if !ok {
		return time.Time{}, false
	}

	var next time.Time
	switch opts.Frequency {
	case Daily:
		next = after.AddDate(0, 0, opts.Interval)
	case Weekly:
		if len(opts.Weekdays) == 0 {
			next = after.AddDate(0, 0, opts.Interval*7)
		} else {
			next = nextWeekday(after, opts.Weekdays)
		}
	case Monthly:
		next = nextMonthly(after, opts)
	}

	if end != nil && dateAfter(next, *end) {
		return time.Time{}, false
	}
	return next, true
}

func nextWeekday(after time.Time, days []RuleWeekday) time.Time {
	set := make(map[RuleWeekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	next := after.AddDate(0, 0, 1)
	for i := 0; i < 6; i++ {
		if set[ToRuleWeekday(next.Weekday())] {
			break
		}
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextMonthly(after time.Time, opts Options) time.Time {
	hour, min, sec := after.Clock()
	year, month, day := after.Date()

	// Day 1 keeps time.Date from spilling the month-step into day overflow.
	first := time.Date(year, month+time.Month(opts.Interval), 1, hour, min, sec, after.Nanosecond(), after.Location())
	ty, tm, _ := first.Date()

	dom := day
	switch {
	case opts.MonthDay == LastDayOfMonth:
		dom = daysInMonth(tm, ty)
	case opts.MonthDay > 0:
		dom = opts.MonthDay
	}
	if last := daysInMonth(tm, ty); dom > last {
		dom = last
	}
	return time.Date(ty, tm, dom, hour, min, sec, after.Nanosecond(), after.Location())
}

// daysInMonth moves to the first of the next month and rolls back a day.
func daysInMonth(month time.Month, year int) int {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, 0).AddDate(0, 0, -1).Day()
}

// dateAfter compares calendar dates, ignoring the time of day.
func dateAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
