package recurrence

import (
	"fmt"
	"strings"
)

// Describe renders a rule for display. When the interval is greater than
// one, the interval wins over weekday and month-day detail ("Every 2 weeks",
// not "Every 2 weeks on Mon"); this simplification is intentional.
// Unparseable rules render as "Custom".
func Describe(rule string) string {
	opts, ok := Decode(rule)
	if !ok {
		return "Custom"
	}

	if opts.Interval > 1 {
		var unit string
		switch opts.Frequency {
		case Daily:
			unit = "days"
		case Weekly:
			unit = "weeks"
		case Monthly:
			unit = "months"
		}
		return fmt.Sprintf("Every %d %s", opts.Interval, unit)
	}

	switch opts.Frequency {
	case Daily:
		return "Daily"
	case Weekly:
		if len(opts.Weekdays) == 0 {
			return "Weekly"
		}
		names := make([]string, 0, len(opts.Weekdays))
		for _, d := range opts.Weekdays {
			names = append(names, d.Name())
		}
		return "Weekly on " + strings.Join(names, ", ")
	case Monthly:
		switch {
		case opts.MonthDay == LastDayOfMonth:
			return "Monthly on last day"
		case opts.MonthDay > 0:
			return fmt.Sprintf("Monthly on day %d", opts.MonthDay)
		default:
			return "Monthly"
		}
	}
	return "Custom"
}
