package recurrence

import "time"

// RuleWeekday numbers weekdays Monday-first (MO=0 .. SU=6), matching the
// BYDAY codes of the rule grammar. The rest of the system counts weekdays
// Sunday-first, like Go's time.Weekday and the UI date pickers.
// ToRuleWeekday and RuleWeekday.Time are the single seam between the two
// numbering systems; no other code converts between them.
type RuleWeekday int

const (
	Monday RuleWeekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayCodes = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Valid reports whether d is one of the seven weekdays.
func (d RuleWeekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Code returns the two-letter grammar code, e.g. "MO".
func (d RuleWeekday) Code() string {
	if !d.Valid() {
		return ""
	}
	return weekdayCodes[d]
}

// Name returns the abbreviated display name, e.g. "Mon".
func (d RuleWeekday) Name() string {
	if !d.Valid() {
		return ""
	}
	return weekdayNames[d]
}

// Time converts to Go's Sunday-first numbering.
func (d RuleWeekday) Time() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// ToRuleWeekday converts from Go's Sunday-first numbering.
func ToRuleWeekday(d time.Weekday) RuleWeekday {
	return RuleWeekday((int(d) + 6) % 7)
}

func parseWeekdayCode(code string) (RuleWeekday, bool) {
	for i, c := range weekdayCodes {
		if c == code {
			return RuleWeekday(i), true
		}
	}
	return 0, false
}
