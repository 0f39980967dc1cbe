// Package recurrence encodes, decodes, and evaluates the textual rule
// grammar that describes how a todo repeats:
//
//	FREQ=DAILY|WEEKLY|MONTHLY
//	[;INTERVAL=<positive integer>]
//	[;BYDAY=MO,TU,...]        weekly only
//	[;BYMONTHDAY=1..31 or -1] monthly only, -1 meaning last day of month
//
// The grammar is the storage format for rules; it must stay byte-compatible
// with previously stored strings. Anything the grammar does not cover
// decodes to "not ok" rather than an error, and callers treat such rules as
// custom: no occurrence is generated and they display as "Custom".
package recurrence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Frequency is the base period of a rule.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
)

// LastDayOfMonth is the BYMONTHDAY sentinel for "last calendar day".
const LastDayOfMonth = -1

// Options is the decoded form of a rule string.
type Options struct {
	Frequency Frequency
	Interval  int           // every N periods; 1 when unset
	Weekdays  []RuleWeekday // weekly only, kept sorted Monday-first
	MonthDay  int           // monthly only; 1..31, LastDayOfMonth, or 0 when unset
}

// Encode builds the textual rule. INTERVAL is omitted when 1, BYDAY only
// appears for weekly rules with a non-empty weekday set, and BYMONTHDAY
// only for monthly rules with a day configured.
func Encode(opts Options) string {
	parts := []string{"FREQ=" + string(opts.Frequency)}
	if opts.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", opts.Interval))
	}
	if opts.Frequency == Weekly && len(opts.Weekdays) > 0 {
		codes := make([]string, 0, len(opts.Weekdays))
		for _, d := range sortWeekdays(opts.Weekdays) {
			codes = append(codes, d.Code())
		}
		parts = append(parts, "BYDAY="+strings.Join(codes, ","))
	}
	if opts.Frequency == Monthly && opts.MonthDay != 0 {
		parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", opts.MonthDay))
	}
	return strings.Join(parts, ";")
}

// Decode parses a rule string. ok is false for anything malformed or
// unknown; the zero Options is returned in that case. Key order does not
// matter, but FREQ must be present. BYDAY on a non-weekly rule and
// BYMONTHDAY on a non-monthly rule are ignored rather than rejected.
func Decode(rule string) (Options, bool) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return Options{}, false
	}

	opts := Options{Interval: 1}
	seenFreq := false

	for _, part := range strings.Split(rule, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return Options{}, false
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "FREQ":
			switch Frequency(strings.ToUpper(value)) {
			case Daily, Weekly, Monthly:
				opts.Frequency = Frequency(strings.ToUpper(value))
			default:
				return Options{}, false
			}
			seenFreq = true
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return Options{}, false
			}
			opts.Interval = n
		case "BYDAY":
			days, ok := parseWeekdayList(value)
			if !ok {
				return Options{}, false
			}
			opts.Weekdays = days
		case "BYMONTHDAY":
			n, err := strconv.Atoi(value)
			if err != nil || (n != LastDayOfMonth && (n < 1 || n > 31)) {
				return Options{}, false
			}
			opts.MonthDay = n
		default:
			return Options{}, false
		}
	}

	if !seenFreq {
		return Options{}, false
	}
	if opts.Frequency != Weekly {
		opts.Weekdays = nil
	}
	if opts.Frequency != Monthly {
		opts.MonthDay = 0
	}
	return opts, true
}

func parseWeekdayList(value string) ([]RuleWeekday, bool) {
	var days []RuleWeekday
	for _, code := range strings.Split(value, ",") {
		d, ok := parseWeekdayCode(strings.TrimSpace(code))
		if !ok {
			return nil, false
		}
		days = append(days, d)
	}
	return sortWeekdays(days), true
}

// sortWeekdays returns a Monday-first sorted copy with duplicates removed.
func sortWeekdays(days []RuleWeekday) []RuleWeekday {
	out := append([]RuleWeekday(nil), days...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:0]
	for i, d := range out {
		if i == 0 || d != out[i-1] {
			dedup = append(dedup, d)
		}
	}
	return dedup
}
