package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

func (rt RecurrenceType) IsValid() bool {
	switch rt {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	default:
		return false
	}
}

// RecurrencePattern is the parsed form of the serialized recurrence text
// stored on a reminder. It is validated once at the boundary; downstream code
// works with the tagged value, never the raw JSON.
type RecurrencePattern struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`
	EndDate  *string        `json:"end_date,omitempty"` // YYYY-MM-DD, inclusive
}

// ParseRecurrencePattern deserializes and validates a recurrence pattern.
// Malformed JSON, an unrecognized type, or an interval below 1 are errors,
// not silent fallbacks to non-recurring.
func ParseRecurrencePattern(raw string) (*RecurrencePattern, error) {
	var p RecurrencePattern
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("malformed recurrence JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the pattern's structural rules.
func (p *RecurrencePattern) Validate() error {
	if !p.Type.IsValid() {
		return fmt.Errorf("unrecognized recurrence type %q", p.Type)
	}
	if p.Interval < 1 {
		return fmt.Errorf("recurrence interval must be at least 1, got %d", p.Interval)
	}
	if p.EndDate != nil {
		if _, err := time.Parse(DateFormat, *p.EndDate); err != nil {
			return fmt.Errorf("invalid recurrence end date %q: %w", *p.EndDate, err)
		}
	}
	return nil
}

// Serialize renders the pattern back to its stored JSON form.
func (p *RecurrencePattern) Serialize() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("serialize recurrence pattern: %w", err)
	}
	return string(raw), nil
}

// NextOccurrence computes the occurrence after the given reference date, or
// nil when the series has ended. The end date is inclusive: a computed next
// date strictly after it terminates the series. Month and year arithmetic
// clamp the day-of-month to the last day of the target month, so Jan 31 plus
// one month lands on Feb 29 (leap) or Feb 28. An unrecognized type yields nil;
// the validator rejects such patterns upstream.
func (p *RecurrencePattern) NextOccurrence(from time.Time) *time.Time {
	var next time.Time
	switch p.Type {
	case RecurrenceDaily:
		next = from.AddDate(0, 0, p.Interval)
	case RecurrenceWeekly:
		next = from.AddDate(0, 0, 7*p.Interval)
	case RecurrenceMonthly:
		next = addMonthsClamped(from, p.Interval)
	case RecurrenceYearly:
		next = addMonthsClamped(from, 12*p.Interval)
	default:
		return nil
	}

	if p.EndDate != nil {
		end, err := time.ParseInLocation(DateFormat, *p.EndDate, from.Location())
		if err == nil && next.After(end) {
			return nil
		}
	}

	return &next
}

// addMonthsClamped advances by whole calendar months, clamping the
// day-of-month instead of letting time.AddDate roll Jan 31 into March.
func addMonthsClamped(t time.Time, months int) time.Time {
	target := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
